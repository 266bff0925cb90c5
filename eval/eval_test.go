package eval_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebpl/ebplc/ast"
	"github.com/ebpl/ebplc/eval"
	"github.com/ebpl/ebplc/lexer"
	"github.com/ebpl/ebplc/parser"
	"github.com/ebpl/ebplc/utils"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()

	tokens, err := lexer.Lex(source)
	require.NoError(t, err)
	program, err := parser.NewParser(tokens).ParseProgram()
	require.NoError(t, err)

	return program
}

func run(t *testing.T, source string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	err := eval.NewEvaluator(&stdout).Run(context.Background(), parse(t, source))

	return stdout.String(), err
}

func TestEvalFromTestData(t *testing.T) {
	t.Parallel()
	s, err := os.ReadFile("../testdata/testcase.yaml")
	if err != nil {
		panic(err)
	}
	testcases := utils.ReadTestData(s)
	for _, testcase := range testcases {
		if kind, ok := testcase.Expected["exception"]; ok {
			actual, err := run(t, testcase.Input)
			var rerr eval.RuntimeError
			if assert.ErrorAs(t, err, &rerr, testcase.Label) {
				assert.Equal(t, kind, rerr.Kind, testcase.Label)
			}
			assert.Empty(t, actual, testcase.Label)
			continue
		}
		expected, ok := testcase.Expected["output"]
		if !ok {
			continue
		}
		actual, err := run(t, testcase.Input)
		if assert.NoError(t, err, testcase.Label) {
			assert.Equal(t, expected, actual, testcase.Label)
		}
	}
}

func TestPrintedValues(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input    string
		expected string
	}{
		{"PRINT 1 / 4", "0.25\n"},
		{"PRINT 2 / 3", "0.6666666666666666\n"},
		{"PRINT 0.1 + 0.2", "0.30000000000000004\n"},
		{"PRINT 10000000000000000", "1e+16\n"},
		{`PRINT "a" is less than "b"`, "True\n"},
		{`PRINT "a" is equal to 1`, "False\n"},
		{"PRINT 1 is not equal to 2", "True\n"},
		{"PRINT (1 is less than 2) + (2 is less than 3)", "2\n"},
		{"PRINT (1 is less than 2) * 1.5", "1.5\n"},
		{"PRINT 0 or \"fallback\"", "fallback\n"},
		{"PRINT 0 and missing", "0.0\n"},
		{"PRINT \"\" or 0", "0.0\n"},
		{"PRINT 3 and 4", "4.0\n"},
		{`PRINT "tab\there"`, "tab\there\n"},
		{`PRINT "\u00e9\x7e\7\q"`, "\u00e9~\a\\q\n"},
		{`PRINT "ab" * (1 is less than 2)`, "ab\n"},
		{`PRINT (1 is less than 2) * "ab"`, "ab\n"},
		{`PRINT "ab" * ((1 is less than 2) + (1 is less than 2))`, "abab\n"},
		{`PRINT "ab" * (2 is less than 1)`, "\n"},
	}

	for _, tc := range testcases {
		actual, err := run(t, tc.input)
		if assert.NoError(t, err, tc.input) {
			assert.Equal(t, tc.expected, actual, tc.input)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input   string
		kind    string
		message string
	}{
		{"PRINT y", "NameError", "name 'y' is not defined"},
		{`PRINT "a" + 1`, "TypeError", `can only concatenate str (not "float") to str`},
		{`PRINT 1 + "a"`, "TypeError", "unsupported operand type(s) for +: 'float' and 'str'"},
		{`PRINT "a" is less than 1`, "TypeError", "'<' not supported between instances of 'str' and 'float'"},
		{"PRINT 1 / 0", "ZeroDivisionError", "float division by zero"},
		{"PRINT (1 is less than 2) / (2 is less than 1)", "ZeroDivisionError", "division by zero"},
		{`PRINT 2 * "ab"`, "TypeError", "can't multiply sequence by non-int of type 'float'"},
		{`PRINT "ab" * 2`, "TypeError", "can't multiply sequence by non-int of type 'float'"},
		{`PRINT "ab" * "cd"`, "TypeError", "can't multiply sequence by non-int of type 'str'"},
		{`PRINT "ab" - (1 is less than 2)`, "TypeError", "unsupported operand type(s) for -: 'str' and 'bool'"},
	}

	for _, tc := range testcases {
		_, err := run(t, tc.input)
		var rerr eval.RuntimeError
		if !assert.ErrorAs(t, err, &rerr, tc.input) {
			continue
		}
		assert.Equal(t, tc.kind, rerr.Kind, tc.input)
		assert.Equal(t, tc.message, rerr.Message, tc.input)

		var perr utils.PosError
		if assert.ErrorAs(t, err, &perr, tc.input) {
			assert.Equal(t, 1, perr.Where.Line, tc.input)
		}
	}
}

func TestSyntaxErrorsStopBeforeOutput(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input   string
		message string
	}{
		{"PRINT 1\nCREATE VARIABLE class WITH VALUE 1", "invalid syntax: 'class' is a keyword"},
		{"PRINT 1\nSET None TO 2", "invalid syntax: 'None' is a keyword"},
		{"PRINT 1\nIF 1 is less than 2 THEN\nPRINT True\nEND IF", "invalid syntax: 'True' is a keyword"},
		{"PRINT 1\nPRINT \"end\\\"", "unterminated string literal"},
		{"PRINT 1\nPRINT \"odd \\\\\\\"", "unterminated string literal"},
	}

	for _, tc := range testcases {
		actual, err := run(t, tc.input)
		var rerr eval.RuntimeError
		if assert.ErrorAs(t, err, &rerr, tc.input) {
			assert.Equal(t, "SyntaxError", rerr.Kind, tc.input)
			assert.Equal(t, tc.message, rerr.Message, tc.input)
		}
		assert.Empty(t, actual, tc.input)
	}

	_, err := run(t, `PRINT "bad \x4"`)
	var rerr eval.RuntimeError
	if assert.ErrorAs(t, err, &rerr) {
		assert.Equal(t, "SyntaxError", rerr.Kind)
	}
}

func TestOutputBeforeError(t *testing.T) {
	t.Parallel()

	actual, err := run(t, "PRINT \"before\"\nPRINT nope\nPRINT \"after\"")
	assert.Error(t, err)
	assert.Equal(t, "before\n", actual)
}

func TestVariablesPersistAcrossRuns(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	ev := eval.NewEvaluator(&stdout)
	require.NoError(t, ev.Run(context.Background(), parse(t, "CREATE VARIABLE n WITH VALUE 2")))
	require.NoError(t, ev.Run(context.Background(), parse(t, "SET n TO n * 5\nPRINT n")))
	assert.Equal(t, "10.0\n", stdout.String())

	v, ok := ev.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, eval.Float(10), v)

	_, ok = ev.Lookup("m")
	assert.False(t, ok)
}

func TestStepLimit(t *testing.T) {
	t.Parallel()

	for _, source := range []string{
		"WHILE 1 is equal to 1 DO\nEND WHILE",
		"CREATE VARIABLE i WITH VALUE 0\nWHILE 1 is equal to 1 DO\nSET i TO i + 1\nEND WHILE",
	} {
		ev := eval.NewEvaluator(&bytes.Buffer{})
		ev.MaxSteps = 100
		err := ev.Run(context.Background(), parse(t, source))
		assert.True(t, errors.Is(err, eval.ErrStepLimit), "%q returned %v", source, err)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := eval.NewEvaluator(&bytes.Buffer{})
	ev.MaxSteps = 0
	err := ev.Run(ctx, parse(t, "WHILE 1 is equal to 1 DO\nEND WHILE"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTruthiness(t *testing.T) {
	t.Parallel()

	values := []struct {
		value  eval.Value
		truthy bool
		name   string
	}{
		{eval.Float(0), false, "float"},
		{eval.Float(-0.5), true, "float"},
		{eval.Int(0), false, "int"},
		{eval.Int(2), true, "int"},
		{eval.String(""), false, "str"},
		{eval.String("0"), true, "str"},
		{eval.Bool(false), false, "bool"},
		{eval.Bool(true), true, "bool"},
	}

	for _, v := range values {
		assert.Equal(t, v.truthy, v.value.Truthy(), "%#v", v.value)
		assert.Equal(t, v.name, v.value.TypeName(), "%#v", v.value)
	}
}
