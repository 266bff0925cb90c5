package driver_test

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebpl/ebplc/driver"
	"github.com/ebpl/ebplc/lexer"
	"github.com/ebpl/ebplc/parser"
	"github.com/ebpl/ebplc/utils"
)

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestCompileFromTestData(t *testing.T) {
	t.Parallel()
	s, err := os.ReadFile("../testdata/testcase.yaml")
	if err != nil {
		panic(err)
	}
	testcases := utils.ReadTestData(s)
	for _, testcase := range testcases {
		result := driver.NewCompiler().Compile(testcase.Input)

		if expected, ok := testcase.Expected["error"]; ok {
			assert.False(t, result.Success, testcase.Label)
			assert.Equal(t, expected, result.Error, testcase.Label)
			assert.Equal(t, []string{expected}, result.Errors, testcase.Label)
			assert.Empty(t, result.GeneratedCode, testcase.Label)
			continue
		}

		if !assert.True(t, result.Success, "%s: %s", testcase.Label, result.Error) {
			continue
		}
		for key, actual := range map[string]string{
			"tokens":  joinLines(result.Tokens),
			"ast":     joinLines(result.AST),
			"codegen": result.GeneratedCode,
		} {
			if expected, ok := testcase.Expected[key]; ok {
				if diff := cmp.Diff(expected, actual); diff != "" {
					t.Errorf("%s: %s mismatch (-want +got):\n%s", testcase.Label, key, diff)
				}
			}
		}
	}
}

func TestEmptySource(t *testing.T) {
	t.Parallel()

	for _, source := range []string{"", "   ", "\n\t\n"} {
		c := driver.NewCompiler()
		result := c.Compile(source)
		assert.False(t, result.Success)
		assert.Equal(t, "source code is required", result.Error)
		assert.Nil(t, c.Program())
		assert.Equal(t, []string{"No AST generated"}, c.ASTDisplay())
	}
}

func TestCompilerResetsBetweenCompilations(t *testing.T) {
	t.Parallel()

	c := driver.NewCompiler()
	result := c.Compile("PRINT @")
	require.False(t, result.Success)
	assert.Equal(t, []string{"unexpected character '@' at line 1, column 7"}, c.Errors())
	assert.Empty(t, c.GeneratedCode())

	result = c.Compile("PRINT 1")
	require.True(t, result.Success)
	assert.Empty(t, c.Errors())
	assert.NotNil(t, c.Program())
	assert.Equal(t, result.GeneratedCode, c.GeneratedCode())
	assert.Equal(t, []string{"PRINT                -> 'PRINT' (line 1)", "NUMBER               -> '1' (line 1)"}, c.TokensDisplay())
	assert.Equal(t, []string{"Statement 1: (print 1)"}, c.ASTDisplay())
}

func TestTokensDisplayAfterParseError(t *testing.T) {
	t.Parallel()

	c := driver.NewCompiler()
	result := c.Compile("PRINT\n")
	require.False(t, result.Success)
	assert.Equal(t, "expected expression, got NEWLINE at line 1", result.Error)
	assert.Equal(t, []string{"PRINT                -> 'PRINT' (line 1)"}, c.TokensDisplay())
	assert.Nil(t, c.Program())
}

func TestStageErrors(t *testing.T) {
	t.Parallel()

	_, err := driver.Compile(`PRINT "open`)
	require.Error(t, err)
	assert.True(t, lexer.IsLexError(err))
	assert.True(t, strings.HasPrefix(err.Error(), "lex: "))

	_, err = driver.Compile("PRINT (1")
	require.Error(t, err)
	assert.True(t, parser.IsSyntaxError(err))
	assert.Equal(t, "parse: expected RPAREN, got EOF at line 1", err.Error())

	var unexpected parser.UnexpectedTokenError
	assert.True(t, errors.As(err, &unexpected))
}

func TestVerify(t *testing.T) {
	t.Parallel()

	result := driver.NewCompiler(driver.WithVerify()).Compile("CREATE VARIABLE a WITH VALUE 1\nIF a is equal to 1 THEN\nEND IF\n")
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.GeneratedCode, "if (a == 1.0):\n    pass\n")
}

func TestVerifyRejectsPythonKeywords(t *testing.T) {
	t.Parallel()

	source := "CREATE VARIABLE class WITH VALUE 1\nPRINT class\n"

	result := driver.NewCompiler().Compile(source)
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.GeneratedCode, "class = 1.0\n")

	result = driver.NewCompiler(driver.WithVerify()).Compile(source)
	assert.False(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Error, "generated code is not valid python: "), result.Error)
	assert.Empty(t, result.GeneratedCode)
}

func TestDeterministic(t *testing.T) {
	t.Parallel()

	source := "CREATE VARIABLE total WITH VALUE 0\nSET total TO total + 0.25\nPRINT total\n"
	first, err := driver.Compile(source)
	require.NoError(t, err)
	second, err := driver.Compile(source)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConcurrentCompilers(t *testing.T) {
	t.Parallel()

	sources := []string{
		"PRINT 1",
		"CREATE VARIABLE s WITH VALUE \"x\"\nPRINT s + s",
		"WHILE 0 is greater than 1 DO\nEND WHILE",
		"PRINT (",
	}
	want := make([]driver.Result, len(sources))
	for i, source := range sources {
		want[i] = driver.NewCompiler().Compile(source)
	}

	var wg sync.WaitGroup
	got := make([][]driver.Result, 8)
	for w := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, source := range sources {
				got[w] = append(got[w], driver.NewCompiler().Compile(source))
			}
		}()
	}
	wg.Wait()

	for _, results := range got {
		if diff := cmp.Diff(want, results); diff != "" {
			t.Errorf("concurrent results differ (-want +got):\n%s", diff)
		}
	}
}
