// Package eval runs an EBPL program directly, with the semantics the
// generated Python has. It lets the toolchain show program output when no
// Python interpreter is installed.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/ebpl/ebplc/ast"
	"github.com/ebpl/ebplc/utils"
)

// DefaultMaxSteps bounds the statements a single Run may execute.
const DefaultMaxSteps = 1_000_000

const maxStringLen = 1 << 28

var ErrStepLimit = errors.New("step limit exceeded")

// RuntimeError mirrors a Python exception: Kind is the exception class.
type RuntimeError struct {
	Kind    string
	Message string
}

func (e RuntimeError) Error() string {
	return e.Kind + ": " + e.Message
}

// Evaluator evaluates the program.
type Evaluator struct {
	Stdout   io.Writer
	MaxSteps int

	ctx      context.Context
	env      map[string]Value
	literals map[*ast.String]string
	steps    int
}

// NewEvaluator creates a new Evaluator printing to stdout.
func NewEvaluator(stdout io.Writer) *Evaluator {
	return &Evaluator{
		Stdout:   stdout,
		MaxSteps: DefaultMaxSteps,
		env:      make(map[string]Value),
		literals: make(map[*ast.String]string),
	}
}

var _ ast.StmtVisitor[error] = &Evaluator{}

// Run executes the statements of program in order. Variables persist
// across calls, so a REPL can feed one program after another.
func (ev *Evaluator) Run(ctx context.Context, program *ast.Program) error {
	// Python rejects the whole module before running any of it.
	if err := ev.prepare(program); err != nil {
		return err
	}

	ev.ctx = ctx
	ev.steps = 0
	defer func() { ev.ctx = nil }()

	return ev.block(program.Statements)
}

// Lookup returns the current value of a variable.
func (ev *Evaluator) Lookup(name string) (Value, bool) {
	v, ok := ev.env[name]
	return v, ok
}

func (ev *Evaluator) block(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := ev.step(); err != nil {
			return err
		}
		if err := ast.VisitStmt[error](ev, stmt); err != nil {
			return err
		}
	}

	return nil
}

func (ev *Evaluator) step() error {
	if ev.ctx != nil {
		if err := ev.ctx.Err(); err != nil {
			return err
		}
	}
	ev.steps++
	if ev.MaxSteps > 0 && ev.steps > ev.MaxSteps {
		return fmt.Errorf("%w: %d", ErrStepLimit, ev.MaxSteps)
	}

	return nil
}

func (ev *Evaluator) VarDecl(s *ast.VarDecl) error {
	v, err := ev.Eval(s.Value)
	if err != nil {
		return err
	}
	ev.env[s.Name.Lexeme] = v

	return nil
}

func (ev *Evaluator) Assign(s *ast.Assign) error {
	v, err := ev.Eval(s.Value)
	if err != nil {
		return err
	}
	ev.env[s.Name.Lexeme] = v

	return nil
}

func (ev *Evaluator) Print(s *ast.Print) error {
	v, err := ev.Eval(s.Value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ev.Stdout, v.String())

	return err
}

func (ev *Evaluator) If(s *ast.If) error {
	cond, err := ev.Eval(s.Cond)
	if err != nil {
		return err
	}
	if cond.Truthy() {
		return ev.block(s.Then)
	}

	return ev.block(s.Else)
}

func (ev *Evaluator) While(s *ast.While) error {
	for {
		cond, err := ev.Eval(s.Cond)
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			return nil
		}
		// count the iteration itself so an empty body still hits the limit
		if err := ev.step(); err != nil {
			return err
		}
		if err := ev.block(s.Body); err != nil {
			return err
		}
	}
}

// Eval evaluates a single expression against the current variables.
func (ev *Evaluator) Eval(expr ast.Expr) (Value, error) {
	r := ast.VisitExpr[result](exprEvaluator{ev}, expr)

	return r.v, r.err
}

type result struct {
	v   Value
	err error
}

func valueOf(v Value) result {
	return result{v: v}
}

func errorOf(err error) result {
	return result{err: err}
}

type exprEvaluator struct {
	ev *Evaluator
}

var _ ast.ExprVisitor[result] = exprEvaluator{}

func (x exprEvaluator) Number(e *ast.Number) result {
	return valueOf(Float(e.Value))
}

func (x exprEvaluator) Str(e *ast.String) result {
	if s, found := x.ev.literals[e]; found {
		return valueOf(String(s))
	}
	s, err := decodeLiteral(e)
	if err != nil {
		return errorOf(err)
	}

	return valueOf(String(s))
}

func (x exprEvaluator) Var(e *ast.Var) result {
	if v, found := x.ev.env[e.Name.Lexeme]; found {
		return valueOf(v)
	}

	return errorOf(evalError(e, "NameError", fmt.Sprintf("name '%s' is not defined", e.Name.Lexeme)))
}

func (x exprEvaluator) Logical(e *ast.Logical) result {
	left := ast.VisitExpr[result](x, e.Left)
	if left.err != nil {
		return left
	}
	// Python's and/or yield an operand, not a bool.
	if (e.Operator() == "and") != left.v.Truthy() {
		return left
	}

	return ast.VisitExpr[result](x, e.Right)
}

func (x exprEvaluator) Binary(e *ast.Binary) result {
	left, right, err := x.operands(e.Left, e.Right)
	if err != nil {
		return errorOf(err)
	}
	v, err := arith(e, left, right)

	return result{v: v, err: err}
}

func (x exprEvaluator) Compare(e *ast.Compare) result {
	left, right, err := x.operands(e.Left, e.Right)
	if err != nil {
		return errorOf(err)
	}
	v, err := compare(e, left, right)

	return result{v: v, err: err}
}

func (x exprEvaluator) operands(l, r ast.Expr) (Value, Value, error) {
	left := ast.VisitExpr[result](x, l)
	if left.err != nil {
		return nil, nil, left.err
	}
	right := ast.VisitExpr[result](x, r)
	if right.err != nil {
		return nil, nil, right.err
	}

	return left.v, right.v, nil
}

func arith(e *ast.Binary, left, right Value) (Value, error) {
	op := e.Operator()
	if ls, isStr := left.(String); isStr && op == "+" {
		if rs, isStr := right.(String); isStr {
			return ls + rs, nil
		}
		return nil, evalError(e, "TypeError", fmt.Sprintf("can only concatenate str (not \"%s\") to str", right.TypeName()))
	}
	if op == "*" {
		if s, n, isSeq := sequence(left, right); isSeq {
			return repeat(e, s, n)
		}
	}

	l, lf, lok := number(left)
	r, rf, rok := number(right)
	if !lok || !rok {
		return nil, evalError(e, "TypeError", fmt.Sprintf("unsupported operand type(s) for %s: '%s' and '%s'", op, left.TypeName(), right.TypeName()))
	}
	isFloat := lf || rf

	switch op {
	case "+":
		return numberResult(l+r, isFloat), nil
	case "-":
		return numberResult(l-r, isFloat), nil
	case "*":
		return numberResult(l*r, isFloat), nil
	case "/":
		if r == 0 {
			if isFloat {
				return nil, evalError(e, "ZeroDivisionError", "float division by zero")
			}
			return nil, evalError(e, "ZeroDivisionError", "division by zero")
		}
		return Float(l / r), nil
	default:
		log.Panicf("unexpected operator: %s", op)
		return nil, nil
	}
}

// sequence picks the str operand of a multiplication and the other one
// as the count, in either order.
func sequence(left, right Value) (String, Value, bool) {
	if s, isStr := left.(String); isStr {
		return s, right, true
	}
	if s, isStr := right.(String); isStr {
		return s, left, true
	}

	return "", nil, false
}

// repeat is str * int. Only int and bool counts are allowed, and a count
// below one gives the empty string.
func repeat(e *ast.Binary, s String, count Value) (Value, error) {
	n, isFloat, isNumber := number(count)
	if !isNumber || isFloat {
		return nil, evalError(e, "TypeError", fmt.Sprintf("can't multiply sequence by non-int of type '%s'", count.TypeName()))
	}
	if n < 1 {
		return String(""), nil
	}
	if float64(len(s))*n > maxStringLen {
		return nil, evalError(e, "MemoryError", "repeated string is too long")
	}

	return String(strings.Repeat(string(s), int(n))), nil
}

func numberResult(f float64, isFloat bool) Value {
	if isFloat {
		return Float(f)
	}
	return Int(math.Round(f))
}

func compare(e *ast.Compare, left, right Value) (Value, error) {
	op := e.Operator()
	l, _, lok := number(left)
	r, _, rok := number(right)
	ls, lstr := left.(String)
	rs, rstr := right.(String)

	switch op {
	case "==", "!=":
		var equal bool
		switch {
		case lok && rok:
			equal = l == r
		case lstr && rstr:
			equal = ls == rs
		}
		return Bool(equal == (op == "==")), nil
	}

	switch {
	case lok && rok:
		if op == ">" {
			return Bool(l > r), nil
		}
		return Bool(l < r), nil
	case lstr && rstr:
		if op == ">" {
			return Bool(ls > rs), nil
		}
		return Bool(ls < rs), nil
	default:
		return nil, evalError(e, "TypeError", fmt.Sprintf("'%s' not supported between instances of '%s' and '%s'", op, left.TypeName(), right.TypeName()))
	}
}

func evalError(node ast.Node, kind, msg string) error {
	return utils.PosError{Where: node.Base(), Err: RuntimeError{Kind: kind, Message: msg}}
}
