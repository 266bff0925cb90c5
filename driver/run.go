package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ebpl/ebplc/ast"
	"github.com/ebpl/ebplc/codegen"
	"github.com/ebpl/ebplc/lexer"
	"github.com/ebpl/ebplc/parser"
	"github.com/ebpl/ebplc/pycheck"
	"github.com/ebpl/ebplc/token"
)

// ErrEmptySource is returned for source that is empty or only whitespace.
var ErrEmptySource = errors.New("source code is required")

// Compile runs the pipeline once: lex, parse, generate.
// Stage errors are wrapped with the stage name.
func Compile(source string) (string, error) {
	_, program, err := Parse(source)
	if err != nil {
		return "", err
	}

	return codegen.Generate(program), nil
}

// Parse lexes and parses source, returning the tokens as well.
func Parse(source string) ([]token.Token, *ast.Program, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return nil, nil, fmt.Errorf("lex: %w", err)
	}

	program, err := parser.NewParser(tokens).ParseProgram()
	if err != nil {
		return tokens, nil, fmt.Errorf("parse: %w", err)
	}

	return tokens, program, nil
}

// Result is what a caller of the compiler sees.
type Result struct {
	Success       bool     `json:"success"`
	Tokens        []string `json:"tokens,omitempty"`
	AST           []string `json:"ast,omitempty"`
	GeneratedCode string   `json:"generatedCode,omitempty"`
	Error         string   `json:"error,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

type Option func(*Compiler)

// WithVerify makes the compiler parse its own output as Python and report
// a failure if that does not succeed.
func WithVerify() Option {
	return func(c *Compiler) {
		c.verify = true
	}
}

// Compiler keeps the artifacts of its last compilation for the debug
// projections. A Compiler is not safe for concurrent use; create one per
// compilation. The package-level Compile shares nothing between calls.
type Compiler struct {
	verify bool

	tokens  []token.Token
	program *ast.Program
	code    string
	errors  []string
}

func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile compiles source and reports the outcome. The first error of any
// stage ends the compilation; the message does not say which stage failed
// other than through its text.
func (c *Compiler) Compile(source string) Result {
	c.tokens, c.program, c.code, c.errors = nil, nil, "", nil

	if strings.TrimSpace(source) == "" {
		return c.fail(ErrEmptySource)
	}

	tokens, program, err := Parse(source)
	c.tokens = tokens
	if err != nil {
		return c.fail(errors.Unwrap(err))
	}
	c.program = program
	code := codegen.Generate(program)

	if c.verify {
		if _, err := pycheck.Check(code); err != nil {
			return c.fail(err)
		}
	}
	c.code = code

	return Result{
		Success:       true,
		Tokens:        c.TokensDisplay(),
		AST:           c.ASTDisplay(),
		GeneratedCode: code,
	}
}

func (c *Compiler) fail(err error) Result {
	c.errors = append(c.errors, err.Error())

	return Result{Success: false, Error: err.Error(), Errors: c.Errors()}
}

// Program returns the tree of the last successful compilation, or nil.
func (c *Compiler) Program() *ast.Program {
	return c.program
}

// GeneratedCode returns the Python text of the last successful compilation.
func (c *Compiler) GeneratedCode() string {
	return c.code
}

func (c *Compiler) Errors() []string {
	return append([]string(nil), c.errors...)
}

// TokensDisplay lists the tokens of the last compilation, one per line,
// leaving out NEWLINE and EOF.
func (c *Compiler) TokensDisplay() []string {
	lines := []string{}
	for _, tok := range c.tokens {
		if tok.Kind == token.NEWLINE || tok.Kind == token.EOF {
			continue
		}
		lines = append(lines, tok.Display())
	}

	return lines
}

// ASTDisplay summarizes each top-level statement of the last compilation.
func (c *Compiler) ASTDisplay() []string {
	if c.program == nil {
		return []string{"No AST generated"}
	}

	lines := make([]string, len(c.program.Statements))
	for i, stmt := range c.program.Statements {
		lines[i] = fmt.Sprintf("Statement %d: %s", i+1, stmt)
	}

	return lines
}
