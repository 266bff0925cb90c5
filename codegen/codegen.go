// Package codegen renders a parsed EBPL program as Python 3 source.
package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ebpl/ebplc/ast"
)

const indentUnit = "    "

// Header opens every generated file.
var Header = []string{
	"#!/usr/bin/env python3",
	"# Generated from EBPL",
	"",
}

// Reserved lists the Python 3 keywords. Names are emitted verbatim, so an
// EBPL variable spelled like one of these yields a Python syntax error.
var Reserved = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true,
	"else": true, "except": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true,
}

// Generate returns the Python text for program, one line per statement
// plus nested bodies, ending with a newline. It cannot fail: every tree
// the parser builds has a rendering.
func Generate(program *ast.Program) string {
	g := &generator{}
	lines := append([]string{}, Header...)
	for _, stmt := range program.Statements {
		lines = append(lines, ast.VisitStmt[[]string](g, stmt)...)
	}

	return strings.Join(lines, "\n") + "\n"
}

// Expr renders a single expression.
func Expr(e ast.Expr) string {
	return ast.VisitExpr[string](exprRenderer{}, e)
}

type generator struct {
	depth int
}

var _ ast.StmtVisitor[[]string] = &generator{}

func (g *generator) line(format string, args ...any) string {
	return strings.Repeat(indentUnit, g.depth) + fmt.Sprintf(format, args...)
}

// body renders stmts one level deeper. Python needs at least one
// statement in a suite, so an empty body becomes `pass`.
func (g *generator) body(stmts []ast.Stmt) []string {
	g.depth++
	defer func() { g.depth-- }()

	if len(stmts) == 0 {
		return []string{g.line("pass")}
	}
	var lines []string
	for _, stmt := range stmts {
		lines = append(lines, ast.VisitStmt[[]string](g, stmt)...)
	}

	return lines
}

func (g *generator) VarDecl(s *ast.VarDecl) []string {
	return []string{g.line("%s = %s", s.Name.Lexeme, Expr(s.Value))}
}

func (g *generator) Assign(s *ast.Assign) []string {
	return []string{g.line("%s = %s", s.Name.Lexeme, Expr(s.Value))}
}

func (g *generator) Print(s *ast.Print) []string {
	return []string{g.line("print(%s)", Expr(s.Value))}
}

func (g *generator) If(s *ast.If) []string {
	lines := []string{g.line("if %s:", Expr(s.Cond))}
	lines = append(lines, g.body(s.Then)...)
	if len(s.Else) > 0 {
		lines = append(lines, g.line("else:"))
		lines = append(lines, g.body(s.Else)...)
	}

	return lines
}

func (g *generator) While(s *ast.While) []string {
	lines := []string{g.line("while %s:", Expr(s.Cond))}

	return append(lines, g.body(s.Body)...)
}

// exprRenderer parenthesizes every operator node, so Python's own
// precedence never changes the meaning.
type exprRenderer struct{}

var _ ast.ExprVisitor[string] = exprRenderer{}

func (exprRenderer) Number(e *ast.Number) string {
	return FormatFloat(e.Value)
}

// Str wraps the literal in double quotes as is. Backslashes are not
// escaped, so Python interprets them.
func (exprRenderer) Str(e *ast.String) string {
	return `"` + e.Value + `"`
}

func (exprRenderer) Var(e *ast.Var) string {
	return e.Name.Lexeme
}

func (r exprRenderer) Binary(e *ast.Binary) string {
	return r.infix(e.Left, e.Operator(), e.Right)
}

func (r exprRenderer) Compare(e *ast.Compare) string {
	return r.infix(e.Left, e.Operator(), e.Right)
}

func (r exprRenderer) Logical(e *ast.Logical) string {
	return r.infix(e.Left, e.Operator(), e.Right)
}

func (r exprRenderer) infix(left ast.Expr, op string, right ast.Expr) string {
	return fmt.Sprintf("(%s %s %s)", ast.VisitExpr[string](r, left), op, ast.VisitExpr[string](r, right))
}

// FormatFloat formats f the way Python's repr formats a float:
// integral values keep a trailing ".0" and very large or very small
// magnitudes switch to exponent notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
