package eval

import (
	"bytes"
	"strings"

	"github.com/go-python/gpython/parser"

	"github.com/ebpl/ebplc/ast"
	"github.com/ebpl/ebplc/codegen"
)

// prepare finds what Python would refuse to compile in the generated
// module: names that are keywords and string literals that do not decode.
// Decoded literals are kept for the run.
func (ev *Evaluator) prepare(program *ast.Program) error {
	ev.literals = make(map[*ast.String]string)

	var err error
	ast.Walk(program, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.VarDecl:
			err = checkName(n, n.Name.Lexeme)
		case *ast.Assign:
			err = checkName(n, n.Name.Lexeme)
		case *ast.Var:
			err = checkName(n, n.Name.Lexeme)
		case *ast.String:
			var s string
			if s, err = decodeLiteral(n); err == nil {
				ev.literals[n] = s
			}
		}
		return err == nil
	})

	return err
}

func checkName(n ast.Node, name string) error {
	if codegen.Reserved[name] {
		return evalError(n, "SyntaxError", "invalid syntax: '"+name+"' is a keyword")
	}

	return nil
}

// decodeLiteral applies Python's escape sequences to the text of a string
// literal, which the generated code quotes without change.
func decodeLiteral(e *ast.String) (string, error) {
	raw := e.Value
	if !strings.Contains(raw, `\`) {
		return raw, nil
	}
	// An odd run of trailing backslashes escapes the closing quote.
	trailing := len(raw) - len(strings.TrimRight(raw, `\`))
	if trailing%2 == 1 {
		return "", evalError(e, "SyntaxError", "unterminated string literal")
	}

	out, err := parser.DecodeEscape(bytes.NewBufferString(raw), false)
	if err != nil {
		return "", evalError(e, "SyntaxError", "(unicode error) "+err.Error())
	}

	return out.String(), nil
}
