// Package pycheck validates generated Python text without running it.
package pycheck

import (
	"fmt"
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
)

// Filename names the source in gpython diagnostics.
const Filename = "<ebpl>"

// InvalidPythonError means the text is not a Python module.
type InvalidPythonError struct {
	Err error
}

func (e InvalidPythonError) Error() string {
	return fmt.Sprintf("generated code is not valid python: %v", e.Err)
}

func (e InvalidPythonError) Unwrap() error {
	return e.Err
}

// Check parses src as a Python module and returns the number of
// top-level statements it contains.
func Check(src string) (int, error) {
	mod, err := parser.Parse(strings.NewReader(src), Filename, py.ExecMode)
	if err != nil {
		return 0, InvalidPythonError{Err: err}
	}

	module, ok := mod.(*ast.Module)
	if !ok {
		return 0, InvalidPythonError{Err: fmt.Errorf("expected *ast.Module, got %T", mod)}
	}

	return len(module.Body), nil
}
