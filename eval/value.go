package eval

import (
	"strconv"

	"github.com/ebpl/ebplc/codegen"
)

// Value is a runtime value. String returns what Python's print shows.
type Value interface {
	String() string
	Truthy() bool
	TypeName() string
}

type Float float64

func (f Float) String() string {
	return codegen.FormatFloat(float64(f))
}

func (f Float) Truthy() bool {
	return f != 0
}

func (f Float) TypeName() string {
	return "float"
}

var _ Value = Float(0)

// Int only arises from arithmetic on booleans, as in Python.
type Int int64

func (i Int) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i Int) Truthy() bool {
	return i != 0
}

func (i Int) TypeName() string {
	return "int"
}

var _ Value = Int(0)

type String string

func (s String) String() string {
	return string(s)
}

func (s String) Truthy() bool {
	return s != ""
}

func (s String) TypeName() string {
	return "str"
}

var _ Value = String("")

type Bool bool

func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

func (b Bool) Truthy() bool {
	return bool(b)
}

func (b Bool) TypeName() string {
	return "bool"
}

var _ Value = Bool(false)

// number classifies v for arithmetic. isFloat is false for Int and Bool.
func number(v Value) (f float64, isFloat bool, ok bool) {
	switch v := v.(type) {
	case Float:
		return float64(v), true, true
	case Int:
		return float64(v), false, true
	case Bool:
		if v {
			return 1, false, true
		}
		return 0, false, true
	default:
		return 0, false, false
	}
}
