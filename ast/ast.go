package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ebpl/ebplc/token"
)

// AST

type Node interface {
	fmt.Stringer
	Base() token.Token
	// Children returns the direct child nodes in source order.
	Children() []Node
}

// Stmt is a statement node. The set of statements is closed: only the
// types in this file implement it.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node. Like Stmt, the set is closed.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of every parse.
type Program struct {
	Statements []Stmt
}

func (p Program) String() string {
	return parenthesize("program", concat(p.Statements)).String()
}

func (p *Program) Children() []Node {
	return stmtNodes(p.Statements)
}

// VarDecl is `create variable NAME with value EXPR`.
type VarDecl struct {
	Name  token.Token
	Value Expr
}

func (v VarDecl) String() string {
	return parenthesize("create", name(v.Name), v.Value).String()
}

func (v *VarDecl) Base() token.Token {
	return v.Name
}

func (v *VarDecl) Children() []Node {
	return []Node{v.Value}
}

func (*VarDecl) stmtNode() {}

// Assign is `set NAME to EXPR`.
type Assign struct {
	Name  token.Token
	Value Expr
}

func (a Assign) String() string {
	return parenthesize("set", name(a.Name), a.Value).String()
}

func (a *Assign) Base() token.Token {
	return a.Name
}

func (a *Assign) Children() []Node {
	return []Node{a.Value}
}

func (*Assign) stmtNode() {}

type Print struct {
	Keyword token.Token
	Value   Expr
}

func (p Print) String() string {
	return parenthesize("print", p.Value).String()
}

func (p *Print) Base() token.Token {
	return p.Keyword
}

func (p *Print) Children() []Node {
	return []Node{p.Value}
}

func (*Print) stmtNode() {}

// If holds an optional else branch: Else is nil when the source has no
// `else`, and empty when the branch is present but has no statements.
type If struct {
	Keyword token.Token
	Cond    Expr
	Then    []Stmt
	Else    []Stmt
}

func (i If) String() string {
	elems := []fmt.Stringer{i.Cond, parenthesize("then", concat(i.Then))}
	if i.Else != nil {
		elems = append(elems, parenthesize("else", concat(i.Else)))
	}
	return parenthesize("if", elems...).String()
}

func (i *If) Base() token.Token {
	return i.Keyword
}

func (i *If) Children() []Node {
	children := []Node{i.Cond}
	children = append(children, stmtNodes(i.Then)...)
	return append(children, stmtNodes(i.Else)...)
}

func (*If) stmtNode() {}

type While struct {
	Keyword token.Token
	Cond    Expr
	Body    []Stmt
}

func (w While) String() string {
	return parenthesize("while", w.Cond, parenthesize("do", concat(w.Body))).String()
}

func (w *While) Base() token.Token {
	return w.Keyword
}

func (w *While) Children() []Node {
	return append([]Node{w.Cond}, stmtNodes(w.Body)...)
}

func (*While) stmtNode() {}

type Number struct {
	Token token.Token
	Value float64
}

func (n Number) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Number) Base() token.Token {
	return n.Token
}

func (n *Number) Children() []Node {
	return nil
}

func (*Number) exprNode() {}

type String struct {
	Token token.Token
	Value string
}

func (s String) String() string {
	return `"` + s.Value + `"`
}

func (s *String) Base() token.Token {
	return s.Token
}

func (s *String) Children() []Node {
	return nil
}

func (*String) exprNode() {}

// Var is a reference to a variable.
type Var struct {
	Name token.Token
}

func (v Var) String() string {
	return v.Name.Lexeme
}

func (v *Var) Base() token.Token {
	return v.Name
}

func (v *Var) Children() []Node {
	return nil
}

func (*Var) exprNode() {}

// Binary is an arithmetic operation: + - * /.
type Binary struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (b Binary) String() string {
	return parenthesize(b.Operator(), b.Left, b.Right).String()
}

func (b *Binary) Base() token.Token {
	return b.Op
}

func (b *Binary) Children() []Node {
	return []Node{b.Left, b.Right}
}

func (b Binary) Operator() string {
	return b.Op.Lexeme
}

func (*Binary) exprNode() {}

// Compare is a comparison written as a phrase such as `is less than`.
type Compare struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (c Compare) String() string {
	return parenthesize(c.Operator(), c.Left, c.Right).String()
}

func (c *Compare) Base() token.Token {
	return c.Op
}

func (c *Compare) Children() []Node {
	return []Node{c.Left, c.Right}
}

// Operator returns the symbolic operator: >, <, == or !=.
func (c Compare) Operator() string {
	//exhaustive:ignore
	switch c.Op.Kind {
	case token.IS_GREATER_THAN:
		return ">"
	case token.IS_LESS_THAN:
		return "<"
	case token.IS_EQUAL_TO:
		return "=="
	case token.IS_NOT_EQUAL_TO:
		return "!="
	default:
		return c.Op.Lexeme
	}
}

func (*Compare) exprNode() {}

// Logical is `and` / `or`.
type Logical struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (l Logical) String() string {
	return parenthesize(l.Operator(), l.Left, l.Right).String()
}

func (l *Logical) Base() token.Token {
	return l.Op
}

func (l *Logical) Children() []Node {
	return []Node{l.Left, l.Right}
}

// Operator returns "and" or "or" whatever the source spelling was.
func (l Logical) Operator() string {
	if l.Op.Kind == token.AND {
		return "and"
	}
	return "or"
}

func (*Logical) exprNode() {}

var (
	_ Stmt = &VarDecl{}
	_ Stmt = &Assign{}
	_ Stmt = &Print{}
	_ Stmt = &If{}
	_ Stmt = &While{}
	_ Expr = &Number{}
	_ Expr = &String{}
	_ Expr = &Var{}
	_ Expr = &Binary{}
	_ Expr = &Compare{}
	_ Expr = &Logical{}
)

// Base of a program is its first statement's token, or EOF when empty.
func (p *Program) Base() token.Token {
	if len(p.Statements) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return p.Statements[0].Base()
}

// name prints a token by its lexeme.
type name token.Token

func (n name) String() string {
	return n.Lexeme
}

func stmtNodes(stmts []Stmt) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes
}

// parenthesize takes a head string and a variadic number of nodes that implement the fmt.Stringer interface.
// It returns a fmt.Stringer that represents a string where each node is parenthesized and separated by a space.
// If the head string is not empty, it is added at the beginning of the string.
func parenthesize(head string, elems ...fmt.Stringer) fmt.Stringer {
	var b strings.Builder
	b.WriteString("(")
	elemsStr := concat(elems).String()
	if head != "" {
		b.WriteString(head)
	}
	if elemsStr != "" {
		if head != "" {
			b.WriteString(" ")
		}
		b.WriteString(elemsStr)
	}
	b.WriteString(")")
	return &b
}

// concat takes a slice of nodes that implement the fmt.Stringer interface.
// It returns a fmt.Stringer that represents a string where each node is separated by a space.
func concat[T fmt.Stringer](elems []T) fmt.Stringer {
	var b strings.Builder
	for _, elem := range elems {
		// ignore empty string
		// e.g. concat({}) == ""
		str := elem.String()
		if str == "" {
			continue
		}
		if b.Len() != 0 {
			b.WriteString(" ")
		}
		b.WriteString(str)
	}
	return &b
}

// Walk visits n and its descendants in depth-first pre-order.
// Children of a node are skipped when f returns false.
func Walk(n Node, f func(Node) bool) {
	if !f(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, f)
	}
}
