package ast

import "log"

// StmtVisitor has one method per statement type. Consumers implement it
// instead of switching on types, so a new statement type breaks every
// consumer at compile time until it is handled.
type StmtVisitor[T any] interface {
	VarDecl(s *VarDecl) T
	Assign(s *Assign) T
	Print(s *Print) T
	If(s *If) T
	While(s *While) T
}

// ExprVisitor is the expression counterpart of StmtVisitor.
type ExprVisitor[T any] interface {
	Number(e *Number) T
	Str(e *String) T
	Var(e *Var) T
	Binary(e *Binary) T
	Compare(e *Compare) T
	Logical(e *Logical) T
}

func VisitStmt[T any](v StmtVisitor[T], s Stmt) T {
	switch s := s.(type) {
	case *VarDecl:
		return v.VarDecl(s)
	case *Assign:
		return v.Assign(s)
	case *Print:
		return v.Print(s)
	case *If:
		return v.If(s)
	case *While:
		return v.While(s)
	default:
		log.Panicf("unexpected statement: %v", s)
		panic("unreachable")
	}
}

func VisitExpr[T any](v ExprVisitor[T], e Expr) T {
	switch e := e.(type) {
	case *Number:
		return v.Number(e)
	case *String:
		return v.Str(e)
	case *Var:
		return v.Var(e)
	case *Binary:
		return v.Binary(e)
	case *Compare:
		return v.Compare(e)
	case *Logical:
		return v.Logical(e)
	default:
		log.Panicf("unexpected expression: %v", e)
		panic("unreachable")
	}
}
