package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ebpl/ebplc/ast"
	"github.com/ebpl/ebplc/token"
)

type Parser struct {
	tokens  []token.Token
	current int
}

// NewParser returns a parser over tokens. A missing trailing EOF token is added.
func NewParser(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		eof := token.Token{Kind: token.EOF, Line: 1, Column: 1}
		if len(tokens) > 0 {
			eof.Line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}

	return &Parser{tokens, 0}
}

// ParseProgram parses the whole token sequence.
// It stops at the first token that does not fit the grammar.
//
// program = (statement NEWLINE*)* ;
func (p *Parser) ParseProgram() (*ast.Program, error) {
	stmts := []ast.Stmt{}
	for !p.IsAtEnd() {
		if p.match(token.NEWLINE) {
			p.advance()
			continue
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Program{Statements: stmts}, nil
}

// ParseExpr parses a single expression that must span the whole input,
// apart from trailing newlines.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	for p.match(token.NEWLINE) {
		p.advance()
	}
	if !p.IsAtEnd() {
		return nil, unexpectedToken(p.peek(), token.EOF.String())
	}

	return expr, nil
}

// statement = varDecl | assignment | printStmt | ifStmt | whileStmt ;
func (p *Parser) statement() (ast.Stmt, error) {
	//exhaustive:ignore
	switch p.peek().Kind {
	case token.CREATE:
		return p.varDecl()
	case token.SET:
		return p.assignment()
	case token.PRINT:
		return p.printStmt()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	default:
		return nil, unexpectedToken(p.peek(), "statement")
	}
}

// varDecl = "create" "variable" IDENTIFIER "with" "value" expr ;
func (p *Parser) varDecl() (*ast.VarDecl, error) {
	if _, err := p.consume(token.CREATE, token.VARIABLE); err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.WITH, token.VALUE); err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}

	return &ast.VarDecl{Name: name, Value: value}, nil
}

// assignment = "set" IDENTIFIER "to" expr ;
func (p *Parser) assignment() (*ast.Assign, error) {
	if _, err := p.consume(token.SET); err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.TO); err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}

	return &ast.Assign{Name: name, Value: value}, nil
}

// printStmt = "print" expr ;
func (p *Parser) printStmt() (*ast.Print, error) {
	keyword, err := p.consume(token.PRINT)
	if err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}

	return &ast.Print{Keyword: keyword, Value: value}, nil
}

// ifStmt = "if" logical "then" block ("else" block)? "end" "if" ;
func (p *Parser) ifStmt() (*ast.If, error) {
	keyword, err := p.consume(token.IF)
	if err != nil {
		return nil, err
	}
	cond, err := p.logical()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.block(token.END, token.ELSE)
	if err != nil {
		return nil, err
	}

	var els []ast.Stmt
	if p.match(token.ELSE) {
		p.advance()
		els, err = p.block(token.END)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.END, token.IF); err != nil {
		return nil, err
	}

	return &ast.If{Keyword: keyword, Cond: cond, Then: then, Else: els}, nil
}

// whileStmt = "while" logical "do" block "end" "while" ;
func (p *Parser) whileStmt() (*ast.While, error) {
	keyword, err := p.consume(token.WHILE)
	if err != nil {
		return nil, err
	}
	cond, err := p.logical()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.DO); err != nil {
		return nil, err
	}
	body, err := p.block(token.END)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.END, token.WHILE); err != nil {
		return nil, err
	}

	return &ast.While{Keyword: keyword, Cond: cond, Body: body}, nil
}

// block = (NEWLINE | statement)* ;
// The block ends before any of the terminators or at EOF.
func (p *Parser) block(terminators ...token.Kind) ([]ast.Stmt, error) {
	stmts := []ast.Stmt{}
	for !p.IsAtEnd() && !p.matchAny(terminators...) {
		if p.match(token.NEWLINE) {
			p.advance()
			continue
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

// expr = logical ;
func (p *Parser) expr() (ast.Expr, error) {
	return p.logical()
}

// logical = comparison (("and" | "or") comparison)* ;
func (p *Parser) logical() (ast.Expr, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.AND, token.OR) {
		op := p.advance()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// comparison = addition (cmpOp addition)* ;
// cmpOp = "is greater than" | "is less than" | "is equal to" | "is not equal to" ;
func (p *Parser) comparison() (ast.Expr, error) {
	left, err := p.addition()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind.IsComparison() {
		op := p.advance()
		right, err := p.addition()
		if err != nil {
			return nil, err
		}
		left = &ast.Compare{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// addition = multiplication (("+" | "-") multiplication)* ;
func (p *Parser) addition() (ast.Expr, error) {
	left, err := p.multiplication()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.PLUS, token.MINUS) {
		op := p.advance()
		right, err := p.multiplication()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// multiplication = primary (("*" | "/") primary)* ;
func (p *Parser) multiplication() (ast.Expr, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.MULTIPLY, token.DIVIDE) {
		op := p.advance()
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// primary = NUMBER | STRING | IDENTIFIER | "(" expr ")" ;
func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	//exhaustive:ignore
	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, InvalidNumberError{Where: tok, Err: err}
		}

		return &ast.Number{Token: tok, Value: value}, nil
	case token.STRING:
		p.advance()

		return &ast.String{Token: tok, Value: tok.Lexeme}, nil
	case token.IDENTIFIER:
		p.advance()

		return &ast.Var{Name: tok}, nil
	case token.LPAREN:
		p.advance()
		expr, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN); err != nil {
			return nil, err
		}

		return expr, nil
	default:
		return nil, unexpectedToken(tok, "expression")
	}
}

func (p Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) advance() token.Token {
	if !p.IsAtEnd() {
		p.current++
	}

	return p.previous()
}

func (p Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p Parser) IsAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p Parser) match(kind token.Kind) bool {
	if p.IsAtEnd() {
		return false
	}

	return p.peek().Kind == kind
}

func (p Parser) matchAny(kinds ...token.Kind) bool {
	for _, kind := range kinds {
		if p.match(kind) {
			return true
		}
	}

	return false
}

// consume requires each of kinds in sequence and returns the last token consumed.
func (p *Parser) consume(kinds ...token.Kind) (token.Token, error) {
	var tok token.Token
	for _, kind := range kinds {
		if !p.match(kind) {
			return p.peek(), unexpectedToken(p.peek(), kind.String())
		}
		tok = p.advance()
	}

	return tok, nil
}

// UnexpectedTokenError is the syntax error: Got does not fit any of Expected.
type UnexpectedTokenError struct {
	Expected []string
	Got      token.Token
}

func (e UnexpectedTokenError) Error() string {
	return fmt.Sprintf("expected %s, got %s at line %d", strings.Join(e.Expected, " or "), e.Got.Kind, e.Got.Line)
}

func unexpectedToken(t token.Token, expected ...string) error {
	return UnexpectedTokenError{Expected: expected, Got: t}
}

// InvalidNumberError reports a numeric literal that does not fit a float64.
type InvalidNumberError struct {
	Where token.Token
	Err   error
}

func (e InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid number %s at line %d: %v", e.Where.Lexeme, e.Where.Line, e.Err)
}

func (e InvalidNumberError) Unwrap() error {
	return e.Err
}

// IsSyntaxError reports whether err comes from the parser.
func IsSyntaxError(err error) bool {
	var unexpected UnexpectedTokenError
	var invalid InvalidNumberError

	return errors.As(err, &unexpected) || errors.As(err, &invalid)
}
