package token

import "fmt"

type Kind int

const (
	EOF Kind = iota
	NEWLINE

	// Keywords.
	CREATE
	VARIABLE
	WITH
	VALUE
	SET
	TO
	IF
	THEN
	ELSE
	END
	PRINT
	WHILE
	DO
	AND
	OR
	NOT

	// Multi-word comparison operators.
	IS_GREATER_THAN
	IS_LESS_THAN
	IS_EQUAL_TO
	IS_NOT_EQUAL_TO

	// Single-character tokens.
	EQUALS
	PLUS
	MINUS
	MULTIPLY
	DIVIDE
	LPAREN
	RPAREN

	// Literals and identifiers.
	IDENTIFIER
	NUMBER
	STRING
)

var kindNames = [...]string{
	EOF:             "EOF",
	NEWLINE:         "NEWLINE",
	CREATE:          "CREATE",
	VARIABLE:        "VARIABLE",
	WITH:            "WITH",
	VALUE:           "VALUE",
	SET:             "SET",
	TO:              "TO",
	IF:              "IF",
	THEN:            "THEN",
	ELSE:            "ELSE",
	END:             "END",
	PRINT:           "PRINT",
	WHILE:           "WHILE",
	DO:              "DO",
	AND:             "AND",
	OR:              "OR",
	NOT:             "NOT",
	IS_GREATER_THAN: "IS_GREATER_THAN",
	IS_LESS_THAN:    "IS_LESS_THAN",
	IS_EQUAL_TO:     "IS_EQUAL_TO",
	IS_NOT_EQUAL_TO: "IS_NOT_EQUAL_TO",
	EQUALS:          "EQUALS",
	PLUS:            "PLUS",
	MINUS:           "MINUS",
	MULTIPLY:        "MULTIPLY",
	DIVIDE:          "DIVIDE",
	LPAREN:          "LPAREN",
	RPAREN:          "RPAREN",
	IDENTIFIER:      "IDENTIFIER",
	NUMBER:          "NUMBER",
	STRING:          "STRING",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps the lower-cased spelling of every reserved word to its kind.
var Keywords = map[string]Kind{
	"create":   CREATE,
	"variable": VARIABLE,
	"with":     WITH,
	"value":    VALUE,
	"set":      SET,
	"to":       TO,
	"if":       IF,
	"then":     THEN,
	"else":     ELSE,
	"end":      END,
	"print":    PRINT,
	"while":    WHILE,
	"do":       DO,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
}

// Phrase is a comparison operator spelled as several words.
type Phrase struct {
	Words []string
	Kind  Kind
}

// Phrases lists the comparison phrases. Longer phrases sharing a prefix
// with shorter ones must come first.
var Phrases = []Phrase{
	{Words: []string{"is", "not", "equal", "to"}, Kind: IS_NOT_EQUAL_TO},
	{Words: []string{"is", "greater", "than"}, Kind: IS_GREATER_THAN},
	{Words: []string{"is", "less", "than"}, Kind: IS_LESS_THAN},
	{Words: []string{"is", "equal", "to"}, Kind: IS_EQUAL_TO},
}

// IsComparison reports whether k is one of the comparison phrase kinds.
func (k Kind) IsComparison() bool {
	return k >= IS_GREATER_THAN && k <= IS_NOT_EQUAL_TO
}

type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("{%v, %q, %d:%d}", t.Kind, t.Lexeme, t.Line, t.Column)
}

// Display renders t for the token listing shown to users.
func (t Token) Display() string {
	return fmt.Sprintf("%-20s -> '%s' (line %d)", t.Kind, t.Lexeme, t.Line)
}
