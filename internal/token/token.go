package token

type Type string

type Token struct {
	Type Type
	// Lexeme is the source slice for the token, or the message for ERROR tokens.
	Lexeme string
	Line   int
	Col    int
}

const (
	// Special
	ERROR Type = "ERROR"
	EOF   Type = "EOF"

	// Identifiers + literals
	IDENT  Type = "IDENT"
	STRING Type = "STRING"
	NUMBER Type = "NUMBER"

	// Keywords
	AND    Type = "AND"
	CLASS  Type = "CLASS"
	ELSE   Type = "ELSE"
	FALSE  Type = "FALSE"
	FOR    Type = "FOR"
	FUN    Type = "FUN"
	IF     Type = "IF"
	NIL    Type = "NIL"
	OR     Type = "OR"
	PRINT  Type = "PRINT"
	RETURN Type = "RETURN"
	SUPER  Type = "SUPER"
	THIS   Type = "THIS"
	TRUE   Type = "TRUE"
	VAR    Type = "VAR"
	WHILE  Type = "WHILE"

	// Operators
	ASSIGN Type = "="
	PLUS   Type = "+"
	MINUS  Type = "-"
	STAR   Type = "*"
	SLASH  Type = "/"
	BANG   Type = "!"

	EQ Type = "=="
	NE Type = "!="
	LT Type = "<"
	LE Type = "<="
	GT Type = ">"
	GE Type = ">="

	// Delimiters
	SEMICOLON Type = ";"
	COMMA     Type = ","
	DOT       Type = "."
	LPAREN    Type = "("
	RPAREN    Type = ")"
	LBRACE    Type = "{"
	RBRACE    Type = "}"
)

var keywords = map[string]Type{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// StartsStatement reports whether t begins a declaration or statement. The
// compiler resynchronizes on these after an error.
func StartsStatement(t Type) bool {
	switch t {
	case CLASS, FUN, VAR, FOR, IF, WHILE, PRINT, RETURN:
		return true
	}
	return false
}
