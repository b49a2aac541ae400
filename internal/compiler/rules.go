package compiler

import "fave/internal/token"

type Precedence int

// Lowest to highest.
const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// getRule returns the prefix/infix handlers and infix precedence for t.
// Tokens that are neither get the zero rule.
func getRule(t token.Type) parseRule {
	switch t {
	case token.LPAREN:
		return parseRule{(*Compiler).grouping, (*Compiler).call, PrecCall}
	case token.MINUS:
		return parseRule{(*Compiler).unary, (*Compiler).binary, PrecTerm}
	case token.PLUS:
		return parseRule{nil, (*Compiler).binary, PrecTerm}
	case token.SLASH, token.STAR:
		return parseRule{nil, (*Compiler).binary, PrecFactor}
	case token.BANG:
		return parseRule{(*Compiler).unary, nil, PrecNone}
	case token.NE, token.EQ:
		return parseRule{nil, (*Compiler).binary, PrecEquality}
	case token.GT, token.GE, token.LT, token.LE:
		return parseRule{nil, (*Compiler).binary, PrecComparison}
	case token.IDENT:
		return parseRule{(*Compiler).variable, nil, PrecNone}
	case token.STRING:
		return parseRule{(*Compiler).string, nil, PrecNone}
	case token.NUMBER:
		return parseRule{(*Compiler).number, nil, PrecNone}
	case token.AND:
		return parseRule{nil, (*Compiler).and, PrecAnd}
	case token.OR:
		return parseRule{nil, (*Compiler).or, PrecOr}
	case token.FALSE, token.NIL, token.TRUE:
		return parseRule{(*Compiler).literal, nil, PrecNone}
	default:
		return parseRule{}
	}
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.ASSIGN) {
		c.error("Invalid assignment target.")
	}
}
