package compiler

import (
	"strconv"

	"fave/internal/code"
	"fave/internal/token"
	"fave/internal/value"
)

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) number(bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) string(bool) {
	lexeme := c.previous.Lexeme
	s := c.heap.Intern(lexeme[1 : len(lexeme)-1])
	c.emitConstant(value.FromObj(s))
}

func (c *Compiler) literal(bool) {
	switch c.previous.Type {
	case token.FALSE:
		c.emit(code.OpFalse)
	case token.NIL:
		c.emit(code.OpNil)
	case token.TRUE:
		c.emit(code.OpTrue)
	}
}

func (c *Compiler) grouping(bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(bool) {
	op := c.previous.Type
	c.parsePrecedence(PrecUnary)

	switch op {
	case token.BANG:
		c.emit(code.OpNot)
	case token.MINUS:
		c.emit(code.OpNegate)
	}
}

// binary compiles the right operand one level tighter than the operator,
// which makes every binary operator left-associative. The three negated
// comparisons are composed from their complement and OP_NOT.
func (c *Compiler) binary(bool) {
	op := c.previous.Type
	rule := getRule(op)
	c.parsePrecedence(rule.precedence + 1)

	switch op {
	case token.NE:
		c.emit(code.OpEqual)
		c.emit(code.OpNot)
	case token.EQ:
		c.emit(code.OpEqual)
	case token.GT:
		c.emit(code.OpGreater)
	case token.GE:
		c.emit(code.OpLess)
		c.emit(code.OpNot)
	case token.LT:
		c.emit(code.OpLess)
	case token.LE:
		c.emit(code.OpGreater)
		c.emit(code.OpNot)
	case token.PLUS:
		c.emit(code.OpAdd)
	case token.MINUS:
		c.emit(code.OpSubtract)
	case token.STAR:
		c.emit(code.OpMultiply)
	case token.SLASH:
		c.emit(code.OpDivide)
	}
}

// and leaves the left operand as the result when it is falsey.
func (c *Compiler) and(bool) {
	endJump := c.emitJump(code.OpJumpIfFalse)
	c.emit(code.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

// or leaves the left operand as the result when it is truthy.
func (c *Compiler) or(bool) {
	elseJump := c.emitJump(code.OpJumpIfFalse)
	endJump := c.emitJump(code.OpJump)

	c.patchJump(elseJump)
	c.emit(code.OpPop)

	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(bool) {
	argCount := c.argumentList()
	c.emit(code.OpCall, argCount)
}

func (c *Compiler) argumentList() int {
	argCount := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argCount == MaxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return argCount
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp code.Opcode
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = code.OpGetLocal, code.OpSetLocal
	} else {
		arg = c.identifierConstant(name)
		getOp, setOp = code.OpGetGlobal, code.OpSetGlobal
	}

	if canAssign && c.match(token.ASSIGN) {
		c.expression()
		c.emit(setOp, arg)
		return
	}
	c.emit(getOp, arg)
}
