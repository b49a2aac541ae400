package compiler

import (
	"fave/internal/code"
	"fave/internal/object"
	"fave/internal/token"
	"fave/internal/value"
)

func (c *Compiler) beginScope() {
	c.currentScope().scopeDepth++
}

// endScope pops every local declared in the block being closed, both from
// the compile-time list and, via OP_POP, from the runtime stack.
func (c *Compiler) endScope() {
	scope := c.currentScope()
	scope.scopeDepth--

	for len(scope.locals) > 0 && scope.locals[len(scope.locals)-1].Depth > scope.scopeDepth {
		c.emit(code.OpPop)
		scope.locals = scope.locals[:len(scope.locals)-1]
	}
}

// identifierConstant returns the pool index of name's interned string,
// reusing an existing entry for the same name.
func (c *Compiler) identifierConstant(name token.Token) int {
	s := c.heap.Intern(name.Lexeme)
	for i, k := range c.currentChunk().Constants {
		if other, ok := object.AsString(k); ok && other == s {
			return i
		}
	}
	return c.makeConstant(value.FromObj(s))
}

func identifiersEqual(a, b token.Token) bool {
	return a.Lexeme == b.Lexeme
}

// resolveLocal returns the slot of the innermost local named name, or -1 if
// it should be treated as a global.
func (c *Compiler) resolveLocal(name token.Token) int {
	locals := c.currentScope().locals
	for i := len(locals) - 1; i >= 0; i-- {
		local := locals[i]
		if identifiersEqual(name, local.Name) {
			if local.Depth == uninitialized {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addLocal(name token.Token) {
	scope := c.currentScope()
	if len(scope.locals) == MaxLocals {
		c.error("Too many local variables in function.")
		return
	}
	scope.locals = append(scope.locals, Local{Name: name, Depth: uninitialized})
}

func (c *Compiler) declareVariable() {
	scope := c.currentScope()
	if scope.scopeDepth == 0 {
		return
	}

	name := c.previous
	for i := len(scope.locals) - 1; i >= 0; i-- {
		local := scope.locals[i]
		if local.Depth != uninitialized && local.Depth < scope.scopeDepth {
			break
		}
		if identifiersEqual(name, local.Name) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

// parseVariable consumes a variable name. It returns the name's constant
// index for globals and 0 for locals, which need none.
func (c *Compiler) parseVariable(message string) int {
	c.consume(token.IDENT, message)

	c.declareVariable()
	if c.currentScope().scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) markInitialized() {
	scope := c.currentScope()
	if scope.scopeDepth == 0 {
		return
	}
	scope.locals[len(scope.locals)-1].Depth = scope.scopeDepth
}

func (c *Compiler) defineVariable(global int) {
	if c.currentScope().scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emit(code.OpDefineGlobal, global)
}
