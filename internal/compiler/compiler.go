// Package compiler turns source text directly into bytecode. There is no
// syntax tree: a Pratt parser drives code generation token by token.
package compiler

import (
	"io"
	"math"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/tliron/commonlog"

	"fave/internal/code"
	"fave/internal/diag"
	"fave/internal/heap"
	"fave/internal/lexer"
	"fave/internal/object"
	"fave/internal/token"
	"fave/internal/value"
)

const (
	MaxLocals = 256
	MaxArgs   = 255
)

// uninitialized marks a local whose initializer is still being compiled.
const uninitialized = -1

type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
)

type Local struct {
	Name  token.Token
	Depth int
}

// compilationScope is the state for one function body. Scopes form a stack;
// the entry below the top is the enclosing function.
type compilationScope struct {
	function   *object.Function
	kind       FunctionType
	locals     []Local
	scopeDepth int
}

type Option func(*Compiler)

// WithErrorWriter sets where diagnostics are printed. Defaults to stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(c *Compiler) { c.errOut = w }
}

// WithPrintCode disassembles every successfully compiled function to w.
func WithPrintCode(w io.Writer) Option {
	return func(c *Compiler) { c.codeOut = w }
}

func WithLogger(log commonlog.Logger) Option {
	return func(c *Compiler) { c.log = log }
}

type Compiler struct {
	heap  *heap.Heap
	lexer *lexer.Lexer

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errs      *multierror.Error

	scopes     []*compilationScope
	scopeIndex int

	errOut  io.Writer
	codeOut io.Writer
	log     commonlog.Logger
}

func New(h *heap.Heap, opts ...Option) *Compiler {
	c := &Compiler{
		heap:   h,
		errOut: os.Stderr,
		log:    commonlog.GetLogger("fave.compiler"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Compile is a convenience wrapper for New(h, opts...).Compile(source).
func Compile(source string, h *heap.Heap, opts ...Option) (*object.Function, error) {
	return New(h, opts...).Compile(source)
}

// Compile compiles a whole program into the top-level script function. On
// failure it returns a nil function and an error wrapping every diagnostic;
// each diagnostic has also been printed to the error writer.
func (c *Compiler) Compile(source string) (*object.Function, error) {
	c.lexer = lexer.New(source)
	c.hadError = false
	c.panicMode = false
	c.errs = nil
	c.scopes = nil
	c.scopeIndex = -1

	c.pushScope(TypeScript)
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if c.hadError {
		return nil, c.errs.ErrorOrNil()
	}
	return fn, nil
}

// Diagnostics extracts the individual diagnostics from a Compile error.
func Diagnostics(err error) []diag.Diagnostic {
	if err == nil {
		return nil
	}
	var out []diag.Diagnostic
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			if d, ok := e.(diag.Diagnostic); ok {
				out = append(out, d)
			}
		}
		return out
	}
	if d, ok := err.(diag.Diagnostic); ok {
		out = append(out, d)
	}
	return out
}

func formatDiagnostics(errs []error) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

func (c *Compiler) currentScope() *compilationScope {
	return c.scopes[c.scopeIndex]
}

func (c *Compiler) currentChunk() *code.Chunk {
	return c.currentScope().function.Chunk
}

func (c *Compiler) pushScope(kind FunctionType) {
	fn := c.heap.NewFunction()
	if kind != TypeScript {
		fn.Name = c.heap.Intern(c.previous.Lexeme)
	}
	scope := &compilationScope{
		function: fn,
		kind:     kind,
		locals:   make([]Local, 0, MaxLocals),
	}
	// Slot 0 belongs to the callee itself and is never named.
	scope.locals = append(scope.locals, Local{Depth: 0})

	c.scopes = append(c.scopes, scope)
	c.scopeIndex++
}

func (c *Compiler) popScope() *compilationScope {
	scope := c.scopes[c.scopeIndex]
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.scopeIndex--
	return scope
}

func (c *Compiler) endCompiler() *object.Function {
	c.emitReturn()
	scope := c.popScope()
	fn := scope.function

	if c.codeOut != nil && !c.hadError {
		code.Disassemble(c.codeOut, fn.Chunk, fn.String())
	}
	c.log.Debugf("compiled %s: %d bytes, %d constants", fn, fn.Chunk.Len(), len(fn.Chunk.Constants))
	return fn
}

// --- token stream ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lexer.NextToken()
		if c.current.Type != token.ERROR {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, message string) {
	if c.check(t) {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- diagnostics ---

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

// errorAt reports one diagnostic. While in panic mode further reports are
// swallowed until the parser resynchronizes.
func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	d := diag.Diagnostic{
		Message:  message,
		Severity: diag.SeverityError,
		Range:    diag.Range{Line: tok.Line, Col: tok.Col, Length: len(tok.Lexeme)},
	}
	switch tok.Type {
	case token.EOF:
		d.Where = " at end"
		d.Range.Length = 1
	case token.ERROR:
		d.Range.Length = 1
	default:
		d.Where = " at '" + tok.Lexeme + "'"
	}

	if c.errOut != nil {
		io.WriteString(c.errOut, d.Error()+"\n")
	}
	c.errs = multierror.Append(c.errs, d)
	c.errs.ErrorFormat = formatDiagnostics
}

func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		if token.StartsStatement(c.current.Type) {
			return
		}
		c.advance()
	}
}

// --- emission ---

func (c *Compiler) emit(op code.Opcode, operands ...int) int {
	return c.currentChunk().Emit(code.Make(op, operands...), c.previous.Line)
}

func (c *Compiler) emitReturn() {
	c.emit(code.OpNil)
	c.emit(code.OpReturn)
}

func (c *Compiler) makeConstant(v value.Value) int {
	idx := c.currentChunk().AddConstant(v)
	if idx >= code.MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emit(code.OpConstant, c.makeConstant(v))
}

// emitJump emits op with a placeholder operand and returns the operand's
// offset for patchJump.
func (c *Compiler) emitJump(op code.Opcode) int {
	return c.emit(op, 0xffff) + 1
}

// patchJump points the jump whose operand sits at offset to the next
// instruction to be emitted. Distances are measured from the byte after the
// operand.
func (c *Compiler) patchJump(offset int) {
	chunk := c.currentChunk()
	jump := chunk.Len() - offset - 2
	if jump > math.MaxUint16 {
		c.error("Too much code to jump over.")
	}
	code.PutUint16(chunk.Code[offset:], uint16(jump))
}

func (c *Compiler) emitLoop(loopStart int) {
	offset := c.currentChunk().Len() + 3 - loopStart
	if offset > math.MaxUint16 {
		c.error("Loop body too large.")
	}
	c.emit(code.OpLoop, offset)
}
