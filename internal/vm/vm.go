// Package vm executes compiled functions on a single operand stack.
package vm

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"fave/internal/code"
	"fave/internal/compiler"
	"fave/internal/heap"
	"fave/internal/object"
	"fave/internal/table"
	"fave/internal/value"
)

const (
	DefaultMaxFrames = 64
	MaxFramesLimit   = 256
	// SlotsPerFrame is the stack budget of one frame; the stack holds
	// maxFrames*SlotsPerFrame values.
	SlotsPerFrame = 256
)

type Result int

const (
	InterpretOK Result = iota
	InterpretCompileError
	InterpretRuntimeError
)

func (r Result) String() string {
	switch r {
	case InterpretOK:
		return "ok"
	case InterpretCompileError:
		return "compile error"
	case InterpretRuntimeError:
		return "runtime error"
	default:
		return "unknown"
	}
}

// Status tracks the most recent Interpret call:
// Uncompiled -> Compiling -> {CompileError, Compiled -> Running -> {RuntimeError, Completed}}.
type Status int

const (
	StatusUncompiled Status = iota
	StatusCompiling
	StatusCompileError
	StatusCompiled
	StatusRunning
	StatusRuntimeError
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusUncompiled:
		return "uncompiled"
	case StatusCompiling:
		return "compiling"
	case StatusCompileError:
		return "compile error"
	case StatusCompiled:
		return "compiled"
	case StatusRunning:
		return "running"
	case StatusRuntimeError:
		return "runtime error"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type Option func(*VM)

func WithStdout(w io.Writer) Option {
	return func(m *VM) { m.stdout = w }
}

func WithStderr(w io.Writer) Option {
	return func(m *VM) { m.stderr = w }
}

// WithTrace writes the stack and each instruction to w before it executes.
func WithTrace(w io.Writer) Option {
	return func(m *VM) { m.traceOut = w }
}

// WithPrintCode writes the disassembly of every compiled function to w.
func WithPrintCode(w io.Writer) Option {
	return func(m *VM) { m.codeOut = w }
}

// WithMaxFrames bounds the call depth. Values outside 1..MaxFramesLimit are
// clamped.
func WithMaxFrames(n int) Option {
	return func(m *VM) {
		if n < 1 {
			n = 1
		}
		if n > MaxFramesLimit {
			n = MaxFramesLimit
		}
		m.maxFrames = n
	}
}

// WithLogger replaces the "fave.vm" logger. The compiler run by Interpret
// logs to it as well.
func WithLogger(log commonlog.Logger) Option {
	return func(m *VM) { m.log = log }
}

type VM struct {
	heap    *heap.Heap
	globals *table.Table

	stack []value.Value
	sp    int

	frames     []Frame
	frameCount int
	maxFrames  int

	status Status
	start  time.Time

	stdout   io.Writer
	stderr   io.Writer
	traceOut io.Writer
	codeOut  io.Writer
	log      commonlog.Logger
}

func New(opts ...Option) *VM {
	m := &VM{
		heap:      heap.New(),
		globals:   table.New(),
		maxFrames: DefaultMaxFrames,
		start:     time.Now(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		log:       commonlog.GetLogger("fave.vm"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.frames = make([]Frame, m.maxFrames)
	m.stack = make([]value.Value, m.maxFrames*SlotsPerFrame)

	m.defineNatives()
	return m
}

func (m *VM) Status() Status { return m.status }

func (m *VM) Heap() *heap.Heap { return m.heap }

// Global returns the value bound to a global name.
func (m *VM) Global(name string) (value.Value, bool) {
	return m.globals.Get(m.heap.Intern(name))
}

// DefineNative binds a Go function as a global. Arity -1 accepts any number
// of arguments.
func (m *VM) DefineNative(name string, arity int, fn object.NativeFn) {
	native := m.heap.NewNative(name, arity, fn)
	m.globals.Set(m.heap.Intern(name), value.FromObj(native))
}

// Free releases every object and global. The VM holds no bindings
// afterwards, natives included.
func (m *VM) Free() {
	m.resetStack()
	m.globals = table.New()
	m.heap.Free()
	m.status = StatusUncompiled
}

// Interpret compiles source and runs it. Globals survive between calls. The
// error is the compile error (all diagnostics) or the *RuntimeError.
func (m *VM) Interpret(source string) (Result, error) {
	m.status = StatusCompiling
	fn, err := compiler.Compile(source, m.heap,
		compiler.WithErrorWriter(m.stderr),
		compiler.WithPrintCode(m.codeOut),
		compiler.WithLogger(m.log),
	)
	if err != nil {
		m.status = StatusCompileError
		return InterpretCompileError, err
	}
	m.status = StatusCompiled

	m.resetStack()
	if err := m.push(value.FromObj(fn)); err != nil {
		m.status = StatusRuntimeError
		return InterpretRuntimeError, err
	}
	if err := m.call(fn, 0); err != nil {
		m.status = StatusRuntimeError
		return InterpretRuntimeError, err
	}

	m.status = StatusRunning
	if err := m.run(); err != nil {
		m.status = StatusRuntimeError
		return InterpretRuntimeError, err
	}
	m.status = StatusCompleted
	return InterpretOK, nil
}

func (m *VM) resetStack() {
	m.sp = 0
	m.frameCount = 0
}

func (m *VM) push(v value.Value) error {
	if m.sp >= len(m.stack) {
		return m.runtimeError("Stack overflow.")
	}
	m.stack[m.sp] = v
	m.sp++
	return nil
}

func (m *VM) pop() value.Value {
	m.sp--
	return m.stack[m.sp]
}

func (m *VM) peek(distance int) value.Value {
	return m.stack[m.sp-1-distance]
}

func (m *VM) run() error {
	frame := &m.frames[m.frameCount-1]

	for {
		ins := frame.Instructions()
		if m.traceOut != nil {
			m.traceInstruction(frame)
		}

		op := code.Opcode(ins[frame.ip])
		frame.ip++

		switch op {
		case code.OpConstant:
			idx := int(ins[frame.ip])
			frame.ip++
			if err := m.push(frame.fn.Chunk.Constants[idx]); err != nil {
				return err
			}

		case code.OpNil:
			if err := m.push(value.Nil); err != nil {
				return err
			}

		case code.OpTrue:
			if err := m.push(value.Bool(true)); err != nil {
				return err
			}

		case code.OpFalse:
			if err := m.push(value.Bool(false)); err != nil {
				return err
			}

		case code.OpPop:
			m.pop()

		case code.OpGetLocal:
			slot := int(ins[frame.ip])
			frame.ip++
			if err := m.push(m.stack[frame.base+slot]); err != nil {
				return err
			}

		case code.OpSetLocal:
			slot := int(ins[frame.ip])
			frame.ip++
			// Assignment is an expression; the value stays on the stack.
			m.stack[frame.base+slot] = m.peek(0)

		case code.OpGetGlobal:
			name := m.readString(frame)
			v, ok := m.globals.Get(name)
			if !ok {
				return m.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			if err := m.push(v); err != nil {
				return err
			}

		case code.OpDefineGlobal:
			name := m.readString(frame)
			m.globals.Set(name, m.peek(0))
			m.pop()

		case code.OpSetGlobal:
			name := m.readString(frame)
			if m.globals.Set(name, m.peek(0)) {
				// Assignment never creates a global.
				m.globals.Delete(name)
				return m.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case code.OpEqual:
			b := m.pop()
			a := m.pop()
			if err := m.push(value.Bool(value.Equal(a, b))); err != nil {
				return err
			}

		case code.OpGreater, code.OpLess, code.OpSubtract, code.OpMultiply, code.OpDivide:
			if err := m.execNumberOp(op); err != nil {
				return err
			}

		case code.OpAdd:
			if err := m.execAdd(); err != nil {
				return err
			}

		case code.OpNot:
			if err := m.push(value.Bool(m.pop().IsFalsey())); err != nil {
				return err
			}

		case code.OpNegate:
			if !m.peek(0).IsNumber() {
				return m.runtimeError("Operand must be a number.")
			}
			if err := m.push(value.Number(-m.pop().AsNumber())); err != nil {
				return err
			}

		case code.OpPrint:
			fmt.Fprintln(m.stdout, m.pop().String())

		case code.OpJump:
			offset := int(code.ReadUint16(ins[frame.ip:]))
			frame.ip += 2 + offset

		case code.OpJumpIfFalse:
			offset := int(code.ReadUint16(ins[frame.ip:]))
			frame.ip += 2
			if m.peek(0).IsFalsey() {
				frame.ip += offset
			}

		case code.OpLoop:
			offset := int(code.ReadUint16(ins[frame.ip:]))
			frame.ip += 2
			frame.ip -= offset

		case code.OpCall:
			argCount := int(ins[frame.ip])
			frame.ip++
			if err := m.callValue(m.peek(argCount), argCount); err != nil {
				return err
			}
			frame = &m.frames[m.frameCount-1]

		case code.OpReturn:
			result := m.pop()
			m.frameCount--
			if m.frameCount == 0 {
				// The script function itself.
				m.pop()
				return nil
			}
			m.sp = frame.base
			if err := m.push(result); err != nil {
				return err
			}
			frame = &m.frames[m.frameCount-1]

		default:
			return m.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (m *VM) readString(frame *Frame) *object.String {
	idx := int(frame.Instructions()[frame.ip])
	frame.ip++
	s, _ := object.AsString(frame.fn.Chunk.Constants[idx])
	return s
}

func (m *VM) execNumberOp(op code.Opcode) error {
	if !m.peek(0).IsNumber() || !m.peek(1).IsNumber() {
		return m.runtimeError("Operands must be numbers.")
	}
	b := m.pop().AsNumber()
	a := m.pop().AsNumber()

	var res value.Value
	switch op {
	case code.OpGreater:
		res = value.Bool(a > b)
	case code.OpLess:
		res = value.Bool(a < b)
	case code.OpSubtract:
		res = value.Number(a - b)
	case code.OpMultiply:
		res = value.Number(a * b)
	case code.OpDivide:
		res = value.Number(a / b)
	}
	return m.push(res)
}

func (m *VM) execAdd() error {
	if sb, ok := object.AsString(m.peek(0)); ok {
		if sa, ok := object.AsString(m.peek(1)); ok {
			m.pop()
			m.pop()
			return m.push(value.FromObj(m.heap.Concat(sa, sb)))
		}
	}
	if m.peek(0).IsNumber() && m.peek(1).IsNumber() {
		b := m.pop().AsNumber()
		a := m.pop().AsNumber()
		return m.push(value.Number(a + b))
	}
	return m.runtimeError("Operands must be two numbers or two strings.")
}

func (m *VM) callValue(callee value.Value, argCount int) error {
	if fn, ok := object.AsFunction(callee); ok {
		return m.call(fn, argCount)
	}
	if native, ok := object.AsNative(callee); ok {
		if native.Arity >= 0 && argCount != native.Arity {
			return m.runtimeError("Expected %d arguments but got %d.", native.Arity, argCount)
		}
		args := make([]value.Value, argCount)
		copy(args, m.stack[m.sp-argCount:m.sp])
		result, err := native.Fn(args)
		if err != nil {
			return m.runtimeError("%s", err.Error())
		}
		m.sp -= argCount + 1
		return m.push(result)
	}
	return m.runtimeError("Can only call functions.")
}

// call pushes a frame whose window starts at the callee's own slot.
func (m *VM) call(fn *object.Function, argCount int) error {
	if argCount != fn.Arity {
		return m.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if m.frameCount == m.maxFrames {
		return m.runtimeError("Stack overflow.")
	}

	frame := &m.frames[m.frameCount]
	m.frameCount++
	frame.fn = fn
	frame.ip = 0
	frame.base = m.sp - argCount - 1
	return nil
}

func (m *VM) traceInstruction(frame *Frame) {
	var sb strings.Builder
	sb.WriteString("          ")
	for _, v := range m.stack[:m.sp] {
		fmt.Fprintf(&sb, "[ %s ]", v)
	}
	sb.WriteString("\n")
	code.DisassembleInstruction(&sb, frame.fn.Chunk, frame.ip)

	io.WriteString(m.traceOut, sb.String())
	m.log.Debugf("%s", strings.TrimRight(sb.String(), "\n"))
}
