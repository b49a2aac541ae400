package vm

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"

	"fave/internal/value"
)

type vmTestCase struct {
	input    string
	expected string
}

func newTestVM(opts ...Option) (*VM, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	opts = append([]Option{WithStdout(&stdout), WithStderr(&stderr)}, opts...)
	return New(opts...), &stdout, &stderr
}

func runVMTests(t *testing.T, tests []vmTestCase) {
	t.Helper()

	for _, tt := range tests {
		m, stdout, stderr := newTestVM()
		res, err := m.Interpret(tt.input)
		require.NoError(t, err, tt.input)
		require.Equal(t, InterpretOK, res, tt.input)
		require.Empty(t, stderr.String(), tt.input)
		require.Equal(t, tt.expected, stdout.String(), tt.input)
		require.Equal(t, StatusCompleted, m.Status())
	}
}

func TestArithmetic(t *testing.T) {
	runVMTests(t, []vmTestCase{
		{"print 1 + 2 * 3;", "7\n"},
		{"print (1 + 2) * 3;", "9\n"},
		{"print 10 / 4;", "2.5\n"},
		{"print 1 - 2 - 3;", "-4\n"},
		{"print -(3 - 5);", "2\n"},
		{"print 0.1 + 0.2;", "0.30000000000000004\n"},
		{"print 1 / 0;", "inf\n"},
		{"print 2 * 3 / 4 + 1 - -1;", "3.5\n"},
	})
}

func TestComparisonAndLogic(t *testing.T) {
	runVMTests(t, []vmTestCase{
		{"print !(5 - 4 > 3 * 2 == !nil);", "true\n"},
		{"print 1 < 2; print 2 <= 2; print 3 > 4; print 4 >= 5;", "true\ntrue\nfalse\nfalse\n"},
		{"print 1 == 1; print 1 != 1; print nil == false;", "true\nfalse\nfalse\n"},
		{"print !0; print !nil; print !\"\";", "false\ntrue\nfalse\n"},
		{"print nil or \"x\"; print 1 and 2; print false and 1; print 1 or 2;", "x\n2\nfalse\n1\n"},
	})
}

func TestStrings(t *testing.T) {
	runVMTests(t, []vmTestCase{
		{`print "foo" + "bar";`, "foobar\n"},
		{`print "a" + "b" == "ab";`, "true\n"},
		{`var s = "x"; s = s + s; s = s + s; print s;`, "xxxx\n"},
		{`print "a" == "b";`, "false\n"},
		{"print \"multi\nline\";", "multi\nline\n"},
	})
}

func TestVariables(t *testing.T) {
	runVMTests(t, []vmTestCase{
		{"var x = 1; { var x = 2; print x; } print x;", "2\n1\n"},
		{"var x = 1; var x = 2; print x;", "2\n"},
		{"var a; print a;", "nil\n"},
		{"var a = 1; var b = a = 3; print a; print b;", "3\n3\n"},
		{"{ var a = 1; { var b = 2; print a + b; } }", "3\n"},
		{"{ var a = 1; a = a + 1; print a; }", "2\n"},
	})
}

func TestControlFlow(t *testing.T) {
	runVMTests(t, []vmTestCase{
		{"if (1 > 2) print \"yes\"; else print \"no\";", "no\n"},
		{"if (nil) print 1;", ""},
		{"var i = 0; while (i < 3) { print i; i = i + 1; }", "0\n1\n2\n"},
		{"for (var i = 0; i < 3; i = i + 1) print i;", "0\n1\n2\n"},
		{"var i = 0; for (; i < 2;) { print i; i = i + 1; }", "0\n1\n"},
		{"var n = 0; for (var i = 0; i < 10; i = i + 1) { if (i == 5) n = n + 100; n = n + 1; } print n;", "110\n"},
	})
}

func TestFunctions(t *testing.T) {
	runVMTests(t, []vmTestCase{
		{"fun add(a, b) { return a + b; } print add(1, 2);", "3\n"},
		{"fun fib(n) { if (n < 2) return n; return fib(n - 2) + fib(n - 1); } print fib(10);", "55\n"},
		{"fun f() { return; } print f();", "nil\n"},
		{"fun f() {} print f();", "nil\n"},
		{"fun f() {} print f; print clock;", "<fn f>\n<native fn>\n"},
		{"fun f(n) { var a = n * 2; { var b = a + 1; return b; } } print f(3);", "7\n"},
		{"fun f(n) { var a = n; return a; } print f(1) + f(2);", "3\n"},
		{"fun outer() { fun inner() { return 1; } return inner(); } print outer();", "1\n"},
		{"fun count(n) { for (var i = 0; i < n; i = i + 1) print i; } count(2);", "0\n1\n"},
		{"var g = 1; fun f() { g = g + 1; } f(); f(); print g;", "3\n"},
	})
}

func TestNatives(t *testing.T) {
	runVMTests(t, []vmTestCase{
		{"print clock() >= 0;", "true\n"},
	})

	m, stdout, _ := newTestVM()
	m.DefineNative("twice", 1, func(args []value.Value) (value.Value, error) {
		if !args[0].IsNumber() {
			return value.Nil, errors.New("twice() expects a number.")
		}
		return value.Number(args[0].AsNumber() * 2), nil
	})
	res, err := m.Interpret("print twice(21);")
	require.NoError(t, err)
	require.Equal(t, InterpretOK, res)
	require.Equal(t, "42\n", stdout.String())

	res, err = m.Interpret(`twice("x");`)
	require.Equal(t, InterpretRuntimeError, res)
	require.EqualError(t, err, "twice() expects a number.\n[line 1] in script")
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input  string
		stderr string
		line   int
	}{
		{"print y;", "Undefined variable 'y'.\n[line 1] in script\n", 1},
		{"y = 1;", "Undefined variable 'y'.\n[line 1] in script\n", 1},
		{"print -\"a\";", "Operand must be a number.\n[line 1] in script\n", 1},
		{"print 1 + \"a\";", "Operands must be two numbers or two strings.\n[line 1] in script\n", 1},
		{"print 1 < \"a\";", "Operands must be numbers.\n[line 1] in script\n", 1},
		{"\n\nprint nil * 2;", "Operands must be numbers.\n[line 3] in script\n", 3},
		{"var x = 1; x();", "Can only call functions.\n[line 1] in script\n", 1},
		{"fun f(a) {}\nf();", "Expected 1 arguments but got 0.\n[line 2] in script\n", 2},
		{"clock(1);", "Expected 0 arguments but got 1.\n[line 1] in script\n", 1},
		{
			"fun a() { b(); }\nfun b() { print nil + 1; }\na();",
			"Operands must be two numbers or two strings.\n[line 2] in b()\n[line 1] in a()\n[line 3] in script\n",
			2,
		},
	}

	for _, tt := range tests {
		m, _, stderr := newTestVM()
		res, err := m.Interpret(tt.input)
		require.Equal(t, InterpretRuntimeError, res, tt.input)
		require.Equal(t, StatusRuntimeError, m.Status(), tt.input)
		require.Equal(t, tt.stderr, stderr.String(), tt.input)

		var rerr *RuntimeError
		require.True(t, errors.As(err, &rerr), tt.input)
		require.Equal(t, tt.line, rerr.Line, tt.input)
	}
}

func TestAssignmentDoesNotCreateGlobal(t *testing.T) {
	m, _, _ := newTestVM()
	_, err := m.Interpret("y = 1;")
	require.Error(t, err)

	_, ok := m.Global("y")
	require.False(t, ok)
}

func TestOutputBeforeRuntimeErrorIsKept(t *testing.T) {
	m, stdout, _ := newTestVM()
	res, _ := m.Interpret("print 1; print x; print 2;")
	require.Equal(t, InterpretRuntimeError, res)
	require.Equal(t, "1\n", stdout.String())
}

func TestCompileErrorRunsNothing(t *testing.T) {
	m, stdout, stderr := newTestVM()
	res, err := m.Interpret("print 1; print ;")
	require.Equal(t, InterpretCompileError, res)
	require.Error(t, err)
	require.Equal(t, StatusCompileError, m.Status())
	require.Empty(t, stdout.String())
	require.Equal(t, "[line 1] Error at ';': Expect expression.\n", stderr.String())
}

func TestStackOverflow(t *testing.T) {
	m, _, _ := newTestVM(WithMaxFrames(4))
	res, err := m.Interpret("fun f() { f(); }\nf();")
	require.Equal(t, InterpretRuntimeError, res)

	var rerr *RuntimeError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, "Stack overflow.", rerr.Message)
	require.Equal(t, []string{
		"[line 1] in f()",
		"[line 1] in f()",
		"[line 1] in f()",
		"[line 2] in script",
	}, rerr.Trace)

	m, _, _ = newTestVM()
	_, err = m.Interpret("fun f(n) { if (n == 0) return 0; return f(n - 1); } print f(62);")
	require.NoError(t, err, "63 frames fit the default depth")
	_, err = m.Interpret("f(63);")
	require.Error(t, err)
}

func TestMaxFramesClamped(t *testing.T) {
	require.Equal(t, 1, New(WithMaxFrames(0)).maxFrames)
	require.Equal(t, MaxFramesLimit, New(WithMaxFrames(1000)).maxFrames)
	require.Equal(t, DefaultMaxFrames, New().maxFrames)
	require.Len(t, New(WithMaxFrames(2)).stack, 2*SlotsPerFrame)
}

func TestGlobalsPersistAcrossInterpret(t *testing.T) {
	m, stdout, _ := newTestVM()

	_, err := m.Interpret("var count = 1;")
	require.NoError(t, err)
	_, err = m.Interpret("fun bump() { count = count + 1; }")
	require.NoError(t, err)
	_, err = m.Interpret("bump(); bump(); print count;")
	require.NoError(t, err)
	require.Equal(t, "3\n", stdout.String())

	// A failed run leaves the VM usable.
	_, err = m.Interpret("print missing;")
	require.Error(t, err)
	_, err = m.Interpret("print count;")
	require.NoError(t, err)
	require.Equal(t, "3\n3\n", stdout.String())

	v, ok := m.Global("count")
	require.True(t, ok)
	require.Equal(t, 3.0, v.AsNumber())
}

func TestStatus(t *testing.T) {
	m, _, _ := newTestVM()
	require.Equal(t, StatusUncompiled, m.Status())

	_, _ = m.Interpret("print 1;")
	require.Equal(t, StatusCompleted, m.Status())
	require.Equal(t, "completed", m.Status().String())
	require.Equal(t, "runtime error", InterpretRuntimeError.String())
}

func TestTrace(t *testing.T) {
	var trace bytes.Buffer
	m, stdout, _ := newTestVM(WithTrace(&trace))
	_, err := m.Interpret("print 1 + 2;")
	require.NoError(t, err)
	require.Equal(t, "3\n", stdout.String())

	out := trace.String()
	require.Contains(t, out, "OP_ADD")
	require.Contains(t, out, "[ <script> ][ 1 ][ 2 ]")
	require.Contains(t, out, "OP_PRINT")
}

func TestPrintCode(t *testing.T) {
	var dump bytes.Buffer
	m, _, _ := newTestVM(WithPrintCode(&dump))
	_, err := m.Interpret("print 1;")
	require.NoError(t, err)
	require.Contains(t, dump.String(), "== <script> ==")
}

func TestFree(t *testing.T) {
	m, _, _ := newTestVM()
	_, err := m.Interpret("var x = \"kept\";")
	require.NoError(t, err)
	require.NotZero(t, m.Heap().Len())

	m.Free()
	require.Zero(t, m.Heap().Len())
	_, ok := m.Global("x")
	require.False(t, ok)
	_, ok = m.Global("clock")
	require.False(t, ok)
	require.Equal(t, StatusUncompiled, m.Status())
}

type recordingLogger struct {
	commonlog.Logger
	lines []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func TestLoggerIsSharedWithCompiler(t *testing.T) {
	log := &recordingLogger{}
	m, _, _ := newTestVM(WithLogger(log))

	res, _ := m.Interpret("fun f() {}\nprint -nil;")
	require.Equal(t, InterpretRuntimeError, res)
	require.Equal(t, []string{
		"compiled <fn f>: 2 bytes, 0 constants",
		"compiled <script>: 9 bytes, 2 constants",
		"runtime error at line 2: Operand must be a number.",
	}, log.lines)
}
