// Package spectest runs whole programs and checks what they print.
package spectest

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"fave/internal/repl"
	"fave/internal/vm"
)

type Mode string

const (
	// ModeVM interprets the whole source in one call.
	ModeVM Mode = "vm"
	// ModeREPL feeds the source through a non-interactive REPL session, so
	// every complete chunk is a separate Interpret call on one VM.
	ModeREPL Mode = "repl"
)

type Options struct {
	Mode      Mode
	Source    string
	MaxFrames int
}

type Expectation struct {
	Stdout OutputExpectation
	Stderr OutputExpectation
	// Outcome is checked in ModeVM only; a REPL session has no single result.
	Outcome vm.Result
}

type Result struct {
	Mode    Mode
	Stdout  string
	Stderr  string
	Outcome vm.Result
	Err     error
}

func Run(t *testing.T, opts Options) Result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	vmOpts := []vm.Option{vm.WithStdout(&stdout), vm.WithStderr(&stderr)}
	if opts.MaxFrames > 0 {
		vmOpts = append(vmOpts, vm.WithMaxFrames(opts.MaxFrames))
	}
	m := vm.New(vmOpts...)
	defer m.Free()

	res := Result{Mode: opts.Mode}
	switch opts.Mode {
	case ModeVM:
		res.Outcome, res.Err = m.Interpret(opts.Source)
	case ModeREPL:
		repl.Start(strings.NewReader(opts.Source), &stdout, m, false)
	default:
		t.Fatalf("unknown mode: %q", opts.Mode)
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}

func Assert(t *testing.T, res Result, exp Expectation) {
	t.Helper()

	if ok, reason := MatchOutput("stdout", res.Stdout, exp.Stdout); !ok {
		t.Fatal(reason)
	}
	if ok, reason := MatchOutput("stderr", res.Stderr, exp.Stderr); !ok {
		t.Fatal(reason)
	}
	if res.Mode != ModeVM {
		return
	}
	if res.Outcome != exp.Outcome {
		t.Fatalf("outcome mismatch: expected %s, got %s (err: %v)", exp.Outcome, res.Outcome, res.Err)
	}
	if exp.Outcome == vm.InterpretOK && res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if exp.Outcome != vm.InterpretOK && res.Err == nil {
		t.Fatalf("expected %s, got no error", exp.Outcome)
	}
}

// RunCases runs each mode in expect as a subtest named after the mode.
func RunCases(t *testing.T, source string, maxFrames int, expect map[Mode]Expectation) {
	t.Helper()

	modes := make([]string, 0, len(expect))
	for mode := range expect {
		modes = append(modes, string(mode))
	}
	sort.Strings(modes)

	for _, mode := range modes {
		exp := expect[Mode(mode)]
		t.Run(mode, func(t *testing.T) {
			res := Run(t, Options{Mode: Mode(mode), Source: source, MaxFrames: maxFrames})
			Assert(t, res, exp)
		})
	}
}

// ExpectBoth expects the same output from a single run and a REPL session.
// Error text is only portable between modes when line numbers agree.
func ExpectBoth(exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{
		ModeVM:   exp,
		ModeREPL: exp,
	}
}

func Expect(mode Mode, exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{mode: exp}
}
