package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"fave/internal/repl"
	"fave/internal/vm"
)

var errNoEntry = errors.New("no file given and no project entry configured")

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run [file]",
		Short: "Run a program (default: the project entry)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.runFile(args[0])
			}
			entry := a.cfg.EntryPath()
			if entry == "" {
				return &exitError{code: exitUsage, err: errNoEntry}
			}
			return a.runFile(entry)
		},
	}
}

func (a *app) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runREPL()
		},
	}
}

// newVM builds a VM from the run config. Its log lines carry the source name.
func (a *app) newVM(source string) *vm.VM {
	opts := []vm.Option{
		vm.WithStdout(a.stdout),
		vm.WithStderr(a.stderr),
		vm.WithMaxFrames(a.cfg.Run.MaxFrames),
		vm.WithLogger(commonlog.NewKeyValueLogger(commonlog.GetLogger("fave.vm"), "source", source)),
	}
	if a.cfg.Run.Trace {
		opts = append(opts, vm.WithTrace(a.stdout))
	}
	if a.cfg.Run.PrintCode {
		opts = append(opts, vm.WithPrintCode(a.stdout))
	}
	return vm.New(opts...)
}

func (a *app) runFile(path string) error {
	source, err := a.readSource(path)
	if err != nil {
		return err
	}

	m := a.newVM(path)
	defer m.Free()

	a.log.Debugf("running %s", path)
	res, _ := m.Interpret(source)
	switch res {
	case vm.InterpretCompileError:
		return &exitError{code: exitCompile}
	case vm.InterpretRuntimeError:
		return &exitError{code: exitRuntime}
	}
	return nil
}

func (a *app) runREPL() error {
	m := a.newVM("repl")
	defer m.Free()

	interactive := false
	if f, ok := a.stdin.(*os.File); ok {
		interactive = repl.IsInteractive(f)
	}
	repl.Start(a.stdin, a.stdout, m, interactive)
	return nil
}
