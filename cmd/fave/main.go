package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"fave/internal/config"
)

var version = "dev"

// Exit codes follow sysexits.h.
const (
	exitOK      = 0
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitIO      = 74
	exitConfig  = 78
)

// exitError carries a process exit code out of a command. A nil err means
// the failure was already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

var errorHeader = color.New(color.FgRed, color.Bold)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	wd     string
	log    commonlog.Logger

	configPath string
	verbose    int
	trace      bool
	printCode  bool
	noColor    bool

	cfg *config.Config
}

func newApp() *app {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		wd:     wd,
		log:    commonlog.GetLogger("fave.cli"),
	}
}

func main() {
	os.Exit(newApp().execute(os.Args[1:]))
}

func (a *app) execute(args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			a.printError(ee.err)
		}
		return ee.code
	}
	a.printError(err)
	return exitUsage
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "fave [file]",
		Short:   "Compile and run Lox programs on a bytecode VM",
		Version: version,
		Args:    cobra.MaximumNArgs(1),

		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.runFile(args[0])
			}
			return a.runREPL()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.BoolVar(&a.trace, "trace", false, "trace every executed instruction")
	flags.BoolVar(&a.printCode, "print-code", false, "disassemble each compiled function")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.runCommand(),
		a.replCommand(),
		a.disCommand(),
		a.tokensCommand(),
		a.initCommand(),
	)
	return root
}

// setup loads configuration, lets flags override it and configures logging.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.noColor {
		color.NoColor = true
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("trace") {
		cfg.Run.Trace = a.trace
	}
	if flags.Changed("print-code") {
		cfg.Run.PrintCode = a.printCode
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbosity = a.verbose
	}
	a.cfg = cfg

	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())
	if cfg.Dir != "" {
		a.log.Debugf("using config %s", filepath.Join(cfg.Dir, config.FileName))
	}
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.abs(a.configPath))
	}
	cfg, err := config.FindAndLoad(a.wd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

func (a *app) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.wd, path)
}

func (a *app) readSource(path string) (string, error) {
	b, err := os.ReadFile(a.abs(path))
	if err != nil {
		return "", &exitError{code: exitIO, err: fmt.Errorf("could not read file %q: %w", path, err)}
	}
	return string(b), nil
}

func (a *app) printError(err error) {
	fmt.Fprintf(a.stderr, "%s %v\n", errorHeader.Sprint("error:"), err)
}
