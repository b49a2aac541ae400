package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"fave/internal/lsp"
)

var version = "dev"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		verbose int
		logFile string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:     lsp.Name,
		Short:   "Language server publishing compile diagnostics over stdio",
		Version: version,
		Args:    cobra.NoArgs,

		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol, so logs go to stderr or a file.
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbose, path)

			return lsp.NewServer(version).Run(debug)
		},
	}

	cmd.Flags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	cmd.Flags().BoolVar(&debug, "debug", false, "log every protocol message")
	return cmd
}
