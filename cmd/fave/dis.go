package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fave/internal/compiler"
	"fave/internal/heap"
	"fave/internal/lexer"
	"fave/internal/token"
)

var errorToken = color.New(color.FgRed)

func (a *app) disCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dis <file>",
		Short: "Compile a program and disassemble every function without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.readSource(args[0])
			if err != nil {
				return err
			}

			h := heap.New()
			defer h.Free()

			_, err = compiler.Compile(source, h,
				compiler.WithErrorWriter(a.stderr),
				compiler.WithPrintCode(a.stdout),
			)
			if err != nil {
				return &exitError{code: exitCompile}
			}
			return nil
		},
	}
}

func (a *app) tokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.readSource(args[0])
			if err != nil {
				return err
			}

			l := lexer.New(source)
			for {
				tok := l.NextToken()
				typ := fmt.Sprintf("%-10s", tok.Type)
				if tok.Type == token.ERROR {
					typ = errorToken.Sprint(typ)
				}
				fmt.Fprintf(a.stdout, "%4d:%-3d  %s  %q\n", tok.Line, tok.Col, typ, tok.Lexeme)
				if tok.Type == token.EOF {
					return nil
				}
			}
		},
	}
}
