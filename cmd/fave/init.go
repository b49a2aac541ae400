package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fave/internal/config"
)

const starterProgram = `fun greet(name) {
  return "hello, " + name;
}

print greet("world");
`

func (a *app) initCommand() *cobra.Command {
	var (
		name  string
		entry string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create " + config.FileName + " and a starter program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.wd
			if len(args) == 1 {
				dir = a.abs(args[0])
			}
			if err := initProject(dir, name, entry, force); err != nil {
				return &exitError{code: exitIO, err: fmt.Errorf("init: %w", err)}
			}
			fmt.Fprintf(a.stdout, "created %s\n", filepath.Join(dir, config.FileName))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name (default: directory name)")
	cmd.Flags().StringVar(&entry, "entry", "main.lox", "entry file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func initProject(dir, name, entry string, force bool) error {
	if strings.TrimSpace(entry) == "" {
		return errors.New("entry cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	manifestPath := filepath.Join(dir, config.FileName)
	manifestExists, err := pathExists(manifestPath)
	if err != nil {
		return err
	}
	if manifestExists && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}

	cfg := config.Default()
	cfg.Project.Name = name
	cfg.Project.Entry = entry

	var buf bytes.Buffer
	if err := config.Write(&buf, cfg); err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, buf.Bytes(), 0o644); err != nil {
		return err
	}

	entryPath := filepath.Join(dir, entry)
	if err := os.MkdirAll(filepath.Dir(entryPath), 0o755); err != nil {
		return err
	}
	entryExists, err := pathExists(entryPath)
	if err != nil {
		return err
	}
	if !entryExists || force {
		return os.WriteFile(entryPath, []byte(starterProgram), 0o644)
	}
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
