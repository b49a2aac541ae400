// Package config loads fave.toml project configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"fave/internal/vm"
)

const FileName = "fave.toml"

type Config struct {
	Project Project `toml:"project"`
	Run     Run     `toml:"run"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the loaded file (set at load time).
	Dir string `toml:"-"`
}

type Project struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// Run configures the virtual machine.
type Run struct {
	Trace     bool `toml:"trace"`
	PrintCode bool `toml:"print_code"`
	MaxFrames int  `toml:"max_frames"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default is the configuration used when no fave.toml exists.
func Default() *Config {
	return &Config{
		Run: Run{MaxFrames: vm.DefaultMaxFrames},
	}
}

// Load parses the file at path. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Write encodes c as TOML.
func Write(w io.Writer, c *Config) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	return nil
}

// FindAndLoad walks up from startDir looking for fave.toml. It returns nil
// and no error when there is none.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) Validate() error {
	if c.Run.MaxFrames < 1 || c.Run.MaxFrames > vm.MaxFramesLimit {
		return fmt.Errorf("run.max_frames must be between 1 and %d, got %d", vm.MaxFramesLimit, c.Run.MaxFrames)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative")
	}
	return nil
}

// EntryPath resolves project.entry against the config directory. It is
// empty when no entry is configured.
func (c *Config) EntryPath() string {
	if c.Project.Entry == "" {
		return ""
	}
	if filepath.IsAbs(c.Project.Entry) {
		return c.Project.Entry
	}
	return filepath.Join(c.Dir, c.Project.Entry)
}

// LogFile returns the configured log path, or nil to log to stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	return &path
}
