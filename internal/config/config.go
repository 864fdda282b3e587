// Package config loads warden configuration.
//
// Configuration lives at <warden home>/config.toml. Every field has a
// compiled-in default so warden works with no config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/wardenlabs/warden/internal/constants"
)

// Config holds warden's settings.
type Config struct {
	// WorkspaceRoot is the directory workspaces are created under.
	// Default: ~/.warden/workspaces
	WorkspaceRoot string `toml:"workspace_root"`

	// ArchiveDir receives archive records. Default: <workspace_root>/.archive
	ArchiveDir string `toml:"archive_dir"`

	// DefaultBranch is the integration branch merges are checked against.
	DefaultBranch string `toml:"default_branch"`

	// ProtectedBranches never get workspaces.
	ProtectedBranches []string `toml:"protected_branches"`

	// TestCommand is the unit-test entry point run inside workspaces.
	TestCommand []string `toml:"test_command"`

	// TestTimeout bounds the test run, as a Go duration string ("5m").
	TestTimeout string `toml:"test_timeout"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		WorkspaceRoot:     filepath.Join(homeDir(), ".warden", "workspaces"),
		DefaultBranch:     constants.DefaultBranch,
		ProtectedBranches: append([]string(nil), constants.ProtectedBranches...),
		TestCommand:       append([]string(nil), constants.DefaultTestCommand...),
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".warden", constants.ConfigFile)
}

// Load reads the config at path, layering it over the defaults. A missing
// file is not an error; a present-but-invalid file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.WorkspaceRoot == "" {
		return nil, fmt.Errorf("config %s: workspace_root must not be empty", path)
	}
	return cfg, nil
}

// ArchivePath returns the archive directory, defaulting to .archive under
// the workspace root when unset.
func (c *Config) ArchivePath() string {
	if c.ArchiveDir != "" {
		return c.ArchiveDir
	}
	return filepath.Join(c.WorkspaceRoot, constants.ArchiveDirName)
}

// LockPath returns the lock directory under the workspace root.
func (c *Config) LockPath() string {
	return filepath.Join(c.WorkspaceRoot, constants.LockDirName)
}

// TestRunTimeout returns the parsed test timeout, falling back to the
// compiled-in default when unset or unparsable.
func (c *Config) TestRunTimeout() time.Duration {
	if c.TestTimeout != "" {
		if d, err := time.ParseDuration(c.TestTimeout); err == nil && d > 0 {
			return d
		}
	}
	return constants.TestRunTimeout
}

// IsProtected reports whether branch is on the protected denylist.
func (c *Config) IsProtected(branch string) bool {
	for _, b := range c.ProtectedBranches {
		if b == branch {
			return true
		}
	}
	return false
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
