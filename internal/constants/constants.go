// Package constants defines shared constant values used throughout warden.
// Centralizing these magic strings improves maintainability and consistency.
package constants

import "time"

// Timing constants for external command execution.
const (
	// TestRunTimeout bounds the workspace test run during gate evaluation.
	// A hung test runner must not stall reclamation forever; hitting the
	// timeout counts as a failing run, never as "unknown".
	TestRunTimeout = 5 * time.Minute
)

// File and directory names under the workspace root.
const (
	// MetadataFile is the per-workspace metadata filename.
	MetadataFile = "WORKSPACE_META.json"

	// ArchiveDirName is the archive directory under the workspace root.
	ArchiveDirName = ".archive"

	// LockDirName holds per-workspace advisory lock files.
	LockDirName = ".locks"

	// ConfigFile is the warden configuration filename.
	ConfigFile = "config.toml"
)

// DefaultBranch is the integration branch merges are checked against
// when no override is configured.
const DefaultBranch = "main"

// ProtectedBranches never get isolated workspaces. Provisioning against
// one of these is a silent no-op, regardless of issue key resolution.
var ProtectedBranches = []string{"main", "master", "dev", "develop"}

// DefaultTestCommand is the unit-test entry point run inside a workspace
// during gate evaluation.
var DefaultTestCommand = []string{"npm", "run", "test:unit"}
