// Package workspace persists per-workspace metadata and archive records.
//
// Each workspace is one isolated worktree bound to a branch and issue key,
// with a WORKSPACE_META.json at its root. Archival snapshots the metadata
// into a separate archive directory before the worktree is destroyed.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Status is the lifecycle status of a workspace.
type Status string

const (
	// StatusActive marks a live workspace.
	StatusActive Status = "active"
	// StatusArchived marks a snapshot taken at reclamation. A workspace
	// becomes archived exactly once and never goes back.
	StatusArchived Status = "archived"
)

var (
	// ErrNotFound means no metadata file exists at the workspace path.
	ErrNotFound = errors.New("workspace metadata not found")

	// ErrCorrupt means a metadata file exists but is not valid JSON.
	// Distinct from ErrNotFound on purpose: corrupt metadata must block
	// reclamation instead of being shrugged off as "no metadata".
	ErrCorrupt = errors.New("workspace metadata corrupt")
)

// Metadata is the per-workspace record stored in WORKSPACE_META.json.
type Metadata struct {
	// IssueKey is the tracker key extracted from the branch name
	// (e.g. "ONEK-93"). The historical field name is kept on the wire.
	IssueKey string `json:"linearIssue"`

	// Branch is the git branch this workspace tracks.
	Branch string `json:"branch"`

	// PullRequest is the "#123"-style PR reference, if one existed at
	// creation time.
	PullRequest string `json:"pullRequest,omitempty"`

	// PRURL is the pull request URL, if known.
	PRURL string `json:"prUrl,omitempty"`

	// AgentRole is the primary role for the phase that created the
	// workspace.
	AgentRole string `json:"agentRole"`

	// AgentType is the raw role identifier from the triggering event.
	AgentType string `json:"agentType"`

	// Phase is the lifecycle phase number (1–9).
	Phase int `json:"phase"`

	// PhaseName is the phase's display name.
	PhaseName string `json:"phaseName"`

	// CreatedAt and LastAccessedAt are UTC timestamps.
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`

	// Status is active or archived.
	Status Status `json:"status"`

	// ArchivedAt is set exactly once, at archival.
	ArchivedAt time.Time `json:"archivedAt,omitempty"`

	// Reason records why the workspace was archived
	// (e.g. "lifecycle-complete").
	Reason string `json:"reason,omitempty"`
}

// decodeMetadata parses raw bytes, mapping JSON failures to ErrCorrupt.
func decodeMetadata(data []byte, path string) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &meta, nil
}

// readMetadataFile loads and parses a metadata file, distinguishing
// missing (ErrNotFound) from unreadable and corrupt (ErrCorrupt).
func readMetadataFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}
	return decodeMetadata(data, path)
}
