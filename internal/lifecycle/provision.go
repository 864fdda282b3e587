// Package lifecycle creates and reclaims workspaces.
//
// Provisioning and reclamation are pure functions of their arguments plus
// external-system reads: branch and workspace path always arrive as
// parameters, never from ambient process state.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/wardenlabs/warden/internal/forge"
	"github.com/wardenlabs/warden/internal/issue"
	"github.com/wardenlabs/warden/internal/phase"
	"github.com/wardenlabs/warden/internal/style"
	"github.com/wardenlabs/warden/internal/workspace"
)

// ErrNoIssueKey means the branch name carries no resolvable issue key.
// Provisioning requires one: workspaces are never anonymous.
var ErrNoIssueKey = errors.New("no issue key in branch name")

// WorktreeGit is the slice of git behavior the lifecycle needs, bound to
// the source repository.
type WorktreeGit interface {
	WorktreeAdd(path, branch string) error
	WorktreeRemove(path string, force bool) error
	WorktreePrune() error
}

// ProvisionResult reports what Provision did.
type ProvisionResult struct {
	// Path is the workspace directory (set unless Skipped).
	Path string

	// IssueKey is the key resolved from the branch.
	IssueKey string

	// Created is true when a new worktree was made; false when an
	// existing workspace was reused.
	Created bool

	// Skipped is true for protected branches, which never get
	// workspaces. Not an error.
	Skipped bool
}

// Provisioner creates isolated workspaces for branches.
type Provisioner struct {
	Store     *workspace.Store
	Reviews   forge.ReviewService
	Git       WorktreeGit
	Protected []string

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (p *Provisioner) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

// Provision creates a workspace for branch in the given lifecycle phase.
//
// Protected branches are a silent no-op. A branch without an issue key is
// a reported error. Re-provisioning an existing workspace returns the
// existing path without touching the worktree or its metadata. Metadata
// is written only after worktree creation succeeds, so a failed creation
// leaves no partial state behind.
func (p *Provisioner) Provision(phaseNum int, branch, agentType string) (ProvisionResult, error) {
	for _, protected := range p.Protected {
		if branch == protected {
			return ProvisionResult{Skipped: true}, nil
		}
	}

	info, ok := phase.Lookup(phaseNum)
	if !ok {
		return ProvisionResult{}, fmt.Errorf("invalid phase %d", phaseNum)
	}

	key, ok := issue.ExtractKey(branch)
	if !ok {
		return ProvisionResult{}, fmt.Errorf("%w: %s", ErrNoIssueKey, branch)
	}

	wsPath := p.Store.PathFor(key)
	if p.Store.Exists(key) {
		return ProvisionResult{Path: wsPath, IssueKey: key}, nil
	}

	if err := p.Git.WorktreeAdd(wsPath, branch); err != nil {
		return ProvisionResult{}, err
	}

	now := p.now()
	meta := &workspace.Metadata{
		IssueKey:       key,
		Branch:         branch,
		AgentRole:      phase.Phase(phaseNum).PrimaryRole(),
		AgentType:      agentType,
		Phase:          info.Num,
		PhaseName:      info.Name,
		CreatedAt:      now,
		LastAccessedAt: now,
		Status:         workspace.StatusActive,
	}

	// Best-effort enrichment: absence of a review is not an error, and a
	// failed lookup must not fail provisioning.
	if p.Reviews != nil {
		if review, err := p.Reviews.OpenReview(branch); err != nil {
			style.PrintWarning("could not look up PR for %s: %v", branch, err)
		} else if review != nil {
			meta.PullRequest = review.Ref()
			meta.PRURL = review.URL
		}
	}

	if err := p.Store.Save(wsPath, meta); err != nil {
		return ProvisionResult{}, fmt.Errorf("workspace created but metadata write failed: %w", err)
	}

	return ProvisionResult{Path: wsPath, IssueKey: key, Created: true}, nil
}
