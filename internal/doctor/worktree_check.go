package doctor

import (
	"fmt"

	"github.com/wardenlabs/warden/internal/git"
)

// WorktreeClient is the git surface the worktree check needs.
type WorktreeClient interface {
	WorktreeList() ([]git.Worktree, error)
	WorktreePrune() error
}

// PrunableWorktreeCheck finds worktree registrations whose directories
// are gone. They accumulate when a workspace directory is deleted by
// hand instead of reclaimed. Auto-fix prunes them.
type PrunableWorktreeCheck struct {
	FixableCheck
	Client WorktreeClient
}

// NewPrunableWorktreeCheck creates a new prunable worktree check bound
// to the given git client.
func NewPrunableWorktreeCheck(client WorktreeClient) *PrunableWorktreeCheck {
	return &PrunableWorktreeCheck{
		FixableCheck: FixableCheck{
			BaseCheck: BaseCheck{
				CheckName:        "prunable-worktrees",
				CheckDescription: "Check for stale worktree registrations",
			},
		},
		Client: client,
	}
}

// Run lists worktrees and counts prunable entries.
func (c *PrunableWorktreeCheck) Run(ctx *CheckContext) *CheckResult {
	worktrees, err := c.Client.WorktreeList()
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("cannot list worktrees: %v", err),
			FixHint: "Run warden doctor from inside the source repository",
		}
	}

	var prunable []string
	for _, wt := range worktrees {
		if wt.Prunable {
			prunable = append(prunable, wt.Path)
		}
	}

	if len(prunable) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d prunable worktree registration(s)", len(prunable)),
			Details: prunable,
			FixHint: "Run with --fix, or: git worktree prune",
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d worktree(s), none prunable", len(worktrees)),
	}
}

// Fix prunes the stale registrations.
func (c *PrunableWorktreeCheck) Fix(ctx *CheckContext) error {
	return c.Client.WorktreePrune()
}
