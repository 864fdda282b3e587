package doctor

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitBinaryCheck verifies that git is installed and accessible in PATH.
// Nothing works without it: worktree creation, gate evaluation, and
// removal all shell out to git.
type GitBinaryCheck struct {
	BaseCheck
}

// NewGitBinaryCheck creates a new git binary availability check.
func NewGitBinaryCheck() *GitBinaryCheck {
	return &GitBinaryCheck{
		BaseCheck: BaseCheck{
			CheckName:        "git-binary",
			CheckDescription: "Check that git is installed and in PATH",
		},
	}
}

// Run checks if git is available in PATH.
func (c *GitBinaryCheck) Run(ctx *CheckContext) *CheckResult {
	path, err := exec.LookPath("git")
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "git not found in PATH",
			FixHint: "Install git: https://git-scm.com/downloads",
		}
	}

	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("git found but 'git --version' failed: %v", err),
			FixHint: "Reinstall git",
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: strings.TrimSpace(string(out)),
	}
}

// GHBinaryCheck verifies that the gh CLI is installed. Without it the
// review conditions always read "not met" and still-needed workspaces
// are simply kept, so this is a warning rather than an error.
type GHBinaryCheck struct {
	BaseCheck
}

// NewGHBinaryCheck creates a new gh CLI availability check.
func NewGHBinaryCheck() *GHBinaryCheck {
	return &GHBinaryCheck{
		BaseCheck: BaseCheck{
			CheckName:        "gh-binary",
			CheckDescription: "Check that the gh CLI is installed and in PATH",
		},
	}
}

// Run checks if gh is available in PATH.
func (c *GHBinaryCheck) Run(ctx *CheckContext) *CheckResult {
	if _, err := exec.LookPath("gh"); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "gh not found in PATH",
			Details: []string{
				"PR review conditions will never be satisfied, so reclamation stays blocked",
			},
			FixHint: "Install the GitHub CLI: https://cli.github.com",
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: "gh is installed",
	}
}
