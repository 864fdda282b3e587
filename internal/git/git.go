// Package git provides a typed client for the git operations warden needs.
//
// All shell-out parsing lives here; callers get structured results with
// explicit errors instead of string-matching command output themselves.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Git runs git commands in a fixed working directory.
type Git struct {
	dir string
	run runner
}

// runner executes a git invocation and returns stdout. Tests substitute a
// fake; production uses execGit.
type runner func(dir string, args ...string) (string, error)

// NewGit returns a client bound to the given directory.
func NewGit(dir string) *Git {
	return &Git{dir: dir, run: execGit}
}

// NewGitWithRunner returns a client with a custom command runner.
// Intended for tests.
func NewGitWithRunner(dir string, run func(dir string, args ...string) (string, error)) *Git {
	return &Git{dir: dir, run: run}
}

// Dir returns the directory the client operates in.
func (g *Git) Dir() string { return g.dir }

func execGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// CurrentBranch returns the checked-out branch name, or an error in
// detached-HEAD state or outside a repository.
func (g *Git) CurrentBranch() (string, error) {
	out, err := g.run(g.dir, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("getting current branch: %w", err)
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", fmt.Errorf("not on a branch (detached HEAD?)")
	}
	return branch, nil
}

// TopLevel returns the root of the working tree containing g's directory.
func (g *Git) TopLevel() (string, error) {
	out, err := g.run(g.dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("finding repository root: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// MergedBranches lists local branches already merged into base.
func (g *Git) MergedBranches(base string) ([]string, error) {
	out, err := g.run(g.dir, "branch", "--merged", base, "--format=%(refname:short)")
	if err != nil {
		return nil, fmt.Errorf("listing branches merged into %s: %w", base, err)
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		if b := strings.TrimSpace(line); b != "" {
			branches = append(branches, b)
		}
	}
	return branches, nil
}

// BranchMerged reports whether branch is in the set of branches merged
// into base.
func (g *Git) BranchMerged(base, branch string) (bool, error) {
	branches, err := g.MergedBranches(base)
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == branch {
			return true, nil
		}
	}
	return false, nil
}

// HasUncommittedChanges reports whether the working tree is dirty.
// Any output from `status --porcelain` counts, including untracked files.
func (g *Git) HasUncommittedChanges() (bool, error) {
	out, err := g.run(g.dir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("checking working tree status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// UnpushedCommits counts commits on HEAD that are not on the branch's
// remote-tracking ref. A branch with no remote-tracking ref reports zero:
// the rev-list fails deterministically with "unknown revision", which is
// not evidence of unpushed work.
func (g *Git) UnpushedCommits(branch string) (int, error) {
	out, err := g.run(g.dir, "rev-list", "--count", "origin/"+branch+"..HEAD")
	if err != nil {
		return 0, nil
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(out))
	if convErr != nil {
		return 0, fmt.Errorf("parsing rev-list count %q: %w", strings.TrimSpace(out), convErr)
	}
	return n, nil
}

// WorktreeAdd creates a new worktree at path checked out to branch.
func (g *Git) WorktreeAdd(path, branch string) error {
	if _, err := g.run(g.dir, "worktree", "add", path, branch); err != nil {
		return fmt.Errorf("creating worktree at %s: %w", path, err)
	}
	return nil
}

// WorktreeRemove removes the worktree at path. With force, uncommitted
// changes in the worktree are discarded; the gate must have verified a
// clean tree before anyone passes force=true.
func (g *Git) WorktreeRemove(path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	if _, err := g.run(g.dir, args...); err != nil {
		return fmt.Errorf("removing worktree at %s: %w", path, err)
	}
	return nil
}

// WorktreePrune drops stale worktree registrations whose directories are
// gone.
func (g *Git) WorktreePrune() error {
	if _, err := g.run(g.dir, "worktree", "prune"); err != nil {
		return fmt.Errorf("pruning worktrees: %w", err)
	}
	return nil
}

// Worktree describes one entry from `git worktree list --porcelain`.
type Worktree struct {
	Path     string
	Branch   string
	Prunable bool
}

// WorktreeList returns the registered worktrees for the repository.
func (g *Git) WorktreeList() ([]Worktree, error) {
	out, err := g.run(g.dir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("listing worktrees: %w", err)
	}
	return parseWorktreeList(out), nil
}

// parseWorktreeList parses porcelain output: stanzas separated by blank
// lines, each starting with a "worktree <path>" line.
func parseWorktreeList(out string) []Worktree {
	var (
		result  []Worktree
		current *Worktree
	)
	flush := func() {
		if current != nil {
			result = append(result, *current)
			current = nil
		}
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "branch "):
			if current != nil {
				ref := strings.TrimPrefix(line, "branch ")
				current.Branch = strings.TrimPrefix(ref, "refs/heads/")
			}
		case strings.HasPrefix(line, "prunable"):
			if current != nil {
				current.Prunable = true
			}
		}
	}
	flush()
	return result
}
