// Package gate decides whether a workspace may be destroyed.
//
// The gate is a conjunction of lifecycle and safety conditions. Every
// condition is evaluated on every check, with no caching or short-circuit,
// because reviews, merges, and pushes all change out from under us, and
// the reclaimer reports the complete pending list to the caller.
//
// External failures never escape as errors: each condition maps a failed
// probe to its conservative value (usually "not met"), so the worst
// outcome of a wedged collaborator is "workspace left as-is".
package gate

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/wardenlabs/warden/internal/constants"
	"github.com/wardenlabs/warden/internal/forge"
	"github.com/wardenlabs/warden/internal/tracker"
	"github.com/wardenlabs/warden/internal/workspace"
)

// Condition names one gate check.
type Condition string

const (
	CondTestsPassing         Condition = "testsPassing"
	CondReviewRequested      Condition = "reviewRequested"
	CondReviewApproved       Condition = "reviewApproved"
	CondTrackerUpdated       Condition = "trackerUpdated"
	CondBranchMerged         Condition = "branchMerged"
	CondNoUncommittedChanges Condition = "noUncommittedChanges"
	CondNoUnpushedCommits    Condition = "noUnpushedCommits"
)

// order is the canonical condition ordering for reports.
var order = []Condition{
	CondTestsPassing,
	CondReviewRequested,
	CondReviewApproved,
	CondTrackerUpdated,
	CondBranchMerged,
	CondNoUncommittedChanges,
	CondNoUnpushedCommits,
}

// Conditions returns the canonical condition order.
func Conditions() []Condition {
	return append([]Condition(nil), order...)
}

// Result is one gate evaluation: the full per-condition map plus the
// derived authorization.
type Result struct {
	Checks map[Condition]bool
}

// Authorized reports whether every condition held.
func (r Result) Authorized() bool {
	for _, c := range order {
		if !r.Checks[c] {
			return false
		}
	}
	return true
}

// Pending returns the unmet conditions in canonical order.
func (r Result) Pending() []Condition {
	var pending []Condition
	for _, c := range order {
		if !r.Checks[c] {
			pending = append(pending, c)
		}
	}
	return pending
}

// GitClient is the slice of git behavior the gate needs, bound to a
// workspace directory.
type GitClient interface {
	BranchMerged(base, branch string) (bool, error)
	HasUncommittedChanges() (bool, error)
	UnpushedCommits(branch string) (int, error)
}

// TestRunner executes the project's unit-test entry point in a directory.
type TestRunner interface {
	// Run returns nil only on a clean successful exit.
	Run(ctx context.Context, dir string) error
}

// ExecTestRunner runs a configured command as the test entry point.
type ExecTestRunner struct {
	Command []string
}

// Run executes the test command in dir. A missing runner binary or a
// context timeout surfaces as an error, which the gate counts as failing.
func (r ExecTestRunner) Run(ctx context.Context, dir string) error {
	if len(r.Command) == 0 {
		return fmt.Errorf("no test command configured")
	}
	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("test run timed out: %w", ctx.Err())
		}
		return fmt.Errorf("test run failed: %w", err)
	}
	return nil
}

// MetaLoader loads workspace metadata. *workspace.Store satisfies it.
type MetaLoader interface {
	Load(wsPath string) (*workspace.Metadata, error)
}

// Evaluator computes gate results for workspaces.
type Evaluator struct {
	// NewGit returns a git client bound to a directory.
	NewGit func(dir string) GitClient

	// Reviews queries the remote review service.
	Reviews forge.ReviewService

	// Tracker answers issue-status queries (currently a stub).
	Tracker tracker.Client

	// Tests runs the workspace's unit tests.
	Tests TestRunner

	// Meta loads workspace metadata, for the linked issue key.
	Meta MetaLoader

	// BaseBranch is the integration branch merges are checked against.
	BaseBranch string

	// TestTimeout bounds the test run. Zero means the compiled default.
	TestTimeout time.Duration
}

// Evaluate computes every condition for the workspace at wsPath tracking
// branch. All conditions are computed even when an early one fails, so
// callers always see the complete pending picture.
func (e *Evaluator) Evaluate(wsPath, branch string) Result {
	checks := make(map[Condition]bool, len(order))

	checks[CondTestsPassing] = e.testsPassing(wsPath)

	// One review-service query feeds both review conditions.
	review, reviewErr := e.Reviews.OpenReview(branch)
	if reviewErr != nil {
		review = nil
	}
	checks[CondReviewRequested] = review != nil
	checks[CondReviewApproved] = review.Approved()

	checks[CondTrackerUpdated] = e.trackerUpdated(wsPath)

	g := e.NewGit(wsPath)

	merged, err := g.BranchMerged(e.BaseBranch, branch)
	checks[CondBranchMerged] = err == nil && merged

	// Inability to read status fails safe toward "do not delete".
	dirty, err := g.HasUncommittedChanges()
	checks[CondNoUncommittedChanges] = err == nil && !dirty

	unpushed, err := g.UnpushedCommits(branch)
	checks[CondNoUnpushedCommits] = err == nil && unpushed == 0

	return Result{Checks: checks}
}

func (e *Evaluator) testsPassing(wsPath string) bool {
	timeout := e.TestTimeout
	if timeout <= 0 {
		timeout = constants.TestRunTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.Tests.Run(ctx, wsPath) == nil
}

// trackerUpdated is true when the workspace has no linked issue key, and
// otherwise defers to the tracker client. The stub client answers true
// for every key; see the tracker package comment.
func (e *Evaluator) trackerUpdated(wsPath string) bool {
	meta, err := e.Meta.Load(wsPath)
	if err != nil || meta.IssueKey == "" {
		return true
	}
	updated, err := e.Tracker.IssueUpdated(meta.IssueKey)
	return err == nil && updated
}
