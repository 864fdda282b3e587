package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/wardenlabs/warden/internal/forge"
	"github.com/wardenlabs/warden/internal/tracker"
	"github.com/wardenlabs/warden/internal/workspace"
)

// fakeGit implements GitClient with fixed answers.
type fakeGit struct {
	merged    bool
	mergedErr error
	dirty     bool
	dirtyErr  error
	unpushed  int
	unpErr    error
}

func (f *fakeGit) BranchMerged(base, branch string) (bool, error) { return f.merged, f.mergedErr }
func (f *fakeGit) HasUncommittedChanges() (bool, error)           { return f.dirty, f.dirtyErr }
func (f *fakeGit) UnpushedCommits(branch string) (int, error)     { return f.unpushed, f.unpErr }

// fakeReviews implements forge.ReviewService.
type fakeReviews struct {
	review *forge.Review
	err    error
}

func (f *fakeReviews) OpenReview(branch string) (*forge.Review, error) { return f.review, f.err }

// fakeTests implements TestRunner.
type fakeTests struct{ err error }

func (f *fakeTests) Run(ctx context.Context, dir string) error { return f.err }

// fakeMeta implements MetaLoader.
type fakeMeta struct {
	meta *workspace.Metadata
	err  error
}

func (f *fakeMeta) Load(wsPath string) (*workspace.Metadata, error) { return f.meta, f.err }

// passingEvaluator returns an evaluator where every condition holds.
func passingEvaluator() *Evaluator {
	g := &fakeGit{merged: true}
	return &Evaluator{
		NewGit:     func(dir string) GitClient { return g },
		Reviews:    &fakeReviews{review: &forge.Review{Number: 42, Decision: forge.DecisionApproved}},
		Tracker:    tracker.Stub{},
		Tests:      &fakeTests{},
		Meta:       &fakeMeta{meta: &workspace.Metadata{IssueKey: "ONEK-93"}},
		BaseBranch: "main",
	}
}

func TestEvaluateAllPassing(t *testing.T) {
	e := passingEvaluator()
	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")

	if !res.Authorized() {
		t.Errorf("expected authorization, pending: %v", res.Pending())
	}
	if len(res.Checks) != len(Conditions()) {
		t.Errorf("got %d checks, want %d", len(res.Checks), len(Conditions()))
	}
}

func TestEvaluateFailingTestsMergedBranch(t *testing.T) {
	// Tests fail, branch is merged: authorization must be false and the
	// pending list must name exactly testsPassing.
	e := passingEvaluator()
	e.Tests = &fakeTests{err: errors.New("exit status 1")}

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if res.Authorized() {
		t.Fatal("expected denial")
	}
	pending := res.Pending()
	if len(pending) != 1 || pending[0] != CondTestsPassing {
		t.Errorf("pending = %v, want [testsPassing]", pending)
	}
	if !res.Checks[CondBranchMerged] {
		t.Error("branchMerged should still be evaluated and true")
	}
}

func TestEvaluateNoReview(t *testing.T) {
	e := passingEvaluator()
	e.Reviews = &fakeReviews{review: nil}

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if res.Checks[CondReviewRequested] {
		t.Error("reviewRequested should be false with no review")
	}
	if res.Checks[CondReviewApproved] {
		t.Error("reviewApproved should be false with no review")
	}
}

func TestEvaluateReviewWithoutDecision(t *testing.T) {
	e := passingEvaluator()
	e.Reviews = &fakeReviews{review: &forge.Review{Number: 7}}

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if !res.Checks[CondReviewRequested] {
		t.Error("reviewRequested should be true")
	}
	if res.Checks[CondReviewApproved] {
		t.Error("review without decision must not count as approved")
	}
}

func TestEvaluateReviewServiceFailure(t *testing.T) {
	e := passingEvaluator()
	e.Reviews = &fakeReviews{err: errors.New("gh unreachable")}

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if res.Checks[CondReviewRequested] || res.Checks[CondReviewApproved] {
		t.Error("review-service failure must map to conditions not met")
	}
}

func TestEvaluateGitFailuresFailSafe(t *testing.T) {
	e := passingEvaluator()
	g := &fakeGit{
		mergedErr: errors.New("git broken"),
		dirtyErr:  errors.New("git broken"),
		unpErr:    errors.New("git broken"),
	}
	e.NewGit = func(dir string) GitClient { return g }

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if res.Checks[CondBranchMerged] {
		t.Error("branchMerged must fail safe on git error")
	}
	if res.Checks[CondNoUncommittedChanges] {
		t.Error("noUncommittedChanges must fail safe on git error")
	}
	if res.Checks[CondNoUnpushedCommits] {
		t.Error("noUnpushedCommits must fail safe on git error")
	}
}

func TestEvaluateDirtyTree(t *testing.T) {
	e := passingEvaluator()
	g := &fakeGit{merged: true, dirty: true}
	e.NewGit = func(dir string) GitClient { return g }

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if res.Checks[CondNoUncommittedChanges] {
		t.Error("dirty tree must fail noUncommittedChanges")
	}
}

func TestEvaluateUnpushedCommits(t *testing.T) {
	e := passingEvaluator()
	g := &fakeGit{merged: true, unpushed: 2}
	e.NewGit = func(dir string) GitClient { return g }

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if res.Checks[CondNoUnpushedCommits] {
		t.Error("unpushed commits must fail noUnpushedCommits")
	}
}

func TestTrackerUpdatedNoLinkedIssue(t *testing.T) {
	e := passingEvaluator()
	e.Meta = &fakeMeta{meta: &workspace.Metadata{}}

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if !res.Checks[CondTrackerUpdated] {
		t.Error("no linked issue means trackerUpdated is true")
	}
}

func TestTrackerUpdatedMissingMetadata(t *testing.T) {
	e := passingEvaluator()
	e.Meta = &fakeMeta{err: workspace.ErrNotFound}

	res := e.Evaluate("/ws/onek-93", "ONEK-93-add-pricing")
	if !res.Checks[CondTrackerUpdated] {
		t.Error("unreadable metadata leaves nothing to verify for the tracker")
	}
}

func TestPendingOrderIsCanonical(t *testing.T) {
	res := Result{Checks: map[Condition]bool{
		CondTestsPassing:         false,
		CondReviewRequested:      true,
		CondReviewApproved:       false,
		CondTrackerUpdated:       true,
		CondBranchMerged:         false,
		CondNoUncommittedChanges: true,
		CondNoUnpushedCommits:    true,
	}}
	pending := res.Pending()
	want := []Condition{CondTestsPassing, CondReviewApproved, CondBranchMerged}
	if len(pending) != len(want) {
		t.Fatalf("pending = %v, want %v", pending, want)
	}
	for i := range want {
		if pending[i] != want[i] {
			t.Errorf("pending[%d] = %s, want %s", i, pending[i], want[i])
		}
	}
}

func TestExecTestRunnerNoCommand(t *testing.T) {
	r := ExecTestRunner{}
	if err := r.Run(context.Background(), t.TempDir()); err == nil {
		t.Error("missing test command must be an error (counts as failing)")
	}
}

func TestExecTestRunnerMissingBinary(t *testing.T) {
	r := ExecTestRunner{Command: []string{"definitely-not-a-real-binary-xyz"}}
	if err := r.Run(context.Background(), t.TempDir()); err == nil {
		t.Error("missing runner binary must be an error")
	}
}

func TestExecTestRunnerSuccess(t *testing.T) {
	r := ExecTestRunner{Command: []string{"true"}}
	if err := r.Run(context.Background(), t.TempDir()); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestExecTestRunnerFailure(t *testing.T) {
	r := ExecTestRunner{Command: []string{"false"}}
	if err := r.Run(context.Background(), t.TempDir()); err == nil {
		t.Error("non-zero exit must be an error")
	}
}
