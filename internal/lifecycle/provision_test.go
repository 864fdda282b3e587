package lifecycle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wardenlabs/warden/internal/forge"
	"github.com/wardenlabs/warden/internal/workspace"
)

// fakeWorktreeGit simulates git worktree operations on the filesystem.
type fakeWorktreeGit struct {
	adds    int
	removes int
	prunes  int
	addErr  error

	// removeErr fails WorktreeRemove; with removeErrOnce set it fails
	// only the first call.
	removeErr     error
	removeErrOnce bool
}

func (f *fakeWorktreeGit) WorktreeAdd(path, branch string) error {
	f.adds++
	if f.addErr != nil {
		return f.addErr
	}
	return os.MkdirAll(path, 0755)
}

func (f *fakeWorktreeGit) WorktreeRemove(path string, force bool) error {
	f.removes++
	if f.removeErr != nil {
		err := f.removeErr
		if f.removeErrOnce {
			f.removeErr = nil
		}
		return err
	}
	return os.RemoveAll(path)
}

func (f *fakeWorktreeGit) WorktreePrune() error {
	f.prunes++
	return nil
}

type stubReviews struct {
	review *forge.Review
	err    error
}

func (s *stubReviews) OpenReview(branch string) (*forge.Review, error) { return s.review, s.err }

func newProvisioner(t *testing.T) (*Provisioner, *fakeWorktreeGit, *workspace.Store) {
	t.Helper()
	store := workspace.NewStore(t.TempDir())
	g := &fakeWorktreeGit{}
	p := &Provisioner{
		Store:     store,
		Git:       g,
		Protected: []string{"main", "master", "dev", "develop"},
	}
	return p, g, store
}

func TestProvisionCreatesWorkspace(t *testing.T) {
	p, g, store := newProvisioner(t)

	res, err := p.Provision(2, "ONEK-93-add-pricing", "qa-engineer-seraph")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if !res.Created {
		t.Error("expected Created")
	}
	if res.IssueKey != "ONEK-93" {
		t.Errorf("IssueKey = %q", res.IssueKey)
	}
	if res.Path != store.PathFor("ONEK-93") {
		t.Errorf("Path = %q, want %q", res.Path, store.PathFor("ONEK-93"))
	}
	if filepath.Base(res.Path) != "onek-93" {
		t.Errorf("workspace dir = %q, want onek-93", filepath.Base(res.Path))
	}
	if g.adds != 1 {
		t.Errorf("worktree adds = %d, want 1", g.adds)
	}

	meta, err := store.Load(res.Path)
	if err != nil {
		t.Fatalf("Load metadata: %v", err)
	}
	if meta.Status != workspace.StatusActive {
		t.Errorf("Status = %q", meta.Status)
	}
	if meta.Phase != 2 || meta.PhaseName != "test-creation" {
		t.Errorf("Phase = %d %q", meta.Phase, meta.PhaseName)
	}
	if meta.AgentRole != "Test Agent" {
		t.Errorf("AgentRole = %q", meta.AgentRole)
	}
	if meta.AgentType != "qa-engineer-seraph" {
		t.Errorf("AgentType = %q", meta.AgentType)
	}
	if meta.CreatedAt.IsZero() || meta.LastAccessedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestProvisionIdempotent(t *testing.T) {
	p, g, _ := newProvisioner(t)

	first, err := p.Provision(2, "ONEK-93-add-pricing", "testing")
	if err != nil {
		t.Fatalf("first Provision: %v", err)
	}
	second, err := p.Provision(3, "ONEK-93-add-pricing", "backend-developer")
	if err != nil {
		t.Fatalf("second Provision: %v", err)
	}
	if second.Created {
		t.Error("re-provision must not create a second worktree")
	}
	if second.Path != first.Path {
		t.Errorf("paths differ: %q vs %q", first.Path, second.Path)
	}
	if g.adds != 1 {
		t.Errorf("worktree adds = %d, want 1", g.adds)
	}
}

func TestProvisionProtectedBranches(t *testing.T) {
	for _, branch := range []string{"main", "master", "dev", "develop"} {
		t.Run(branch, func(t *testing.T) {
			p, g, store := newProvisioner(t)

			res, err := p.Provision(2, branch, "testing")
			if err != nil {
				t.Fatalf("Provision(%s): %v", branch, err)
			}
			if !res.Skipped {
				t.Error("expected Skipped")
			}
			if g.adds != 0 {
				t.Error("protected branch must not create a worktree")
			}
			entries, _ := store.List()
			if len(entries) != 0 {
				t.Error("protected branch must not write metadata")
			}
		})
	}
}

func TestProvisionNoIssueKey(t *testing.T) {
	p, g, _ := newProvisioner(t)

	_, err := p.Provision(2, "feature/no-key", "testing")
	if !errors.Is(err, ErrNoIssueKey) {
		t.Errorf("err = %v, want ErrNoIssueKey", err)
	}
	if g.adds != 0 {
		t.Error("no worktree should be created without an issue key")
	}
}

func TestProvisionInvalidPhase(t *testing.T) {
	p, _, _ := newProvisioner(t)

	if _, err := p.Provision(0, "ONEK-93-x", "testing"); err == nil {
		t.Error("expected error for phase 0")
	}
	if _, err := p.Provision(10, "ONEK-93-x", "testing"); err == nil {
		t.Error("expected error for phase 10")
	}
}

func TestProvisionWorktreeFailureLeavesNoState(t *testing.T) {
	p, g, store := newProvisioner(t)
	g.addErr = errors.New("branch is already checked out elsewhere")

	if _, err := p.Provision(2, "ONEK-93-add-pricing", "testing"); err == nil {
		t.Fatal("expected worktree failure to surface")
	}
	if _, err := store.Load(store.PathFor("ONEK-93")); !errors.Is(err, workspace.ErrNotFound) {
		t.Errorf("metadata must not exist after failed creation, got %v", err)
	}
}

func TestProvisionReviewEnrichment(t *testing.T) {
	p, _, store := newProvisioner(t)
	p.Reviews = &stubReviews{review: &forge.Review{Number: 42, URL: "https://github.com/x/y/pull/42"}}

	res, err := p.Provision(6, "ONEK-93-add-pricing", "git-workflow")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	meta, err := store.Load(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if meta.PullRequest != "#42" {
		t.Errorf("PullRequest = %q", meta.PullRequest)
	}
	if meta.PRURL != "https://github.com/x/y/pull/42" {
		t.Errorf("PRURL = %q", meta.PRURL)
	}
}

func TestProvisionReviewLookupFailureIsNotFatal(t *testing.T) {
	p, _, store := newProvisioner(t)
	p.Reviews = &stubReviews{err: errors.New("gh unreachable")}

	res, err := p.Provision(2, "ONEK-93-add-pricing", "testing")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	meta, err := store.Load(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if meta.PullRequest != "" || meta.PRURL != "" {
		t.Error("failed lookup must leave PR fields unset")
	}
}
