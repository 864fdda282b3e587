package lifecycle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wardenlabs/warden/internal/gate"
	"github.com/wardenlabs/warden/internal/workspace"
)

type fakeGate struct {
	result gate.Result
	calls  int
}

func (f *fakeGate) Evaluate(wsPath, branch string) gate.Result {
	f.calls++
	return f.result
}

func passingGate() *fakeGate {
	checks := make(map[gate.Condition]bool)
	for _, c := range gate.Conditions() {
		checks[c] = true
	}
	return &fakeGate{result: gate.Result{Checks: checks}}
}

func failingGate(unmet ...gate.Condition) *fakeGate {
	g := passingGate()
	for _, c := range unmet {
		g.result.Checks[c] = false
	}
	return g
}

type reclaimHarness struct {
	reclaimer *Reclaimer
	store     *workspace.Store
	archive   *workspace.Archive
	git       *fakeWorktreeGit
	gate      *fakeGate
}

func newReclaimHarness(t *testing.T, g *fakeGate) *reclaimHarness {
	t.Helper()
	store := workspace.NewStore(t.TempDir())
	h := &reclaimHarness{
		store:   store,
		archive: workspace.NewArchive(t.TempDir()),
		git:     &fakeWorktreeGit{},
		gate:    g,
	}
	h.reclaimer = &Reclaimer{
		Store:   store,
		Archive: h.archive,
		Gate:    h.gate,
		Git:     h.git,
		LockDir: t.TempDir(),
		Now:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	return h
}

// seed creates an active workspace directory with metadata and returns
// its path.
func (h *reclaimHarness) seed(t *testing.T, key, branch string) string {
	t.Helper()
	path := h.store.PathFor(key)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	created := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	meta := &workspace.Metadata{
		IssueKey:       key,
		Branch:         branch,
		AgentRole:      "Test Agent",
		AgentType:      "testing",
		Phase:          2,
		PhaseName:      "test-creation",
		CreatedAt:      created,
		LastAccessedAt: created,
		Status:         workspace.StatusActive,
	}
	if err := h.store.Save(path, meta); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReclaimAbsentPathIsAlreadyClean(t *testing.T) {
	h := newReclaimHarness(t, passingGate())

	out, err := h.reclaimer.Reclaim(h.store.PathFor("ONEK-1"), "ONEK-1-x")
	if err != nil {
		t.Fatalf("Reclaim: %v", err)
	}
	if !out.Cleaned || !out.AlreadyClean {
		t.Errorf("outcome = %+v, want Cleaned and AlreadyClean", out)
	}
	if h.gate.calls != 0 {
		t.Error("absent path must not reach the gate")
	}
	if h.git.removes != 0 || h.git.prunes != 0 {
		t.Error("absent path must not touch git")
	}
}

func TestReclaimDeniedLeavesWorkspaceUntouched(t *testing.T) {
	h := newReclaimHarness(t, failingGate(gate.CondTestsPassing, gate.CondBranchMerged))
	path := h.seed(t, "ONEK-93", "ONEK-93-add-pricing")
	before, err := os.ReadFile(h.store.MetadataPath(path))
	if err != nil {
		t.Fatal(err)
	}

	out, err := h.reclaimer.Reclaim(path, "ONEK-93-add-pricing")
	if err != nil {
		t.Fatalf("Reclaim: %v", err)
	}
	if out.Cleaned {
		t.Error("denied reclamation must not report Cleaned")
	}
	want := []gate.Condition{gate.CondTestsPassing, gate.CondBranchMerged}
	if len(out.Pending) != len(want) || out.Pending[0] != want[0] || out.Pending[1] != want[1] {
		t.Errorf("Pending = %v, want %v", out.Pending, want)
	}

	after, err := os.ReadFile(h.store.MetadataPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("metadata changed under a denied gate")
	}
	if h.git.removes != 0 {
		t.Error("denied reclamation must not remove the worktree")
	}
	records, _ := h.archive.List()
	if len(records) != 0 {
		t.Error("denied reclamation must not archive")
	}
}

func TestReclaimAuthorizedArchivesThenRemoves(t *testing.T) {
	h := newReclaimHarness(t, passingGate())
	path := h.seed(t, "ONEK-93", "ONEK-93-add-pricing")

	out, err := h.reclaimer.Reclaim(path, "ONEK-93-add-pricing")
	if err != nil {
		t.Fatalf("Reclaim: %v", err)
	}
	if !out.Cleaned || out.AlreadyClean {
		t.Errorf("outcome = %+v", out)
	}
	if out.ArchivePath == "" {
		t.Fatal("no archive record written")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("workspace directory still exists")
	}
	if h.git.removes != 1 || h.git.prunes != 1 {
		t.Errorf("git calls: removes=%d prunes=%d", h.git.removes, h.git.prunes)
	}

	rec, err := h.archive.Load(filepath.Base(out.ArchivePath))
	if err != nil {
		t.Fatalf("Load record: %v", err)
	}
	if rec.Metadata.Status != workspace.StatusArchived {
		t.Errorf("Status = %q", rec.Metadata.Status)
	}
	if rec.Metadata.Reason != ReasonLifecycleComplete {
		t.Errorf("Reason = %q", rec.Metadata.Reason)
	}
	if rec.Metadata.ArchivedAt.IsZero() {
		t.Error("ArchivedAt not set")
	}
	if !rec.Metadata.ArchivedAt.After(rec.Metadata.CreatedAt) {
		t.Error("ArchivedAt must be after CreatedAt")
	}
}

func TestReclaimTwiceIsIdempotent(t *testing.T) {
	h := newReclaimHarness(t, passingGate())
	path := h.seed(t, "ONEK-93", "ONEK-93-add-pricing")

	if _, err := h.reclaimer.Reclaim(path, "ONEK-93-add-pricing"); err != nil {
		t.Fatalf("first Reclaim: %v", err)
	}
	gateCalls, gitRemoves := h.gate.calls, h.git.removes

	out, err := h.reclaimer.Reclaim(path, "ONEK-93-add-pricing")
	if err != nil {
		t.Fatalf("second Reclaim: %v", err)
	}
	if !out.AlreadyClean {
		t.Error("second reclamation should find nothing to do")
	}
	if h.gate.calls != gateCalls || h.git.removes != gitRemoves {
		t.Error("second reclamation made external calls")
	}
	records, _ := h.archive.List()
	if len(records) != 1 {
		t.Errorf("archive records = %d, want 1", len(records))
	}
}

func TestReclaimMissingMetadataBlocks(t *testing.T) {
	h := newReclaimHarness(t, passingGate())
	path := h.store.PathFor("ONEK-7")
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}

	_, err := h.reclaimer.Reclaim(path, "ONEK-7-x")
	if !errors.Is(err, workspace.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if h.git.removes != 0 {
		t.Error("must not remove a workspace whose metadata is unreadable")
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Error("workspace directory must survive")
	}
}

func TestReclaimCorruptMetadataBlocks(t *testing.T) {
	h := newReclaimHarness(t, passingGate())
	path := h.store.PathFor("ONEK-8")
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(h.store.MetadataPath(path), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := h.reclaimer.Reclaim(path, "ONEK-8-x")
	if !errors.Is(err, workspace.ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
	if h.git.removes != 0 {
		t.Error("must not remove a workspace whose metadata is corrupt")
	}
}

func TestReclaimRemovalFailureKeepsArchive(t *testing.T) {
	h := newReclaimHarness(t, passingGate())
	path := h.seed(t, "ONEK-9", "ONEK-9-x")
	h.git.removeErr = errors.New("worktree is dirty")

	out, err := h.reclaimer.Reclaim(path, "ONEK-9-x")
	if err == nil {
		t.Fatal("expected removal failure to surface")
	}
	if out.ArchivePath == "" {
		t.Fatal("archive record should have been written before removal")
	}
	if _, statErr := os.Stat(out.ArchivePath); statErr != nil {
		t.Errorf("archive record missing: %v", statErr)
	}
}

func TestReclaimBranchMixedOutcomes(t *testing.T) {
	h := newReclaimHarness(t, failingGate(gate.CondReviewApproved))
	h.seed(t, "ONEK-10", "ONEK-10-shared")
	h.seed(t, "ONEK-11", "ONEK-11-other")

	sum, err := h.reclaimer.ReclaimBranch("ONEK-10-shared")
	if err != nil {
		t.Fatalf("ReclaimBranch: %v", err)
	}
	if sum.Cleaned != 0 || sum.Pending != 1 {
		t.Errorf("summary = %+v, want 1 pending", sum)
	}

	h.gate.result = passingGate().result
	sum, err = h.reclaimer.ReclaimBranch("ONEK-10-shared")
	if err != nil {
		t.Fatalf("ReclaimBranch: %v", err)
	}
	if sum.Cleaned != 1 || sum.Pending != 0 {
		t.Errorf("summary = %+v, want 1 cleaned", sum)
	}
	if _, statErr := os.Stat(h.store.PathFor("ONEK-11")); statErr != nil {
		t.Error("unrelated workspace must be untouched")
	}
}

func TestReclaimBranchErrorDoesNotAbort(t *testing.T) {
	h := newReclaimHarness(t, passingGate())
	first := h.seed(t, "ONEK-20", "ONEK-shared-branch")
	second := h.seed(t, "ONEK-21", "ONEK-shared-branch")

	// Directory scan order is lexical, so the failure hits ONEK-20 and
	// the batch must still reach ONEK-21.
	h.git.removeErr = errors.New("worktree is locked")
	h.git.removeErrOnce = true

	sum, err := h.reclaimer.ReclaimBranch("ONEK-shared-branch")
	if err != nil {
		t.Fatalf("ReclaimBranch: %v", err)
	}
	if sum.Cleaned != 1 || sum.Pending != 1 {
		t.Errorf("summary = %+v, want 1 cleaned 1 pending", sum)
	}
	if len(sum.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", sum.Errors)
	}
	if _, statErr := os.Stat(first); statErr != nil {
		t.Error("failed workspace must survive")
	}
	if _, statErr := os.Stat(second); !os.IsNotExist(statErr) {
		t.Error("second workspace should have been reclaimed")
	}
}
