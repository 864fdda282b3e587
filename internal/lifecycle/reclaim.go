package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wardenlabs/warden/internal/gate"
	"github.com/wardenlabs/warden/internal/lock"
	"github.com/wardenlabs/warden/internal/workspace"
)

// ReasonLifecycleComplete is the archival reason for a normal reclamation.
const ReasonLifecycleComplete = "lifecycle-complete"

// GateEvaluator computes gate results. *gate.Evaluator satisfies it.
type GateEvaluator interface {
	Evaluate(wsPath, branch string) gate.Result
}

// Outcome reports what Reclaim did for one workspace.
type Outcome struct {
	// Cleaned is true when the workspace is gone, either removed by
	// this call or already absent.
	Cleaned bool

	// AlreadyClean is true when the path did not exist and nothing had
	// to happen.
	AlreadyClean bool

	// Pending lists the unmet gate conditions when reclamation was
	// denied. Empty when Cleaned.
	Pending []gate.Condition

	// ArchivePath is the written archive record, when one was written.
	ArchivePath string
}

// Reclaimer destroys workspaces once the gate authorizes it.
type Reclaimer struct {
	Store   *workspace.Store
	Archive *workspace.Archive
	Gate    GateEvaluator
	Git     WorktreeGit

	// LockDir holds the per-workspace advisory locks serializing
	// evaluate-then-reclaim sequences.
	LockDir string

	// Reason is recorded on archive records; empty means
	// ReasonLifecycleComplete.
	Reason string

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (r *Reclaimer) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *Reclaimer) reason() string {
	if r.Reason != "" {
		return r.Reason
	}
	return ReasonLifecycleComplete
}

// Reclaim archives and removes the workspace at wsPath, if the gate
// authorizes it.
//
// Idempotent: a missing path is success with no further action and no
// external calls. When the gate denies, the workspace (metadata, files,
// and worktree registration) is left exactly as found. When the gate
// authorizes, the archive record is written before the worktree is
// removed; a failed removal is a loud error, and the already-written
// record is advisory, not something to roll back.
func (r *Reclaimer) Reclaim(wsPath, branch string) (Outcome, error) {
	if _, err := os.Stat(wsPath); os.IsNotExist(err) {
		return Outcome{Cleaned: true, AlreadyClean: true}, nil
	}

	// Serialize against concurrent invocations racing on this workspace.
	// A held lock means another warden is mid-evaluation or mid-removal;
	// leave the workspace alone rather than wait.
	l, err := lock.Acquire(r.LockDir, filepath.Base(wsPath))
	if err != nil {
		return Outcome{}, err
	}
	defer l.Release()

	res := r.Gate.Evaluate(wsPath, branch)
	if !res.Authorized() {
		return Outcome{Pending: res.Pending()}, nil
	}

	// Missing or corrupt metadata blocks reclamation; guessing defaults
	// here would archive fiction and then delete the evidence.
	meta, err := r.Store.Load(wsPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("refusing to reclaim %s: %w", wsPath, err)
	}

	meta.Status = workspace.StatusArchived
	meta.ArchivedAt = r.now()
	meta.Reason = r.reason()

	archivePath, err := r.Archive.Write(meta)
	if err != nil {
		return Outcome{}, fmt.Errorf("archiving %s: %w", wsPath, err)
	}

	if err := r.Git.WorktreeRemove(wsPath, false); err != nil {
		return Outcome{ArchivePath: archivePath}, err
	}

	if err := r.Git.WorktreePrune(); err != nil {
		return Outcome{Cleaned: true, ArchivePath: archivePath}, err
	}

	return Outcome{Cleaned: true, ArchivePath: archivePath}, nil
}

// BatchSummary aggregates a branch-wide reclamation pass.
type BatchSummary struct {
	Cleaned int
	Pending int
	Errors  []error
}

// ReclaimBranch discovers every workspace bound to branch (by metadata
// scan) and reclaims each independently. One workspace's failure never
// aborts the batch; it counts as pending and is recorded in Errors.
func (r *Reclaimer) ReclaimBranch(branch string) (BatchSummary, error) {
	entries, err := r.Store.FindByBranch(branch)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("discovering workspaces for %s: %w", branch, err)
	}

	var sum BatchSummary
	for _, e := range entries {
		outcome, err := r.Reclaim(e.Path, branch)
		switch {
		case err != nil:
			sum.Pending++
			sum.Errors = append(sum.Errors, fmt.Errorf("%s: %w", e.Path, err))
		case outcome.Cleaned:
			sum.Cleaned++
		default:
			sum.Pending++
		}
	}
	return sum, nil
}
