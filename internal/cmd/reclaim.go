package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/style"
	"github.com/wardenlabs/warden/internal/workspace"
)

var (
	reclaimBranch string
	reclaimReason string
)

var reclaimCmd = &cobra.Command{
	Use:     "reclaim [issue-key]",
	GroupID: GroupLifecycle,
	Short:   "Archive and remove a workspace once its lifecycle completes",
	Long: `Reclaim the workspace for an issue key, or with --branch every
workspace bound to a branch.

Reclamation is gated: the workspace is removed only when tests pass, a
PR exists and is approved, the issue is updated, the branch is merged,
and the worktree holds no uncommitted or unpushed work. A denied gate
leaves the workspace untouched and reports what is still pending. The
workspace metadata is archived before anything is deleted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReclaim,
}

func init() {
	reclaimCmd.Flags().StringVar(&reclaimBranch, "branch", "", "Reclaim every workspace bound to this branch")
	reclaimCmd.Flags().StringVar(&reclaimReason, "reason", "", "Archival reason to record (default lifecycle-complete)")
	rootCmd.AddCommand(reclaimCmd)
}

func runReclaim(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (reclaimBranch == "") {
		return fmt.Errorf("provide an issue key or --branch, not both")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := repoGit()
	if err != nil {
		return err
	}
	store := workspace.NewStore(cfg.WorkspaceRoot)
	reclaimer := newReclaimer(cfg, repo, store, reclaimReason)

	if reclaimBranch != "" {
		sum, err := reclaimer.ReclaimBranch(reclaimBranch)
		if err != nil {
			return err
		}
		if sum.Cleaned > 0 {
			fmt.Printf("%s Reclaimed %d workspace(s)\n", style.SuccessPrefix, sum.Cleaned)
		}
		if sum.Pending > 0 {
			fmt.Printf("%s %d workspace(s) pending\n", style.WarningPrefix, sum.Pending)
		}
		for _, e := range sum.Errors {
			style.PrintWarning("%v", e)
		}
		return nil
	}

	key := args[0]
	wsPath := store.PathFor(key)
	meta, err := store.Load(wsPath)
	if errors.Is(err, workspace.ErrNotFound) {
		fmt.Printf("%s Nothing to do; no workspace for %s\n", style.SuccessPrefix, key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading workspace for %s: %w", key, err)
	}

	outcome, err := reclaimer.Reclaim(wsPath, meta.Branch)
	if err != nil {
		return err
	}
	switch {
	case outcome.AlreadyClean:
		fmt.Printf("%s Nothing to do; workspace already gone\n", style.SuccessPrefix)
	case outcome.Cleaned:
		fmt.Printf("%s Reclaimed workspace for %s\n", style.SuccessPrefix, key)
		fmt.Printf("  %s archived to %s\n", style.ArrowPrefix, outcome.ArchivePath)
	default:
		conds := make([]string, len(outcome.Pending))
		for i, c := range outcome.Pending {
			conds[i] = string(c)
		}
		fmt.Printf("%s Workspace kept; pending: %s\n", style.WarningPrefix, strings.Join(conds, ", "))
	}
	return nil
}
