package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/hook"
	"github.com/wardenlabs/warden/internal/style"
	"github.com/wardenlabs/warden/internal/workspace"
)

var hookCmd = &cobra.Command{
	Use:     "hook",
	GroupID: GroupLifecycle,
	Short:   "Run as an agent-runtime hook",
	Long: `Entry points for agent-runtime hooks. Each subcommand reads one
JSON event from stdin.

Hooks never fail the triggering action: every problem is reported to
stderr and the exit code is still 0.`,
}

var hookPreTaskCmd = &cobra.Command{
	Use:   "pre-task",
	Short: "Provision a workspace when an agent is delegated",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runHook(func(r *hook.Runner) error {
			ev, err := hook.Decode(os.Stdin)
			if err != nil {
				return err
			}
			return r.PreTask(ev)
		})
	},
}

var hookPostTaskCmd = &cobra.Command{
	Use:   "post-task",
	Short: "Reclaim workspaces when an agent completes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runHook(func(r *hook.Runner) error {
			// The completion event carries nothing the reclaim flow
			// needs; drain stdin and work from git state.
			_, _ = hook.Decode(os.Stdin)
			return r.PostTask()
		})
	},
}

func init() {
	hookCmd.AddCommand(hookPreTaskCmd, hookPostTaskCmd)
	rootCmd.AddCommand(hookCmd)
}

// runHook builds the hook runner and executes one flow. All errors are
// reported, none exit nonzero.
func runHook(flow func(*hook.Runner) error) {
	cfg, err := loadConfig()
	if err != nil {
		style.PrintError("hook: %v", err)
		return
	}
	repo, err := repoGit()
	if err != nil {
		style.PrintError("hook: %v", err)
		return
	}
	store := workspace.NewStore(cfg.WorkspaceRoot)

	runner := &hook.Runner{
		Branches:    repo,
		Merges:      repo,
		Provisioner: newProvisioner(cfg, repo, store),
		Reclaimer:   newReclaimer(cfg, repo, store, ""),
		BaseBranch:  cfg.DefaultBranch,
		Protected:   cfg.ProtectedBranches,
	}
	if err := flow(runner); err != nil {
		style.PrintError("hook: %v", err)
	}
}
