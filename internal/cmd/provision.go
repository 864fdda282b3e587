package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/phase"
	"github.com/wardenlabs/warden/internal/style"
	"github.com/wardenlabs/warden/internal/workspace"
)

var (
	provisionPhase int
	provisionAgent string
)

var provisionCmd = &cobra.Command{
	Use:     "provision <branch>",
	GroupID: GroupLifecycle,
	Short:   "Create an isolated workspace for a branch",
	Long: `Create a git worktree workspace for the given branch.

The branch name must carry an issue key (for example ONEK-93-add-pricing).
The lifecycle phase comes from --phase, or is resolved from --agent when
--phase is not given. Protected branches are skipped silently, and an
existing workspace is reused as-is.`,
	Args: cobra.ExactArgs(1),
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().IntVar(&provisionPhase, "phase", 0, "Lifecycle phase (1-9)")
	provisionCmd.Flags().StringVar(&provisionAgent, "agent", "", "Agent type, used to resolve the phase and recorded in metadata")
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, args []string) error {
	branch := args[0]

	phaseNum := provisionPhase
	if phaseNum == 0 {
		if provisionAgent == "" {
			return fmt.Errorf("one of --phase or --agent is required")
		}
		ph, ok := phase.Resolve(provisionAgent)
		if !ok {
			return fmt.Errorf("no phase mapping for agent %q", provisionAgent)
		}
		phaseNum = int(ph)
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

	res, err := newProvisioner(cfg, repo, store).Provision(phaseNum, branch, provisionAgent)
	if err != nil {
		return err
	}

	switch {
	case res.Skipped:
		style.PrintInfo("%s is a protected branch; no workspace created", branch)
	case res.Created:
		fmt.Printf("%s Created workspace for %s (phase %d, %s)\n",
			style.SuccessPrefix, res.IssueKey, phaseNum, phase.Phase(phaseNum).Name())
		fmt.Printf("  %s %s\n", style.ArrowPrefix, res.Path)
	default:
		fmt.Printf("%s Using existing workspace for %s\n", style.SuccessPrefix, res.IssueKey)
		fmt.Printf("  %s %s\n", style.ArrowPrefix, res.Path)
	}
	return nil
}
