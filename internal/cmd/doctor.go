package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/doctor"
)

var (
	doctorFix     bool
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupDiag,
	Short:   "Check the health of the workspace environment",
	Long: `Run health checks: required binaries, the workspace root, metadata
integrity, and stale worktree registrations.

With --fix, auto-fixable problems are repaired and re-checked.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt to fix problems automatically")
	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show details for passing checks too")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := repoGit()
	if err != nil {
		return err
	}

	d := doctor.NewDoctor()
	d.RegisterAll(
		doctor.NewGitBinaryCheck(),
		doctor.NewGHBinaryCheck(),
		doctor.NewWorkspaceRootCheck(),
		doctor.NewMetadataIntegrityCheck(),
		doctor.NewPrunableWorktreeCheck(repo),
	)

	ctx := &doctor.CheckContext{
		Config:  cfg,
		RepoDir: repo.Dir(),
		Verbose: doctorVerbose,
	}

	var report *doctor.Report
	if doctorFix {
		report = d.Fix(ctx)
	} else {
		report = d.Run(ctx)
	}

	report.Print(os.Stdout, doctorVerbose)
	if report.HasErrors() {
		os.Exit(1)
	}
	return nil
}
