// Package cmd implements the warden CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/style"
)

// Command group IDs for help output.
const (
	GroupLifecycle = "lifecycle"
	GroupDiag      = "diagnostics"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Manage per-issue git worktree workspaces",
	Long: `Warden provisions isolated git worktrees for agents working on
tracked issues, follows each workspace through the development
lifecycle, and reclaims it only once every lifecycle condition holds:
tests pass, the PR is reviewed and approved, the issue is updated, the
branch is merged, and no work would be lost.

Workspaces live under the workspace root (default ~/.warden/workspaces),
one directory per issue key. Reclaimed workspaces leave an archive
record behind.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.warden/config.toml)")
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupLifecycle, Title: "Lifecycle Commands:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostic Commands:"},
	)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		style.PrintError("%v", err)
		os.Exit(1)
	}
}
