package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/tui"
	"github.com/wardenlabs/warden/internal/workspace"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: GroupDiag,
	Short:   "Watch workspaces live in the terminal",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return tui.Run(workspace.NewStore(cfg.WorkspaceRoot))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
