package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenlabs/warden/internal/gate"
	"github.com/wardenlabs/warden/internal/style"
	"github.com/wardenlabs/warden/internal/workspace"
)

var gateJSON bool

var gateCmd = &cobra.Command{
	Use:     "gate <issue-key>",
	GroupID: GroupDiag,
	Short:   "Show the reclamation gate for a workspace",
	Long: `Evaluate every reclamation condition for the workspace and print
the result, without changing anything. The exit code is 0 when the gate
authorizes reclamation and 1 when conditions are still pending.`,
	Args: cobra.ExactArgs(1),
	RunE: runGate,
}

func init() {
	gateCmd.Flags().BoolVar(&gateJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(gateCmd)
}

// gateReport is the machine-readable output of warden gate --json.
type gateReport struct {
	IssueKey   string          `json:"issueKey"`
	Branch     string          `json:"branch"`
	Authorized bool            `json:"authorized"`
	Checks     map[string]bool `json:"checks"`
}

func runGate(cmd *cobra.Command, args []string) error {
	key := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := repoGit()
	if err != nil {
		return err
	}
	store := workspace.NewStore(cfg.WorkspaceRoot)

	wsPath := store.PathFor(key)
	meta, err := store.Load(wsPath)
	if err != nil {
		return fmt.Errorf("loading workspace for %s: %w", key, err)
	}

	res := newEvaluator(cfg, repo, store).Evaluate(wsPath, meta.Branch)

	if gateJSON {
		report := gateReport{
			IssueKey:   meta.IssueKey,
			Branch:     meta.Branch,
			Authorized: res.Authorized(),
			Checks:     make(map[string]bool, len(res.Checks)),
		}
		for c, ok := range res.Checks {
			report.Checks[string(c)] = ok
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Printf("Gate for %s (%s):\n", meta.IssueKey, meta.Branch)
		for _, c := range gate.Conditions() {
			prefix := style.ErrorPrefix
			if res.Checks[c] {
				prefix = style.SuccessPrefix
			}
			fmt.Printf("  %s %s\n", prefix, c)
		}
		if res.Authorized() {
			fmt.Printf("\n%s Reclamation authorized\n", style.SuccessPrefix)
		} else {
			fmt.Printf("\n%s Reclamation blocked\n", style.WarningPrefix)
		}
	}

	if !res.Authorized() {
		os.Exit(1)
	}
	return nil
}
