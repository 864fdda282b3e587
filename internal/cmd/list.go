package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wardenlabs/warden/internal/style"
	"github.com/wardenlabs/warden/internal/workspace"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: GroupDiag,
	Short:   "List active workspaces",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}

// listEntry is the machine-readable form of one workspace.
type listEntry struct {
	IssueKey       string    `json:"issueKey"`
	Branch         string    `json:"branch"`
	Path           string    `json:"path"`
	Phase          int       `json:"phase"`
	PhaseName      string    `json:"phaseName"`
	AgentType      string    `json:"agentType,omitempty"`
	PullRequest    string    `json:"pullRequest,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

var titleCaser = cases.Title(language.English)

// displayPhase renders "test-creation" as "Test Creation".
func displayPhase(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "-", " "))
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	entries, err := workspace.NewStore(cfg.WorkspaceRoot).List()
	if err != nil {
		return err
	}

	if listJSON {
		out := make([]listEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, listEntry{
				IssueKey:       e.Meta.IssueKey,
				Branch:         e.Meta.Branch,
				Path:           e.Path,
				Phase:          e.Meta.Phase,
				PhaseName:      e.Meta.PhaseName,
				AgentType:      e.Meta.AgentType,
				PullRequest:    e.Meta.PullRequest,
				Status:         string(e.Meta.Status),
				CreatedAt:      e.Meta.CreatedAt,
				LastAccessedAt: e.Meta.LastAccessedAt,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(entries) == 0 {
		fmt.Println("No active workspaces.")
		return nil
	}

	fmt.Printf("%s\n\n", style.Bold.Render(fmt.Sprintf("%d workspace(s) under %s", len(entries), cfg.WorkspaceRoot)))
	for _, e := range entries {
		fmt.Printf("%s %s  %s\n",
			style.SuccessPrefix,
			style.Bold.Render(e.Meta.IssueKey),
			e.Meta.Branch)
		fmt.Printf("    Phase %d: %s", e.Meta.Phase, displayPhase(e.Meta.PhaseName))
		if e.Meta.AgentType != "" {
			fmt.Printf("  (%s)", e.Meta.AgentType)
		}
		fmt.Println()
		if e.Meta.PullRequest != "" {
			fmt.Printf("    PR %s  %s\n", e.Meta.PullRequest, e.Meta.PRURL)
		}
		fmt.Printf("    %s\n", style.Dim.Render(e.Path))
	}
	return nil
}
