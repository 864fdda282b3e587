package doctor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wardenlabs/warden/internal/workspace"
)

// MetadataIntegrityCheck scans every directory under the workspace root
// and flags corrupt or missing metadata. Corrupt metadata blocks
// reclamation permanently, so it is an error; a directory without any
// metadata is likely a half-finished provisioning and only a warning.
type MetadataIntegrityCheck struct {
	BaseCheck
}

// NewMetadataIntegrityCheck creates a new metadata integrity check.
func NewMetadataIntegrityCheck() *MetadataIntegrityCheck {
	return &MetadataIntegrityCheck{
		BaseCheck: BaseCheck{
			CheckName:        "workspace-metadata",
			CheckDescription: "Check that every workspace has readable metadata",
		},
	}
}

// Run scans the workspace root for metadata problems.
func (c *MetadataIntegrityCheck) Run(ctx *CheckContext) *CheckResult {
	root := ctx.Config.WorkspaceRoot
	store := workspace.NewStore(root)

	dirents, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusOK,
			Message: "no workspaces",
		}
	}
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("cannot read workspace root: %v", err),
		}
	}

	var (
		healthy int
		corrupt []string
		missing []string
	)
	for _, d := range dirents {
		if !d.IsDir() || d.Name()[0] == '.' {
			continue
		}
		wsPath := filepath.Join(root, d.Name())
		switch _, err := store.Load(wsPath); {
		case err == nil:
			healthy++
		case errors.Is(err, workspace.ErrCorrupt):
			corrupt = append(corrupt, d.Name())
		case errors.Is(err, workspace.ErrNotFound):
			missing = append(missing, d.Name())
		}
	}

	if len(corrupt) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%d workspace(s) with corrupt metadata", len(corrupt)),
			Details: corrupt,
			FixHint: "Inspect and repair the metadata by hand; these workspaces cannot be reclaimed",
		}
	}
	if len(missing) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d directory(ies) without metadata under the workspace root", len(missing)),
			Details: missing,
			FixHint: "Remove them by hand if they are abandoned",
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d workspace(s), all metadata readable", healthy),
	}
}
