package doctor

import (
	"fmt"
	"os"
	"path/filepath"
)

// WorkspaceRootCheck verifies that the workspace root exists, is a
// directory, and is writable. Auto-fix creates the directory.
type WorkspaceRootCheck struct {
	FixableCheck
}

// NewWorkspaceRootCheck creates a new workspace root check.
func NewWorkspaceRootCheck() *WorkspaceRootCheck {
	return &WorkspaceRootCheck{
		FixableCheck: FixableCheck{
			BaseCheck: BaseCheck{
				CheckName:        "workspace-root",
				CheckDescription: "Check that the workspace root exists and is writable",
			},
		},
	}
}

// Run verifies the workspace root directory.
func (c *WorkspaceRootCheck) Run(ctx *CheckContext) *CheckResult {
	root := ctx.Config.WorkspaceRoot

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("workspace root %s does not exist", root),
			FixHint: "Run with --fix to create it",
		}
	}
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("cannot stat workspace root: %v", err),
		}
	}
	if !info.IsDir() {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("workspace root %s is not a directory", root),
			FixHint: "Move the file aside or point workspace_root elsewhere",
		}
	}

	// Probe writability with a real create; permission bits lie on some
	// filesystems.
	probe := filepath.Join(root, ".doctor-probe")
	f, err := os.Create(probe)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("workspace root %s is not writable: %v", root, err),
		}
	}
	f.Close()
	os.Remove(probe)

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("workspace root %s is writable", root),
	}
}

// Fix creates the workspace root directory.
func (c *WorkspaceRootCheck) Fix(ctx *CheckContext) error {
	return os.MkdirAll(ctx.Config.WorkspaceRoot, 0755)
}
