// Package hook turns agent-runtime events into lifecycle actions.
//
// The runtime delivers one JSON event on stdin per invocation. Hooks are
// observers: they provision on agent delegation and attempt reclamation
// on agent completion, and they never block the triggering action. Every
// failure path degrades to "do nothing and report", not to an error exit.
package hook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wardenlabs/warden/internal/lifecycle"
	"github.com/wardenlabs/warden/internal/phase"
	"github.com/wardenlabs/warden/internal/style"
)

// ToolTask is the delegation tool name that carries an agent type.
const ToolTask = "Task"

// Event is one agent-runtime hook payload. Fields beyond these are
// ignored.
type Event struct {
	HookEventName string    `json:"hook_event_name"`
	ToolName      string    `json:"tool_name"`
	ToolInput     ToolInput `json:"tool_input"`
}

// ToolInput is the tool-specific payload; only delegation input matters
// here.
type ToolInput struct {
	SubagentType string `json:"subagent_type"`
}

// AgentType returns the delegated agent type, or "" when the event is
// not a delegation.
func (e *Event) AgentType() string {
	if e.ToolName != ToolTask {
		return ""
	}
	return e.ToolInput.SubagentType
}

// Decode reads one event from r. Malformed input is an error; callers
// treat it as "ignore this event".
func Decode(r io.Reader) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decoding hook event: %w", err)
	}
	return &ev, nil
}

// BranchReader supplies the branch the triggering session is on.
type BranchReader interface {
	CurrentBranch() (string, error)
}

// MergeChecker answers whether a branch has landed on the base branch.
type MergeChecker interface {
	BranchMerged(base, branch string) (bool, error)
}

// Runner executes the two hook flows against the lifecycle machinery.
type Runner struct {
	Branches    BranchReader
	Merges      MergeChecker
	Provisioner *lifecycle.Provisioner
	Reclaimer   *lifecycle.Reclaimer
	BaseBranch  string
	Protected   []string
}

// PreTask handles an agent-delegation event: resolve the agent's
// lifecycle phase and provision a workspace for the current branch.
//
// Non-delegation events, unmapped agent roles, and a detached or
// protected branch are all quiet no-ops. Only an actual provisioning
// failure is returned, and even that must not block the delegation.
func (r *Runner) PreTask(ev *Event) error {
	agentType := ev.AgentType()
	if agentType == "" {
		return nil
	}

	ph, ok := phase.Resolve(agentType)
	if !ok {
		style.PrintInfo("no phase mapping for agent: %s", agentType)
		return nil
	}

	branch, err := r.Branches.CurrentBranch()
	if err != nil || branch == "" {
		style.PrintWarning("not on a git branch")
		return nil
	}

	res, err := r.Provisioner.Provision(int(ph), branch, agentType)
	if err != nil {
		return err
	}
	switch {
	case res.Skipped:
	case res.Created:
		style.PrintInfo("created workspace %s for %s (phase %d, %s)",
			res.Path, res.IssueKey, int(ph), ph.Name())
	default:
		style.PrintInfo("using existing workspace for %s: %s", res.IssueKey, branch)
	}
	return nil
}

// PostTask handles an agent-completion event: if the current branch has
// merged, reclaim every workspace bound to it that passes the gate.
//
// An unmerged branch is the common case and a quiet no-op. Workspaces
// denied by the gate stay put and are reported as pending.
func (r *Runner) PostTask() error {
	branch, err := r.Branches.CurrentBranch()
	if err != nil || branch == "" {
		return nil
	}
	for _, protected := range r.Protected {
		if branch == protected {
			return nil
		}
	}

	merged, err := r.Merges.BranchMerged(r.BaseBranch, branch)
	if err != nil || !merged {
		return nil
	}

	style.PrintInfo("branch %s is merged, checking lifecycle conditions", branch)
	sum, err := r.Reclaimer.ReclaimBranch(branch)
	if err != nil {
		return err
	}
	if sum.Cleaned > 0 {
		style.PrintInfo("cleaned up %d workspace(s)", sum.Cleaned)
	}
	if sum.Pending > 0 {
		style.PrintInfo("%d workspace(s) pending, lifecycle conditions not met", sum.Pending)
	}
	for _, e := range sum.Errors {
		style.PrintWarning("%v", e)
	}
	return nil
}
