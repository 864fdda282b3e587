// Package phase maps agent roles to numbered development lifecycle phases.
//
// The lifecycle runs 1–9: branch-init through merge. Each phase names the
// agent roles that may trigger it; an event from a role with no phase
// mapping is ignored, not an error.
package phase

import "strings"

// Phase is a numbered lifecycle phase (1–9).
type Phase int

// Info describes one lifecycle phase and the roles that trigger it.
type Info struct {
	Num   int
	Name  string
	Roles []string
}

// table is the fixed phase mapping. Order matters: Resolve scans in
// ascending phase number and the first match wins.
var table = []Info{
	{1, "branch-init", []string{"Pull Request Agent", "git-workflow"}},
	{2, "test-creation", []string{"Test Agent", "qa-engineer-seraph", "testing"}},
	{3, "implementation", []string{"Coding Agent", "backend-developer", "frontend-developer"}},
	{4, "code-review", []string{"Code Review Agent", "code-review-coordinator", "morpheus-validator"}},
	{5, "iteration", []string{"Coding Agent", "backend-developer", "frontend-developer"}},
	{6, "pr-creation", []string{"Pull Request Agent", "git-workflow"}},
	{7, "pr-review", []string{"Code Review Agent", "code-review-coordinator"}},
	{8, "conflict-resolution", []string{"Conflict Resolution Agent", "git-workflow"}},
	{9, "merge", []string{"Pull Request Agent", "git-workflow"}},
}

// Resolve maps an agent role identifier to its lifecycle phase.
// Matching is a case-insensitive substring check of each known role
// against the identifier, in ascending phase order. Returns false when
// no phase claims the role.
func Resolve(role string) (Phase, bool) {
	lower := strings.ToLower(role)
	for _, info := range table {
		for _, r := range info.Roles {
			if strings.Contains(lower, strings.ToLower(r)) {
				return Phase(info.Num), true
			}
		}
	}
	return 0, false
}

// Lookup returns the Info for a phase number.
func Lookup(n int) (Info, bool) {
	if n < 1 || n > len(table) {
		return Info{}, false
	}
	return table[n-1], true
}

// Name returns the phase's name, or "" for an unknown phase.
func (p Phase) Name() string {
	info, ok := Lookup(int(p))
	if !ok {
		return ""
	}
	return info.Name
}

// PrimaryRole returns the first role listed for the phase. Provisioning
// records it as the workspace's agentRole.
func (p Phase) PrimaryRole() string {
	info, ok := Lookup(int(p))
	if !ok || len(info.Roles) == 0 {
		return ""
	}
	return info.Roles[0]
}

// Valid reports whether p is a known phase number.
func (p Phase) Valid() bool {
	_, ok := Lookup(int(p))
	return ok
}
