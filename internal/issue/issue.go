// Package issue resolves issue keys from branch names.
//
// Branch names carry an embedded tracker key like ONEK-93 or DES-123.
// The key is the workspace's stable identity: its lowercase form names
// the workspace directory, and provisioning refuses branches without one.
package issue

import (
	"regexp"
	"strings"
)

// keyPattern matches tracker keys embedded in branch names: one or more
// uppercase letters, a hyphen, one or more digits. Case-sensitive on the
// letter prefix: "onek-93" is not a key.
var keyPattern = regexp.MustCompile(`[A-Z]+-\d+`)

// ExtractKey returns the first issue key found in branch, and whether one
// was found at all. The boolean is the only "no key" signal; callers must
// not treat a missing key as an empty-string default.
func ExtractKey(branch string) (string, bool) {
	key := keyPattern.FindString(branch)
	if key == "" {
		return "", false
	}
	return key, true
}

// WorkspaceName returns the directory name a key maps to under the
// workspace root. Keys are uppercase in branch names but workspaces use
// the lowercase form (ONEK-93 → onek-93).
func WorkspaceName(key string) string {
	return strings.ToLower(key)
}
