// Package tracker is the issue-tracker collaborator boundary.
//
// No real status query is implemented yet. The Stub client reports every
// linked issue as updated, which makes the trackerUpdated gate condition
// vacuously true. It stays an explicit, documented placeholder until a
// concrete tracker integration contract exists; do not widen the gate's
// trust in it before then.
package tracker

// Client answers whether a tracked issue has been updated to its terminal
// state (done/closed).
type Client interface {
	// IssueUpdated reports whether the issue identified by key has been
	// updated. An empty key means the workspace has no linked issue and
	// there is nothing to verify.
	IssueUpdated(key string) (bool, error)
}

// Stub is the placeholder Client. It always reports true.
type Stub struct{}

// IssueUpdated always returns true. See the package comment.
func (Stub) IssueUpdated(key string) (bool, error) {
	return true, nil
}
