// Package forge queries the remote review service for pull requests.
//
// The only implementation shells out to the gh CLI; the ReviewService
// interface exists so gate evaluation and provisioning can be tested
// without network access.
package forge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// DecisionApproved is gh's aggregate review decision for an approved PR.
const DecisionApproved = "APPROVED"

// Review describes an open pull request for a branch.
type Review struct {
	Number   int    `json:"number"`
	URL      string `json:"url"`
	Decision string `json:"reviewDecision"`
}

// Approved reports whether the review's aggregate decision is approval.
// A review with no decision yet is not approved.
func (r *Review) Approved() bool {
	return r != nil && r.Decision == DecisionApproved
}

// Ref returns the "#123"-style reference recorded in workspace metadata.
func (r *Review) Ref() string {
	return fmt.Sprintf("#%d", r.Number)
}

// ReviewService looks up open review requests.
type ReviewService interface {
	// OpenReview returns the open review for branch, or nil when none
	// exists. Absence of a review is not an error.
	OpenReview(branch string) (*Review, error)
}

// GH is a ReviewService backed by the gh CLI.
type GH struct {
	dir string
	run runner
}

type runner func(dir string, args ...string) ([]byte, error)

// NewGH returns a gh-backed review service operating from dir.
func NewGH(dir string) *GH {
	return &GH{dir: dir, run: execGH}
}

// NewGHWithRunner returns a client with a custom command runner, for tests.
func NewGHWithRunner(dir string, run func(dir string, args ...string) ([]byte, error)) *GH {
	return &GH{dir: dir, run: run}
}

func execGH(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("gh", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("gh %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}

// OpenReview returns the open PR whose head is branch, or nil if there is
// none. gh returns zero or one PRs for a head branch.
func (g *GH) OpenReview(branch string) (*Review, error) {
	out, err := g.run(g.dir, "pr", "list",
		"--head", branch,
		"--json", "number,url,reviewDecision",
		"--limit", "1")
	if err != nil {
		return nil, fmt.Errorf("listing PRs for %s: %w", branch, err)
	}

	var reviews []Review
	if err := json.Unmarshal(out, &reviews); err != nil {
		return nil, fmt.Errorf("parsing gh output for %s: %w", branch, err)
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return &reviews[0], nil
}
