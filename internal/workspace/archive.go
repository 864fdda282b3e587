package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wardenlabs/warden/internal/util"
)

// Record is an immutable snapshot of a workspace's metadata taken at
// archival time.
type Record struct {
	// ID is a generated record identifier, independent of the filename.
	ID string `json:"id"`
	Metadata
}

// Archive stores archival records in a flat directory.
type Archive struct {
	dir string
}

// NewArchive returns an archive store at dir.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Dir returns the archive directory.
func (a *Archive) Dir() string { return a.dir }

// Write snapshots meta as an archive record. The caller must already have
// set Status, ArchivedAt, and Reason. Records are never overwritten: the
// name derives from issue key, branch, and the archival second, and a
// numeric suffix resolves the (unlikely) remaining collisions.
func (a *Archive) Write(meta *Metadata) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	rec := Record{ID: uuid.NewString(), Metadata: *meta}
	base := recordName(meta.IssueKey, meta.Branch, meta.ArchivedAt)

	path := filepath.Join(a.dir, base+".json")
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(a.dir, fmt.Sprintf("%s-%d.json", base, n))
	}

	if err := util.AtomicWriteJSON(path, &rec); err != nil {
		return "", fmt.Errorf("writing archive record: %w", err)
	}
	return path, nil
}

// List returns the archive record filenames, sorted.
func (a *Archive) List() ([]string, error) {
	dirents, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive dir %s: %w", a.dir, err)
	}
	var names []string
	for _, d := range dirents {
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			names = append(names, d.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads one archive record by filename.
func (a *Archive) Load(name string) (*Record, error) {
	path := filepath.Join(a.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive record %s: %w", name, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &rec, nil
}

// recordName builds the deterministic archive filename stem.
// Branch separators become hyphens so the name stays flat.
func recordName(issueKey, branch string, at time.Time) string {
	safeBranch := strings.ReplaceAll(branch, "/", "-")
	return fmt.Sprintf("%s-%s-%s",
		strings.ToLower(issueKey), safeBranch, at.UTC().Format("20060102-150405"))
}
