package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wardenlabs/warden/internal/constants"
	"github.com/wardenlabs/warden/internal/issue"
	"github.com/wardenlabs/warden/internal/util"
)

// Store manages workspace directories and their metadata under one root.
type Store struct {
	root string
}

// NewStore returns a store rooted at root. The directory is created
// lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the workspace root directory.
func (s *Store) Root() string { return s.root }

// PathFor returns the workspace directory for an issue key.
// The path is deterministic: <root>/<lowercase key>.
func (s *Store) PathFor(key string) string {
	return filepath.Join(s.root, issue.WorkspaceName(key))
}

// MetadataPath returns the metadata file path inside a workspace.
func (s *Store) MetadataPath(wsPath string) string {
	return filepath.Join(wsPath, constants.MetadataFile)
}

// Exists reports whether a workspace directory is present for key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.PathFor(key))
	return err == nil
}

// Load reads the metadata for the workspace at wsPath.
// Returns ErrNotFound when the file is absent and ErrCorrupt when it is
// present but unparsable.
func (s *Store) Load(wsPath string) (*Metadata, error) {
	return readMetadataFile(s.MetadataPath(wsPath))
}

// Save writes metadata atomically (whole-file write, temp + rename).
func (s *Store) Save(wsPath string, meta *Metadata) error {
	if err := util.EnsureDirAndWriteJSON(s.MetadataPath(wsPath), meta); err != nil {
		return fmt.Errorf("writing metadata for %s: %w", wsPath, err)
	}
	return nil
}

// Touch updates the workspace's lastAccessedAt timestamp.
func (s *Store) Touch(wsPath string) error {
	meta, err := s.Load(wsPath)
	if err != nil {
		return err
	}
	meta.LastAccessedAt = time.Now().UTC()
	return s.Save(wsPath, meta)
}

// Entry pairs a workspace path with its metadata.
type Entry struct {
	Path string
	Meta *Metadata
}

// List returns every workspace under the root that has readable metadata.
// Directories without metadata (partially provisioned, foreign) and the
// archive/lock directories are skipped.
func (s *Store) List() ([]Entry, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading workspace root %s: %w", s.root, err)
	}

	var entries []Entry
	for _, d := range dirents {
		if !d.IsDir() || d.Name()[0] == '.' {
			continue
		}
		wsPath := filepath.Join(s.root, d.Name())
		meta, err := s.Load(wsPath)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Path: wsPath, Meta: meta})
	}
	return entries, nil
}

// FindByBranch returns the workspaces bound to branch, discovered by
// scanning metadata records. Discovery is by branch equality, never by
// directory-name patterns.
func (s *Store) FindByBranch(branch string) ([]Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	var matches []Entry
	for _, e := range entries {
		if e.Meta.Branch == branch {
			matches = append(matches, e)
		}
	}
	return matches, nil
}
