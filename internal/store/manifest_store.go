package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"covrun/internal/domain"
)

// RunsDir is where manifests live, relative to the project directory.
const RunsDir = ".covrun/runs"

const manifestExt = ".json"

// ManifestFileStore keeps one JSON file per run.
type ManifestFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewManifestFileStore returns a store rooted at dir (usually
// <project>/.covrun/runs).
func NewManifestFileStore(dir string) *ManifestFileStore {
	return &ManifestFileStore{dir: dir}
}

// Dir returns the directory manifests are written to.
func (s *ManifestFileStore) Dir() string { return s.dir }

// Save writes m, replacing any manifest with the same id.
func (s *ManifestFileStore) Save(m domain.Manifest) error {
	if err := validID(m.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return writeJSON(s.path(m.ID), m, 0o644)
}

// Load returns the manifest with id; ok is false when it does not exist.
func (s *ManifestFileStore) Load(id domain.RunID) (domain.Manifest, bool, error) {
	if err := validID(id); err != nil {
		return domain.Manifest{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var m domain.Manifest
	found, err := readJSON(s.path(id), &m)
	if err != nil || !found {
		return domain.Manifest{}, false, err
	}
	return m, true, nil
}

// List returns all manifests, newest first.
func (s *ManifestFileStore) List() ([]domain.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

// Prune removes all but the newest keep manifests.
func (s *ManifestFileStore) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.list()
	if err != nil {
		return 0, err
	}
	if len(all) <= keep {
		return 0, nil
	}
	removed := 0
	for _, m := range all[keep:] {
		if err := os.Remove(s.path(m.ID)); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *ManifestFileStore) list() ([]domain.Manifest, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Manifest, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), manifestExt) {
			continue
		}
		var m domain.Manifest
		found, err := readJSON(filepath.Join(s.dir, e.Name()), &m)
		if err != nil {
			return nil, fmt.Errorf("read manifest %s: %w", e.Name(), err)
		}
		if found {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (s *ManifestFileStore) path(id domain.RunID) string {
	return filepath.Join(s.dir, string(id)+manifestExt)
}

// validID rejects ids that would escape the runs directory.
func validID(id domain.RunID) error {
	v := string(id)
	if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return &domain.OpError{Op: "store.manifest", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("invalid run id %q", v)}
	}
	return nil
}

// Compile-time assertion that ManifestFileStore implements domain.ManifestStore.
var _ domain.ManifestStore = (*ManifestFileStore)(nil)
