// Package seen persists the baseline of package updates that were already
// reported, so that only-new runs can suppress repeat notifications.
package seen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/obentoo/aptcron/internal/apt"
	"github.com/obentoo/aptcron/internal/common/logger"
)

// DefaultDir is where the baseline is kept on a stock installation
const DefaultDir = "/var/cache/aptcron"

const fileName = "seen"

// ErrCacheCorrupted is returned when the baseline file cannot be decoded
var ErrCacheCorrupted = errors.New("seen cache is corrupted")

// CacheCorruptError reports an unreadable baseline file. It is never
// treated as an empty baseline.
type CacheCorruptError struct {
	Path string
	Err  error
}

func (e *CacheCorruptError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrCacheCorrupted, e.Err)
}

func (e *CacheCorruptError) Unwrap() []error {
	return []error{ErrCacheCorrupted, e.Err}
}

// Kind names the error class in reports
func (e *CacheCorruptError) Kind() string {
	return "CacheCorruptError"
}

// Baseline is the ordered list of updates already reported.
// Entries are not deduplicated.
type Baseline []apt.Update

// State is the dedup state of the store
type State int

const (
	// StateNoBaseline means no baseline file exists
	StateNoBaseline State = iota
	// StateHasBaseline means a baseline file exists
	StateHasBaseline
)

func (s State) String() string {
	switch s {
	case StateNoBaseline:
		return "NoBaseline"
	case StateHasBaseline:
		return "HasBaseline"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Store manages the baseline file in a cache directory.
// Concurrent runs against the same directory race; the last writer wins.
type Store struct {
	dir  string
	path string
}

// NewStore creates a store rooted at dir. Nothing is touched on disk until
// the first Commit.
func NewStore(dir string) *Store {
	return &Store{
		dir:  dir,
		path: filepath.Join(dir, fileName),
	}
}

// Path returns the baseline file path
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a baseline file is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// State returns the current dedup state
func (s *Store) State() State {
	if s.Exists() {
		return StateHasBaseline
	}
	return StateNoBaseline
}

// Load reads the baseline. A missing file yields an empty baseline; an
// undecodable one yields a *CacheCorruptError.
func (s *Store) Load() (Baseline, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Baseline{}, nil
		}
		return nil, fmt.Errorf("failed to read seen cache: %w", err)
	}

	baseline, err := decode(data)
	if err != nil {
		return nil, &CacheCorruptError{Path: s.path, Err: err}
	}

	logger.Debug("loaded %d seen update(s) from %s", len(baseline), s.path)
	return baseline, nil
}

// FilterNew returns the updates in current that are not in baseline,
// preserving the order of current.
func FilterNew(current []apt.Update, baseline Baseline) []apt.Update {
	known := make(map[apt.Update]struct{}, len(baseline))
	for _, u := range baseline {
		known[u] = struct{}{}
	}

	fresh := make([]apt.Update, 0, len(current))
	for _, u := range current {
		if _, ok := known[u]; !ok {
			fresh = append(fresh, u)
		}
	}
	return fresh
}

// Commit records the outcome of a run. When no updates are outstanding at
// all (total == 0) an existing baseline is removed; otherwise the baseline
// is rewritten as baseline followed by reported.
func (s *Store) Commit(baseline Baseline, reported []apt.Update, total int) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if total == 0 && s.Exists() {
		logger.Debug("no outstanding updates, resetting %s", s.path)
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove seen cache: %w", err)
		}
		return nil
	}

	next := make(Baseline, 0, len(baseline)+len(reported))
	next = append(next, baseline...)
	next = append(next, reported...)

	return s.save(next)
}

// save writes the baseline via a temp file and rename
func (s *Store) save(baseline Baseline) error {
	data, err := encode(baseline)
	if err != nil {
		return fmt.Errorf("failed to encode seen cache: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write seen cache: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename seen cache: %w", err)
	}

	logger.Debug("wrote %d seen update(s) to %s", len(baseline), s.path)
	return nil
}
