package blob

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/docker/go-units"
	"github.com/google/uuid"
)

// Entry describes a live local handle.
type Entry struct {
	Handle string
	Name   string
	Size   int64
}

// Store keeps local copies of selected files on disk. Each Put creates a
// handle that must be released exactly once.
type Store struct {
	basePath string
	maxSize  int64

	mu       sync.Mutex
	live     map[string]Entry
	released map[string]struct{}
}

// NewStore creates the base directory and returns a store. maxSize <= 0
// disables the size limit.
func NewStore(basePath string, maxSize int64) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path required")
	}
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("create base path: %w", err)
	}
	return &Store{
		basePath: absPath,
		maxSize:  maxSize,
		live:     make(map[string]Entry),
		released: make(map[string]struct{}),
	}, nil
}

// Put copies r into a new handle.
func (s *Store) Put(name string, r io.Reader) (Entry, error) {
	handle := uuid.NewString()
	path := filepath.Join(s.basePath, handle)

	f, err := os.Create(path)
	if err != nil {
		return Entry{}, fmt.Errorf("create blob: %w", err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return Entry{}, fmt.Errorf("write blob: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		os.Remove(path)
		return Entry{}, fmt.Errorf("%w (max %s)", ErrTooLarge, units.HumanSize(float64(s.maxSize)))
	}

	entry := Entry{Handle: handle, Name: filepath.Base(name), Size: n}
	s.mu.Lock()
	s.live[handle] = entry
	s.mu.Unlock()

	slog.Debug("Local blob stored", "handle", handle, "name", entry.Name, "size", units.HumanSize(float64(n)))
	return entry, nil
}

// Open returns a reader for a live handle.
func (s *Store) Open(handle string) (io.ReadCloser, error) {
	path, err := s.path(handle)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	_, ok := s.live[handle]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Stat returns the entry for a live handle.
func (s *Store) Stat(handle string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live[handle]
	return e, ok
}

// Release deletes the content behind handle. A second release of the same
// handle returns ErrReleased.
func (s *Store) Release(handle string) error {
	path, err := s.path(handle)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, done := s.released[handle]; done {
		s.mu.Unlock()
		return ErrReleased
	}
	if _, ok := s.live[handle]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.live, handle)
	s.released[handle] = struct{}{}
	s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	slog.Debug("Local blob released", "handle", handle)
	return nil
}

// Live reports the number of unreleased handles.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close releases every live handle.
func (s *Store) Close() error {
	s.mu.Lock()
	handles := make([]string, 0, len(s.live))
	for h := range s.live {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := s.Release(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) path(handle string) (string, error) {
	if _, err := uuid.Parse(handle); err != nil {
		return "", ErrInvalidHandle
	}
	return filepath.Join(s.basePath, handle), nil
}
