package uploads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Open for names that are invalid, missing, not
// regular files, or not images.
var ErrNotFound = errors.New("file not found")

// Store is a flat directory of uploaded files.
type Store struct {
	dir string
}

// NewStore creates dir if needed and returns a Store rooted at it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload dir is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes r to name. The data goes to a temporary file in the same
// directory which is synced and then renamed over name, so readers see
// either the old file or the complete new one.
func (s *Store) Save(name string, r io.Reader) (err error) {
	if !ValidStoredName(name) {
		return ErrInvalidName
	}

	tmpPath := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync upload: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close upload: %w", err)
	}
	if err = os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to move upload into place: %w", err)
	}
	return nil
}

// Remove deletes name. A missing file is not an error.
func (s *Store) Remove(name string) error {
	if !ValidStoredName(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Open opens a stored image for reading. The open is confined to the store
// directory with os.OpenInRoot, so neither ".." nor a symlink can reach
// outside it. The returned file is positioned at offset 0.
func (s *Store) Open(name string) (*os.File, fs.FileInfo, string, error) {
	if !ValidStoredName(name) {
		return nil, nil, "", ErrNotFound
	}

	f, err := os.OpenInRoot(s.dir, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, "", ErrNotFound
		}
		return nil, nil, "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, "", ErrNotFound
	}

	contentType, ok, err := DetectImageReader(f)
	if err != nil || !ok {
		f.Close()
		return nil, nil, "", ErrNotFound
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, "", fmt.Errorf("failed to rewind: %w", err)
	}
	return f, info, contentType, nil
}
