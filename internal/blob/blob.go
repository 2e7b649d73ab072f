// Package blob stores uploaded workplace files on the local filesystem,
// one directory per workplace.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/workplane-dev/workplane/internal/models"
)

type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// path resolves name under the store root and refuses anything that
// escapes it.
func (s *LocalStore) path(name, op string) (string, error) {
	path, err := filepath.Abs(filepath.Join(s.root, name))
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(path, s.root) {
		return "", &os.PathError{
			Op:   op,
			Path: name,
			Err:  syscall.EACCES,
		}
	}

	return path, nil
}

// Save streams r into the workplace directory and returns the name the
// file was stored under. Any directory components in filename are
// stripped first.
func (s *LocalStore) Save(workplaceID models.WorkplaceID, filename string, r io.Reader) (string, error) {
	filename = filepath.Base(filename)
	if filename == "." || filename == ".." || filename == string(filepath.Separator) {
		return "", &os.PathError{Op: "save", Path: filename, Err: syscall.EINVAL}
	}

	dir, err := s.path(workplaceID.String(), "save")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workplace directory: %w", err)
	}

	path, err := s.path(filepath.Join(workplaceID.String(), filename), "save")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return filename, nil
}

// Path returns the on-disk location of a stored file so the caller can
// serve it directly. Missing files surface as fs.ErrNotExist.
func (s *LocalStore) Path(workplaceID models.WorkplaceID, filename string) (string, error) {
	path, err := s.path(filepath.Join(workplaceID.String(), filepath.Base(filename)), "open")
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", &os.PathError{Op: "open", Path: filename, Err: syscall.EISDIR}
	}

	return path, nil
}

// RemoveAll deletes every file stored for a workplace.
func (s *LocalStore) RemoveAll(workplaceID models.WorkplaceID) error {
	dir, err := s.path(workplaceID.String(), "remove")
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}
