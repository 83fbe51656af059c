package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"articledesk/internal/domain"
)

// DiskFileStore writes uploads below Dir.
type DiskFileStore struct {
	Dir string
}

// Save streams r into Dir/name. Files larger than limit are removed and
// reported as a validation error.
func (s DiskFileStore) Save(name string, r io.Reader, limit int64) (string, int64, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > limit {
		err = domain.ValidationError{Field: "file", Msg: fmt.Sprintf("file exceeds %d bytes", limit)}
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}

func (s DiskFileStore) Stat(path string) (int64, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, domain.NotFoundError{Resource: "file", Err: err}
	}
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (s DiskFileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
