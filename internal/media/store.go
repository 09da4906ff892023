package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store writes attachment content durably and returns an opaque locator.
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, locator string) error
}

var ErrOutsideStore = errors.New("locator is outside the upload directory")

// LocalStore keeps attachments in a directory on the local filesystem.
// Locators are the public path the directory is served under joined with
// the stored name, e.g. "public/uploads/<name>". They never reveal where
// the directory lives on disk.
type LocalStore struct {
	dir        string
	publicPath string
}

// NewLocalStore creates the upload directory if needed. publicPath is the
// slash path the directory is served under.
func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{
		dir:        filepath.Clean(dir),
		publicPath: CleanPublicPath(publicPath),
	}, nil
}

// CleanPublicPath normalizes a public path to slash form without leading or
// trailing slashes.
func CleanPublicPath(p string) string {
	p = path.Clean("/" + filepath.ToSlash(p))
	return strings.Trim(p, "/")
}

// Path resolves a locator to the file it names.
func (s *LocalStore) Path(locator string) (string, error) {
	dir, name := path.Split(locator)
	if strings.TrimSuffix(dir, "/") != s.publicPath || name == "" || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %s", ErrOutsideStore, locator)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *LocalStore) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("syncing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("closing %s: %w", dst, err)
	}

	return path.Join(s.publicPath, name), nil
}

func (s *LocalStore) Delete(ctx context.Context, locator string) error {
	p, err := s.Path(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
