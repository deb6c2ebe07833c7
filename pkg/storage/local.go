package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotFound    = errors.New("file not found")
)

// PublicPrefix is the URL prefix under which stored images are served
const PublicPrefix = "/uploads"

// Local stores product images on disk. The ledger only ever keeps the
// returned public path, never the bytes.
type Local struct {
	dir string
}

func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (s *Local) Dir() string {
	return s.dir
}

// Save writes r under a fresh uuid name keeping the original extension
func (s *Local) Save(originalName string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String()
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" {
		name += ext
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path.Join(PublicPrefix, name), nil
}

// Delete removes a file previously returned by Save
func (s *Local) Delete(publicPath string) error {
	name, err := s.resolve(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

func (s *Local) resolve(publicPath string) (string, error) {
	if !strings.HasPrefix(publicPath, PublicPrefix+"/") {
		return "", ErrInvalidPath
	}
	base := strings.TrimPrefix(publicPath, PublicPrefix+"/")
	if base == "" || base != filepath.Base(base) || base == "." || base == ".." {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dir, base), nil
}
