package qr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactStore keeps one PNG per roll number in a flat directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates dir if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if dir == "" {
		return nil, errors.New("qr: artifact dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("qr: create artifact dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

func (s *ArtifactStore) Dir() string { return s.dir }

// Path returns the file name used for rollNo.
func (s *ArtifactStore) Path(rollNo string) string {
	return filepath.Join(s.dir, rollNo+".png")
}

func validKey(rollNo string) error {
	if rollNo == "" || rollNo == "." || rollNo == ".." || strings.ContainsAny(rollNo, `/\`) {
		return fmt.Errorf("qr: invalid artifact key %q", rollNo)
	}
	return nil
}

// Write stores png for rollNo, replacing any existing file. The data goes
// to a temp file first and is renamed into place.
func (s *ArtifactStore) Write(rollNo string, png []byte) error {
	if err := validKey(rollNo); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*.png")
	if err != nil {
		return fmt.Errorf("qr: create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(png); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("qr: write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("qr: close artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("qr: chmod artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(rollNo)); err != nil {
		return fmt.Errorf("qr: rename artifact: %w", err)
	}
	return nil
}

// Remove deletes the artifact for rollNo. A missing file is not an error.
func (s *ArtifactStore) Remove(rollNo string) error {
	if err := validKey(rollNo); err != nil {
		return err
	}
	if err := os.Remove(s.Path(rollNo)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether an artifact file is present for rollNo.
func (s *ArtifactStore) Exists(rollNo string) bool {
	if validKey(rollNo) != nil {
		return false
	}
	_, err := os.Stat(s.Path(rollNo))
	return err == nil
}
