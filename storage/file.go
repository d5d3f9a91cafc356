package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/baldhumanity/neat-racer/neat"
)

// FileStore writes one gzip compressed gob checkpoint per run into a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Init(_ context.Context) error {
	if s.dir == "" {
		return errors.New("checkpoint directory is required")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}
	return nil
}

// Path returns the checkpoint file used for runID.
func (s *FileStore) Path(runID string) string {
	return filepath.Join(s.dir, runID+".gob.gz")
}

// SaveSnapshot writes to a temporary file first so a crash never leaves a
// truncated checkpoint behind.
func (s *FileStore) SaveSnapshot(_ context.Context, runID string, snap *neat.Snapshot) error {
	path := s.Path(runID)
	tmp := path + ".tmp"
	if err := neat.SaveCheckpoint(tmp, snap); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing checkpoint %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) LoadSnapshot(_ context.Context, runID string) (*neat.Snapshot, bool, error) {
	path := s.Path(runID)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	snap, err := neat.LoadCheckpoint(path)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (s *FileStore) Close() error {
	return nil
}
