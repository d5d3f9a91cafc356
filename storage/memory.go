package storage

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/baldhumanity/neat-racer/neat"
)

// MemoryStore keeps encoded snapshots in memory. Snapshots are stored encoded
// so callers cannot mutate a saved population through shared pointers.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshots == nil {
		s.snapshots = make(map[string][]byte)
	}
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, runID string, snap *neat.Snapshot) error {
	var buf bytes.Buffer
	if err := neat.EncodeSnapshot(&buf, snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshots == nil {
		return errors.New("store is not initialized")
	}
	s.snapshots[runID] = buf.Bytes()
	return nil
}

func (s *MemoryStore) LoadSnapshot(_ context.Context, runID string) (*neat.Snapshot, bool, error) {
	s.mu.RLock()
	payload, ok := s.snapshots[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	snap, err := neat.DecodeSnapshot(bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
