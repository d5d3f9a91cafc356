// Package storage persists population snapshots keyed by run id.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/baldhumanity/neat-racer/neat"
)

// Store persists the snapshot of a run between generations.
type Store interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, runID string, snap *neat.Snapshot) error
	// LoadSnapshot returns found == false, and no error, if runID has no snapshot.
	LoadSnapshot(ctx context.Context, runID string) (*neat.Snapshot, bool, error)
	Close() error
}

// NewRunID returns a fresh random run id.
func NewRunID() string {
	return uuid.NewString()
}
