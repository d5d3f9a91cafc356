package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// Snapshot is the persisted state of a run: the population and the next free
// innovation id, plus the generation number for bookkeeping.
type Snapshot struct {
	Genomes        []*Genome
	NextInnovation uint64
	Generation     int
}

// Validate checks every genome in the snapshot against the expected shape
// and verifies that no genome uses an innovation id at or beyond NextInnovation.
func (s *Snapshot) Validate(gc *GenomeConfig) error {
	if len(s.Genomes) == 0 {
		return ErrEmptyPopulation
	}
	for i, g := range s.Genomes {
		if g == nil {
			return fmt.Errorf("genome %d is nil", i)
		}
		if g.NumInputs != gc.NumInputs || g.NumOutputs != gc.NumOutputs {
			return fmt.Errorf("genome %d has shape %d/%d, config expects %d/%d",
				i, g.NumInputs, g.NumOutputs, gc.NumInputs, gc.NumOutputs)
		}
		if len(g.Connections) > 0 && g.MaxInnovation() >= s.NextInnovation {
			return fmt.Errorf("genome %d uses innovation id %d, next id is %d", i, g.MaxInnovation(), s.NextInnovation)
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("genome %d: %w", i, err)
		}
	}
	return nil
}

// EncodeSnapshot writes a gzip compressed gob encoding of the snapshot.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	gzWriter := gzip.NewWriter(w)
	if err := gob.NewEncoder(gzWriter).Encode(s); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for snapshot: %w", err)
	}
	defer gzReader.Close()

	s := &Snapshot{}
	if err := gob.NewDecoder(gzReader).Decode(s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	for _, g := range s.Genomes {
		if g != nil && g.Connections == nil {
			// gob drops empty maps.
			g.Connections = make(map[uint64]Connection)
		}
	}
	return s, nil
}

// SaveCheckpoint saves the snapshot to a file.
func SaveCheckpoint(filePath string, s *Snapshot) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	if err := EncodeSnapshot(file, s); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint file '%s': %w", filePath, err)
	}
	return nil
}

// LoadCheckpoint loads a snapshot from a file.
func LoadCheckpoint(filePath string) (*Snapshot, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	s, err := DecodeSnapshot(file)
	if err != nil {
		return nil, fmt.Errorf("checkpoint '%s': %w", filePath, err)
	}
	return s, nil
}
