package storage

import "fmt"

// NewStore returns an uninitialised store of the given kind. path is the
// checkpoint directory for "file" and the database file for "sqlite".
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
