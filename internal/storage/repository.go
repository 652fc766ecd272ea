// Package storage persists tracker snapshots between runs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/everyframe/internal/tracker"
)

var (
	ErrCorrupt        = errors.New("storage: corrupt snapshot")
	ErrUnknownBackend = errors.New("storage: unknown backend")
	ErrOutOfRange     = errors.New("storage: value out of range")
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Repository loads the store snapshot once at startup and saves it at
// shutdown. Load on a fresh location returns an empty snapshot.
type Repository interface {
	Load(ctx context.Context) (tracker.Snapshot, error)
	Save(ctx context.Context, snap tracker.Snapshot) error
	Close() error
}

func Open(backend, path string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendSQLite, "":
		repo, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		if err := MigrateUp(repo.db); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return repo, nil
	case BackendJSON:
		return NewJSONRepository(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func emptySnapshot() tracker.Snapshot {
	return tracker.Snapshot{Tasks: make([]tracker.SnapshotEntry, 0)}
}
