package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/everyframe/internal/model"
	"github.com/sandeepkv93/everyframe/internal/tracker"
)

const nextIDKey = "next_id"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Load(ctx context.Context) (tracker.Snapshot, error) {
	out := emptySnapshot()

	var nextID int64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, nextIDKey).Scan(&nextID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		nextID = 0
	case err != nil:
		return tracker.Snapshot{}, fmt.Errorf("load next id: %w", err)
	}
	if nextID < 0 {
		return tracker.Snapshot{}, fmt.Errorf("%w: negative next id %d", ErrCorrupt, nextID)
	}
	out.NextID = uint64(nextID)

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, done, cadence, marker FROM tasks ORDER BY id ASC`)
	if err != nil {
		return tracker.Snapshot{}, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return tracker.Snapshot{}, scanErr
		}
		out.Tasks = append(out.Tasks, entry)
	}
	if err := rows.Err(); err != nil {
		return tracker.Snapshot{}, err
	}
	return out, nil
}

// Save replaces the stored snapshot in a single transaction.
func (r *SQLiteRepository) Save(ctx context.Context, snap tracker.Snapshot) (err error) {
	if err := checkSQLiteRange(snap); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (id, name, done, cadence, marker) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, entry := range snap.Tasks {
		if _, err = stmt.ExecContext(ctx, int64(entry.ID), entry.Name, boolInt(entry.Done), string(entry.Cadence), int(entry.Marker)); err != nil {
			return fmt.Errorf("insert task %d: %w", entry.ID, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO store_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		nextIDKey, int64(snap.NextID),
	); err != nil {
		return fmt.Errorf("save next id: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// checkSQLiteRange rejects ids that do not fit sqlite's signed 64-bit
// INTEGER instead of letting them wrap negative.
func checkSQLiteRange(snap tracker.Snapshot) error {
	if snap.NextID > math.MaxInt64 {
		return fmt.Errorf("%w: next id %d exceeds sqlite integer range", ErrOutOfRange, snap.NextID)
	}
	for _, entry := range snap.Tasks {
		if entry.ID > math.MaxInt64 {
			return fmt.Errorf("%w: task id %d exceeds sqlite integer range", ErrOutOfRange, entry.ID)
		}
	}
	return nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (tracker.SnapshotEntry, error) {
	var (
		id      int64
		name    string
		done    int
		cadence string
		marker  int
	)
	if err := s.Scan(&id, &name, &done, &cadence, &marker); err != nil {
		return tracker.SnapshotEntry{}, err
	}
	if id < 0 || marker < 0 || marker > 255 {
		return tracker.SnapshotEntry{}, fmt.Errorf("%w: task row %d out of range", ErrCorrupt, id)
	}
	return tracker.SnapshotEntry{
		ID:      uint64(id),
		Name:    name,
		Done:    done == 1,
		Cadence: model.Cadence(cadence),
		Marker:  uint8(marker),
	}, nil
}
