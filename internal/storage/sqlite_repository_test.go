package storage

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sandeepkv93/everyframe/internal/model"
	"github.com/sandeepkv93/everyframe/internal/tracker"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "everyframe-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func sampleStore(t *testing.T) *tracker.Store {
	t.Helper()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	s := tracker.NewStore()
	s.Insert("stretch", model.CadenceDaily, now)
	s.Insert("laundry", model.CadenceWeekly, now)
	s.Insert("removed", model.CadenceDaily, now)
	s.Insert("", model.CadenceWeekly, now)
	s.ToggleDone(1)
	s.Remove(2)
	return s
}

func TestSQLiteLoadEmpty(t *testing.T) {
	repo := setupRepo(t)
	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if snap.NextID != 0 || len(snap.Tasks) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	want := sampleStore(t).Snapshot()

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	restored, err := tracker.Restore(got)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.NextID() != 4 || restored.Len() != 3 {
		t.Fatalf("unexpected restored store: next=%d len=%d", restored.NextID(), restored.Len())
	}
}

func TestSQLiteSaveReplacesPreviousSnapshot(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	s := sampleStore(t)
	if err := repo.Save(ctx, s.Snapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	s.Remove(0)
	s.Remove(1)
	if err := repo.Save(ctx, s.Snapshot()); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != 3 || got.NextID != 4 {
		t.Fatalf("unexpected snapshot after replace: %+v", got)
	}
}

func TestSQLiteSaveRejectsInvalidRowAtomically(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	good := sampleStore(t).Snapshot()
	if err := repo.Save(ctx, good); err != nil {
		t.Fatalf("save good: %v", err)
	}

	bad := tracker.Snapshot{NextID: 9, Tasks: []tracker.SnapshotEntry{
		{ID: 1, Name: "ok", Cadence: model.CadenceDaily, Marker: 3},
		{ID: 2, Name: "bad", Cadence: "monthly", Marker: 3},
	}}
	if err := repo.Save(ctx, bad); err == nil {
		t.Fatal("expected constraint error")
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, good) {
		t.Fatalf("failed save left partial state: %+v", got)
	}
}

func TestOpenSQLiteBackendMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open.db")
	repo, err := Open(BackendSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := sampleStore(t).Snapshot()
	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(BackendSQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("reopened snapshot mismatch: %+v", got)
	}
}

func TestSQLiteSaveRejectsIDsBeyondInt64(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	if err := repo.Save(ctx, sampleStore(t).Snapshot()); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	huge := uint64(math.MaxInt64) + 1
	cases := []tracker.Snapshot{
		{NextID: huge, Tasks: []tracker.SnapshotEntry{}},
		{NextID: huge + 1, Tasks: []tracker.SnapshotEntry{{ID: huge, Cadence: model.CadenceDaily, Marker: 1}}},
	}
	for _, snap := range cases {
		if err := repo.Save(ctx, snap); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("next id %d: expected ErrOutOfRange, got %v", snap.NextID, err)
		}
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load after rejected saves: %v", err)
	}
	if got.NextID != 4 || len(got.Tasks) != 3 {
		t.Fatalf("rejected saves must leave the previous snapshot, got %+v", got)
	}

	edge := tracker.Snapshot{NextID: math.MaxInt64, Tasks: []tracker.SnapshotEntry{}}
	if err := repo.Save(ctx, edge); err != nil {
		t.Fatalf("max int64 next id should fit: %v", err)
	}
	if got, err := repo.Load(ctx); err != nil || got.NextID != math.MaxInt64 {
		t.Fatalf("round trip of max next id = %+v, %v", got, err)
	}
}
