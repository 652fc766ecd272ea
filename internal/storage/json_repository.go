package storage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sandeepkv93/everyframe/internal/tracker"
)

//go:embed snapshot.schema.json
var snapshotSchemaSource string

var snapshotSchema = jsonschema.MustCompileString("snapshot.schema.json", snapshotSchemaSource)

// JSONRepository keeps the snapshot in one JSON document. Writes go to a
// temp file that is synced and renamed over the target.
type JSONRepository struct {
	path string
}

func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{path: path}
}

func (r *JSONRepository) Path() string { return r.path }

func (r *JSONRepository) Close() error { return nil }

func (r *JSONRepository) Load(ctx context.Context) (tracker.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return tracker.Snapshot{}, err
	}
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptySnapshot(), nil
		}
		return tracker.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return emptySnapshot(), nil
	}
	return decodeSnapshot(raw)
}

func (r *JSONRepository) Save(ctx context.Context, snap tracker.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Tasks == nil {
		snap.Tasks = make([]tracker.SnapshotEntry, 0)
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeFileAtomic(r.path, append(payload, '\n'), 0o644)
}

func decodeSnapshot(raw []byte) (tracker.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return tracker.Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := snapshotSchema.Validate(doc); err != nil {
		return tracker.Snapshot{}, fmt.Errorf("%w: %s", ErrCorrupt, schemaErrorSummary(err))
	}

	var snap tracker.Snapshot
	strict := json.NewDecoder(bytes.NewReader(raw))
	strict.DisallowUnknownFields()
	if err := strict.Decode(&snap); err != nil {
		return tracker.Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := strict.Decode(&struct{}{}); err != io.EOF {
		return tracker.Snapshot{}, fmt.Errorf("%w: trailing content", ErrCorrupt)
	}
	if snap.Tasks == nil {
		snap.Tasks = make([]tracker.SnapshotEntry, 0)
	}
	return snap, nil
}

// schemaErrorSummary reports the first leaf cause, which names the offending
// location instead of the generic top-level message.
func schemaErrorSummary(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	location := ve.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, ve.Message)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
