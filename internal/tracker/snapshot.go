package tracker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sandeepkv93/everyframe/internal/model"
)

var ErrCorruptSnapshot = errors.New("tracker: corrupt snapshot")

// Snapshot is the persisted form of a store.
type Snapshot struct {
	NextID uint64          `json:"next_id"`
	Tasks  []SnapshotEntry `json:"tasks"`
}

type SnapshotEntry struct {
	ID      uint64        `json:"id"`
	Name    string        `json:"name"`
	Done    bool          `json:"done"`
	Cadence model.Cadence `json:"cadence"`
	Marker  uint8         `json:"marker"`
}

func (s *Store) Snapshot() Snapshot {
	out := Snapshot{NextID: s.nextID, Tasks: make([]SnapshotEntry, 0, len(s.ids))}
	for id, task := range s.All() {
		out.Tasks = append(out.Tasks, SnapshotEntry{
			ID:      id,
			Name:    task.Name,
			Done:    task.Done,
			Cadence: task.Period.Cadence(),
			Marker:  task.Period.Marker(),
		})
	}
	return out
}

// Restore rebuilds a store from a snapshot. Entries may arrive in any order.
// A snapshot that breaks the store invariants is rejected with
// ErrCorruptSnapshot rather than repaired.
func Restore(snap Snapshot) (*Store, error) {
	s := NewStore()
	s.nextID = snap.NextID
	for _, entry := range snap.Tasks {
		if entry.ID >= snap.NextID {
			return nil, fmt.Errorf("%w: task id %d not below next id %d", ErrCorruptSnapshot, entry.ID, snap.NextID)
		}
		if _, dup := s.tasks[entry.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %d", ErrCorruptSnapshot, entry.ID)
		}
		period, err := model.NewPeriod(entry.Cadence, entry.Marker)
		if err != nil {
			return nil, fmt.Errorf("%w: task %d: %w", ErrCorruptSnapshot, entry.ID, err)
		}
		task := model.Task{Name: entry.Name, Done: entry.Done, Period: period}
		s.tasks[entry.ID] = &task
		s.ids = append(s.ids, entry.ID)
	}
	slices.Sort(s.ids)
	return s, nil
}

// Reset replaces the store contents with snap in place. The id counter
// never moves backwards, so ids handed out since snap was taken stay
// retired.
func (s *Store) Reset(snap Snapshot) error {
	restored, err := Restore(snap)
	if err != nil {
		return err
	}
	restored.nextID = max(restored.nextID, s.nextID)
	*s = *restored
	return nil
}
