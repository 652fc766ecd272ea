// Package tracker owns the recurring task store and its refresh pass.
package tracker

import (
	"iter"
	"slices"
	"time"

	"github.com/sandeepkv93/everyframe/internal/model"
)

// Store maps monotonically allocated ids to tasks and iterates them in id
// order. It is not safe for concurrent use; hosts serialize access.
type Store struct {
	tasks  map[uint64]*model.Task
	ids    []uint64
	nextID uint64
}

type Entry struct {
	ID   uint64
	Task model.Task
}

func NewStore() *Store {
	return &Store{tasks: make(map[uint64]*model.Task)}
}

// Insert adds a not-done task whose marker is seeded from now and returns
// its id.
func (s *Store) Insert(name string, cadence model.Cadence, now time.Time) uint64 {
	id := s.nextID
	s.nextID++
	task := model.NewTask(name, model.PeriodAt(cadence, now))
	s.tasks[id] = &task
	// ids only grow, so appending keeps the slice sorted.
	s.ids = append(s.ids, id)
	return id
}

func (s *Store) Remove(id uint64) {
	if _, ok := s.tasks[id]; !ok {
		return
	}
	delete(s.tasks, id)
	if i, found := slices.BinarySearch(s.ids, id); found {
		s.ids = slices.Delete(s.ids, i, i+1)
	}
}

func (s *Store) ToggleDone(id uint64) {
	if task, ok := s.tasks[id]; ok {
		task.Done = !task.Done
	}
}

func (s *Store) Get(id uint64) (model.Task, bool) {
	task, ok := s.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return *task, true
}

// All yields copies of the tasks in ascending id order.
func (s *Store) All() iter.Seq2[uint64, model.Task] {
	return func(yield func(uint64, model.Task) bool) {
		for _, id := range s.ids {
			if !yield(id, *s.tasks[id]) {
				return
			}
		}
	}
}

func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.ids))
	for id, task := range s.All() {
		out = append(out, Entry{ID: id, Task: task})
	}
	return out
}

func (s *Store) Len() int { return len(s.ids) }

func (s *Store) NextID() uint64 { return s.nextID }
