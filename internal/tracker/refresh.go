package tracker

import "time"

// Refresh runs one recurrence pass: every task whose period marker is behind
// now is reset to not done and its marker moved to now's period. Calling it
// again within the same period changes nothing. It returns how many tasks
// rolled over.
func (s *Store) Refresh(now time.Time) int {
	rolled := 0
	for _, id := range s.ids {
		if s.tasks[id].Refresh(now) {
			rolled++
		}
	}
	return rolled
}
