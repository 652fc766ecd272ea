package update

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/everyframe/internal/model"
)

func (m *Model) refresh() {
	now := m.now()
	if rolled := m.Store.Refresh(now); rolled > 0 {
		m.logger.Debug("tasks rolled over", "count", rolled, "at", now.Format("2006-01-02"))
	}
	m.LastRefresh = now
}

func (m *Model) addTask(name string, cadence model.Cadence) uint64 {
	name = strings.TrimSpace(name)
	id := m.Store.Insert(name, cadence, m.now())
	m.logger.Debug("task added", "id", id, "cadence", cadence)
	return id
}

func (m *Model) toggleSelected() {
	id, ok := m.selectedID()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	m.Store.ToggleDone(id)
	task, _ := m.Store.Get(id)
	state := "open"
	if task.Done {
		state = "done"
	}
	m.Status = StatusBar{Text: fmt.Sprintf("#%d %s", id, state)}
}

func (m *Model) removeSelected() {
	id, ok := m.selectedID()
	if !ok {
		m.Status = StatusBar{Text: "no task selected", IsError: true}
		return
	}
	m.Store.Remove(id)
	m.clampCursor()
	m.Status = StatusBar{Text: fmt.Sprintf("removed #%d", id)}
	m.logger.Debug("task removed", "id", id)
}

func (m *Model) moveCursor(delta int) {
	m.Cursor += delta
	m.clampCursor()
}

func (m *Model) flipCadence() {
	if m.Add.Cadence == model.CadenceDaily {
		m.Add.Cadence = model.CadenceWeekly
	} else {
		m.Add.Cadence = model.CadenceDaily
	}
}
