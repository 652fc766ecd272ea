package update

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/everyframe/internal/model"
	"github.com/sandeepkv93/everyframe/internal/tracker"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestModel(t *testing.T) (Model, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, time.March, 5, 9, 0, 0, 0, time.Local)}
	m := NewModelWithConfig(tracker.NewStore(), RuntimeConfig{Now: clock.Now})
	return m, clock
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(nil)
	if m.Store == nil || m.Store.Len() != 0 {
		t.Fatal("expected an empty store")
	}
	if m.Add.Cadence != model.CadenceDaily {
		t.Fatalf("expected daily default cadence, got %q", m.Add.Cadence)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.tickInterval != DefaultTickInterval {
		t.Fatalf("expected default tick interval, got %s", m.tickInterval)
	}
}

func TestInitSchedulesTick(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Init() == nil {
		t.Fatal("expected init to schedule a refresh tick")
	}
	_, cmd := m.Update(TickMsg{At: time.Now()})
	if cmd == nil {
		t.Fatal("expected tick to reschedule itself")
	}
}

func TestAddTaskThroughInput(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, runes("a"), runes("stretch"), tea.KeyMsg{Type: tea.KeyEnter})

	if m.Add.Active {
		t.Fatal("expected add mode to close after enter")
	}
	task, ok := m.Store.Get(0)
	if !ok {
		t.Fatal("expected task 0 to exist")
	}
	if task.Name != "stretch" || task.Period != model.Daily(5) {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestTabFlipsCadence(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Add.Cadence != model.CadenceWeekly {
		t.Fatalf("expected weekly after tab, got %q", m.Add.Cadence)
	}

	m = send(t, m, runes("a"), tea.KeyMsg{Type: tea.KeyTab}, runes("laundry"), tea.KeyMsg{Type: tea.KeyEnter})
	task, ok := m.Store.Get(0)
	if !ok || task.Period.Cadence() != model.CadenceDaily {
		t.Fatalf("expected tab inside add mode to flip back to daily, got %+v", task)
	}
}

func TestAddModeSwallowsCommandKeys(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(runes("a"))
	m = updated.(Model)
	updated, cmd = m.Update(runes("q"))
	m = updated.(Model)
	if cmd != nil || m.Quitting {
		t.Fatal("q while typing a name must not quit")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Add.Active || m.Store.Len() != 0 {
		t.Fatal("esc should cancel the add without inserting")
	}
}

func TestToggleAndRemoveSelected(t *testing.T) {
	m, _ := newTestModel(t)
	m.Store.Insert("water plants", model.CadenceWeekly, m.now())
	m.Store.Insert("read", model.CadenceDaily, m.now())

	// daily rows render first, so the cursor starts on #1
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if task, _ := m.Store.Get(1); !task.Done {
		t.Fatal("expected #1 done after space")
	}

	m = send(t, m, runes("j"), runes("x"))
	if _, ok := m.Store.Get(0); ok {
		t.Fatal("expected #0 removed")
	}
	if m.Cursor != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", m.Cursor)
	}
}

func TestKeysOnEmptyStoreReportError(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.Status.IsError {
		t.Fatal("expected error status toggling with no tasks")
	}
	m = send(t, m, runes("k"), runes("j"))
	if m.Cursor != 0 {
		t.Fatalf("expected cursor pinned at 0, got %d", m.Cursor)
	}
}

func TestUpdateRefreshesBeforeHandling(t *testing.T) {
	m, clock := newTestModel(t)
	id := m.Store.Insert("stretch", model.CadenceDaily, clock.now)
	m.Store.ToggleDone(id)

	m = send(t, m, TickMsg{At: clock.now})
	if task, _ := m.Store.Get(id); !task.Done {
		t.Fatal("task should stay done within the same day")
	}

	clock.now = clock.now.AddDate(0, 0, 1)
	m = send(t, m, TickMsg{At: clock.now})
	task, _ := m.Store.Get(id)
	if task.Done || task.Period != model.Daily(6) {
		t.Fatalf("expected rollover to Daily(6) open, got %+v", task)
	}
}

func TestPaletteCommands(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, runes("/"))
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}
	m = send(t, m, runes("add weekly take out bins"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.Palette.Active || m.Status.IsError {
		t.Fatalf("unexpected palette state: %+v status=%+v", m.Palette, m.Status)
	}
	task, ok := m.Store.Get(0)
	if !ok || task.Name != "take out bins" || task.Period.Cadence() != model.CadenceWeekly {
		t.Fatalf("unexpected task from palette: %+v", task)
	}

	m = send(t, m, runes("/"), runes("done 0"), tea.KeyMsg{Type: tea.KeyEnter})
	if task, _ := m.Store.Get(0); !task.Done {
		t.Fatal("expected palette done to toggle")
	}

	m = send(t, m, runes("/"), runes("rm 7"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task #7") {
		t.Fatalf("expected missing task error, got %+v", m.Status)
	}

	m = send(t, m, runes("/"), runes("bogus"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Status.IsError || m.Palette.Active {
		t.Fatalf("expected parse error and closed palette, got %+v", m.Status)
	}
}

func TestPaletteEscCloses(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, runes("/"), runes("add"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Palette.Input != "" {
		t.Fatalf("expected closed palette, got %+v", m.Palette)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = send(t, m, AppErrorMsg{Err: errors.New("disk full")})
	if m.LastError == nil || !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	m = send(t, m, ClearStatusMsg{})
	if m.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", m.Status)
	}
}

func TestAddTaskMsg(t *testing.T) {
	m, _ := newTestModel(t)
	m = send(t, m, AddTaskMsg{Name: "vacuum", Cadence: model.CadenceWeekly})
	task, ok := m.Store.Get(0)
	if !ok || task.Period != model.Weekly(10) {
		t.Fatalf("expected Weekly(10) task, got %+v", task)
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(runes("q"))
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected q to quit")
	}
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected ctrl+c to quit")
	}
}

func TestViewRendersColumns(t *testing.T) {
	m, _ := newTestModel(t)
	m.Store.Insert("read", model.CadenceDaily, m.now())
	m.Store.Insert("laundry", model.CadenceWeekly, m.now())
	m.Store.ToggleDone(1)

	out := m.View()
	for _, want := range []string{"daily:", "weekly:", "#0 read [D]", "[x] #1", "laundry [W]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}

	m = send(t, m, runes("?"))
	if !strings.Contains(m.View(), "toggle done") {
		t.Fatal("expected help panel in view")
	}
}
