package update

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/everyframe/internal/model"
	"github.com/sandeepkv93/everyframe/internal/tracker"
)

const DefaultTickInterval = time.Second

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Up      string
	Down    string
	Toggle  string
	Remove  string
	Add     string
	Cadence string
	Palette string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type AddState struct {
	Active  bool
	Cadence model.Cadence
}

type RuntimeConfig struct {
	TickInterval time.Duration
	Now          func() time.Time
	Logger       *log.Logger
}

type Model struct {
	Store       *tracker.Store
	Cursor      int
	Add         AddState
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error
	LastRefresh time.Time

	tickInterval time.Duration
	now          func() time.Time
	logger       *log.Logger
	addInput     textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
}

func DefaultKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Up:      "k",
		Down:    "j",
		Toggle:  " ",
		Remove:  "x",
		Add:     "a",
		Cadence: "tab",
		Palette: "/",
		Help:    "?",
		Quit:    "q",
	}
}

func NewModel(store *tracker.Store) Model {
	return NewModelWithConfig(store, RuntimeConfig{})
}

func NewModelWithConfig(store *tracker.Store, cfg RuntimeConfig) Model {
	if store == nil {
		store = tracker.NewStore()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	m := Model{
		Store:        store,
		Add:          AddState{Cadence: model.CadenceDaily},
		Keys:         DefaultKeyMap(),
		Status:       StatusBar{Text: "ready"},
		tickInterval: cfg.TickInterval,
		now:          cfg.Now,
		logger:       cfg.Logger,
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "name> "
	m.addInput.Placeholder = model.DefaultTaskName
	m.addInput.CharLimit = 120
	m.addInput.Width = 60

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 160
	m.commandInput.Width = 60

	m.helpModel = help.New()
}

// rows lists tasks in display order: the daily column first, then weekly,
// each ordered by id.
func (m Model) rows() []tracker.Entry {
	var daily, weekly []tracker.Entry
	for id, task := range m.Store.All() {
		entry := tracker.Entry{ID: id, Task: task}
		if task.Period.IsDaily() {
			daily = append(daily, entry)
		} else {
			weekly = append(weekly, entry)
		}
	}
	return append(daily, weekly...)
}

func (m Model) selectedID() (uint64, bool) {
	rows := m.rows()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return 0, false
	}
	return rows[m.Cursor].ID, true
}

func (m *Model) clampCursor() {
	n := m.Store.Len()
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
