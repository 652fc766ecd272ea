package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/everyframe/internal/model"
	"github.com/sandeepkv93/everyframe/internal/views"
)

type TickMsg struct {
	At time.Time
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type AddTaskMsg struct {
	Name    string
	Cadence model.Cadence
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg{At: t} })
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

// Update refreshes the store before handling every message so a rendered
// frame never shows a task completed in a previous period.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.refresh()

	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}
		if m.Add.Active {
			return m.handleAddKey(typed), nil
		}
		return m.handleKey(typed)
	case TickMsg:
		return m, tickCmd(m.tickInterval)
	case AddTaskMsg:
		id := m.addTask(typed.Name, typed.Cadence)
		m.Status = StatusBar{Text: fmt.Sprintf("added #%d", id)}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.logger.Error("app error", "err", typed.Err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Down, "down":
		m.moveCursor(1)
	case m.Keys.Up, "up":
		m.moveCursor(-1)
	case m.Keys.Toggle, "enter":
		m.toggleSelected()
	case m.Keys.Remove, "delete":
		m.removeSelected()
	case m.Keys.Add:
		m.Add.Active = true
		m.addInput.SetValue("")
		m.addInput.Focus()
		m.Status = StatusBar{Text: fmt.Sprintf("adding %s task", m.Add.Cadence)}
	case m.Keys.Cadence:
		m.flipCadence()
		m.Status = StatusBar{Text: fmt.Sprintf("next task: %s", m.Add.Cadence)}
	case m.Keys.Palette:
		m.openPalette()
		m.Status = StatusBar{Text: "command palette active"}
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Add.Active = false
		m.addInput.SetValue("")
		m.addInput.Blur()
		m.Status = StatusBar{Text: "add cancelled"}
	case "tab":
		m.flipCadence()
	case "enter":
		id := m.addTask(m.addInput.Value(), m.Add.Cadence)
		m.Add.Active = false
		m.addInput.SetValue("")
		m.addInput.Blur()
		m.Status = StatusBar{Text: fmt.Sprintf("added #%d %s", id, m.Add.Cadence)}
	default:
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		_ = cmd
	}
	return m
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var daily, weekly views.ColumnData
	daily.Title = "daily"
	weekly.Title = "weekly"
	for i, entry := range m.rows() {
		row := views.TaskRowData{
			ID:       entry.ID,
			Label:    entry.Task.Label(),
			Done:     entry.Task.Done,
			Selected: i == m.Cursor,
		}
		if entry.Task.Period.IsDaily() {
			daily.Rows = append(daily.Rows, row)
		} else {
			weekly.Rows = append(weekly.Rows, row)
		}
	}

	bottom := views.RenderAddPanel(views.AddPanelData{
		Active:    m.Add.Active,
		Cadence:   string(m.Add.Cadence),
		InputView: m.addInput.View(),
	})
	if m.Palette.Active {
		bottom = views.RenderCommandPalette(true, m.commandInput.View())
	}
	if help := m.renderHelpIfVisible(); help != "" {
		bottom = bottom + "\n\n" + help
	}

	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("everyframe  %d task(s)  %s", m.Store.Len(), m.LastRefresh.Format("Mon Jan 2")),
		LeftPane:   views.RenderColumn(daily),
		RightPane:  views.RenderColumn(weekly),
		BottomPane: bottom,
		StatusLine: status,
		StatusErr:  m.Status.IsError,
		Footer:     m.footerText(),
	})
}
