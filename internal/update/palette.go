package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/everyframe/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m *Model) openPalette() {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.logger.Debug("palette command", "input", raw)

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.closePalette()
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			id := m.addTask(a.Name, a.Cadence)
			return commands.Result{Message: fmt.Sprintf("added #%d %s", id, a.Cadence)}, nil
		},
		Done: func(a commands.IDArgs) (commands.Result, error) {
			if _, ok := m.Store.Get(a.ID); !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task #%d", a.ID)}
			}
			m.Store.ToggleDone(a.ID)
			return commands.Result{Message: fmt.Sprintf("toggled #%d", a.ID)}, nil
		},
		Remove: func(a commands.IDArgs) (commands.Result, error) {
			if _, ok := m.Store.Get(a.ID); !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task #%d", a.ID)}
			}
			m.Store.Remove(a.ID)
			m.clampCursor()
			return commands.Result{Message: fmt.Sprintf("removed #%d", a.ID)}, nil
		},
		Refresh: func() (commands.Result, error) {
			rolled := m.Store.Refresh(m.now())
			return commands.Result{Message: fmt.Sprintf("refreshed %d task(s)", rolled)}, nil
		},
	})
	m.closePalette()
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	return m
}
