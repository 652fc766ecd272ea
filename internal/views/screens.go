package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	ID       uint64
	Label    string
	Done     bool
	Selected bool
}

type ColumnData struct {
	Title string
	Rows  []TaskRowData
}

type AddPanelData struct {
	Active    bool
	Cadence   string
	InputView string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderColumn(data ColumnData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	if len(data.Rows) == 0 {
		b.WriteString("  (none)")
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString(RenderTaskRow(row) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderTaskRow(row TaskRowData) string {
	cursor := " "
	if row.Selected {
		cursor = ">"
	}
	box := "[ ]"
	label := row.Label
	if row.Done {
		box = "[x]"
		label = doneStyle.Render(label)
	}
	line := fmt.Sprintf("%s %s #%d %s", cursor, box, row.ID, label)
	if row.Selected {
		return selectedStyle.Render(line)
	}
	return line
}

// RenderTaskLine is the plain form used by non-interactive output.
func RenderTaskLine(row TaskRowData) string {
	box := "[ ]"
	if row.Done {
		box = "[x]"
	}
	return fmt.Sprintf("%s #%d %s", box, row.ID, row.Label)
}

func RenderAddPanel(data AddPanelData) string {
	if !data.Active {
		return fmt.Sprintf("next task: %s ([a] add, [tab] switch)", data.Cadence)
	}
	return fmt.Sprintf("new %s task:\n%s\n[enter] add [tab] daily/weekly [esc] cancel", data.Cadence, data.InputView)
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command:\n" + inputView
}

func RenderHelpPanel(data HelpPanelData) string {
	md := "## keys\n\n" + strings.Join(data.Bindings, "\n")
	return strings.TrimSpace(RenderMarkdown(md) + "\n" + data.HelpView)
}
