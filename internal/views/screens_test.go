package views

import (
	"strings"
	"testing"
)

func TestRenderColumnEmpty(t *testing.T) {
	out := RenderColumn(ColumnData{Title: "daily"})
	if !strings.Contains(out, "daily:") || !strings.Contains(out, "(none)") {
		t.Fatalf("unexpected empty column: %q", out)
	}
}

func TestRenderColumnRows(t *testing.T) {
	out := RenderColumn(ColumnData{Title: "weekly", Rows: []TaskRowData{
		{ID: 1, Label: "laundry [W]"},
		{ID: 4, Label: "groceries [W]", Done: true, Selected: true},
	}})
	if !strings.Contains(out, "[ ] #1 laundry [W]") {
		t.Fatalf("missing open row: %q", out)
	}
	if !strings.Contains(out, "> [x] #4") || !strings.Contains(out, "groceries [W]") {
		t.Fatalf("missing selected done row: %q", out)
	}
}

func TestRenderTaskLine(t *testing.T) {
	if got := RenderTaskLine(TaskRowData{ID: 2, Label: "read [D]", Done: true}); got != "[x] #2 read [D]" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestRenderAppIncludesPanes(t *testing.T) {
	out := RenderApp(AppData{
		Header:     "everyframe",
		LeftPane:   "left-pane",
		RightPane:  "right-pane",
		BottomPane: "bottom-pane",
		StatusLine: "status: ok",
		Footer:     "keys",
	})
	for _, want := range []string{"everyframe", "left-pane", "right-pane", "bottom-pane", "status: ok", "keys"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderAddPanel(t *testing.T) {
	if out := RenderAddPanel(AddPanelData{Cadence: "daily"}); !strings.Contains(out, "next task: daily") {
		t.Fatalf("unexpected idle add panel: %q", out)
	}
	if out := RenderAddPanel(AddPanelData{Active: true, Cadence: "weekly", InputView: "name> x"}); !strings.Contains(out, "new weekly task") || !strings.Contains(out, "name> x") {
		t.Fatalf("unexpected active add panel: %q", out)
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	if RenderMarkdown("  ") != "" {
		t.Fatal("expected empty markdown render")
	}
	if !strings.Contains(RenderMarkdown("**keys**"), "keys") {
		t.Fatal("expected markdown content to survive rendering")
	}
}
