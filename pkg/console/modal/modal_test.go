package modal

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func confirmModal() *Modal {
	return New("Delete organization", WithVariant(VariantDanger)).
		AddSection(Text("Delete acme?")).
		AddSection(Spacer()).
		AddSection(Buttons(
			Btn(" Delete ", "delete", BtnDanger()),
			Btn(" Cancel ", "cancel"),
		))
}

func TestButtonsFocusCycle(t *testing.T) {
	m := confirmModal()

	if got := m.FocusedID(); got != "delete" {
		t.Fatalf("initial focus = %q, want delete", got)
	}

	m.HandleKey(key("tab"))
	if got := m.FocusedID(); got != "cancel" {
		t.Errorf("after tab focus = %q, want cancel", got)
	}

	m.HandleKey(key("tab"))
	if got := m.FocusedID(); got != "delete" {
		t.Errorf("tab should wrap, focus = %q", got)
	}

	m.HandleKey(key("shift+tab"))
	if got := m.FocusedID(); got != "cancel" {
		t.Errorf("shift+tab should wrap backwards, focus = %q", got)
	}
}

func TestEnterReturnsFocusedAction(t *testing.T) {
	m := confirmModal()
	action, _ := m.HandleKey(key("enter"))
	if action != "delete" {
		t.Errorf("action = %q, want delete", action)
	}
}

func TestEscCancels(t *testing.T) {
	m := confirmModal()
	action, _ := m.HandleKey(key("esc"))
	if action != ActionCancel {
		t.Errorf("action = %q, want %q", action, ActionCancel)
	}
}

func TestPrimaryAction(t *testing.T) {
	m := New("Info", WithPrimaryAction("close")).AddSection(Text("hello"))
	action, _ := m.HandleKey(key("enter"))
	if action != "close" {
		t.Errorf("action = %q, want close", action)
	}

	action, _ = m.HandleKey(key("x"))
	if action != "" {
		t.Errorf("unhandled key returned %q", action)
	}
}

func TestListSelection(t *testing.T) {
	selected := 0
	items := []ListItem{
		{ID: "acme", Label: "Acme"},
		{ID: "globex", Label: "Globex"},
		{ID: "initech", Label: "Initech"},
	}
	m := New("Switch organization").AddSection(List("orgs", items, &selected, WithMaxVisible(2)))

	m.HandleKey(key("down"))
	m.HandleKey(key("down"))
	m.HandleKey(key("down"))
	if selected != 2 {
		t.Fatalf("selected = %d, want 2 (clamped)", selected)
	}

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "more above") {
		t.Errorf("expected scroll indicator, got:\n%s", view)
	}

	action, _ := m.HandleKey(key("enter"))
	if action != "initech" {
		t.Errorf("action = %q, want initech", action)
	}
}

func TestWhenHidesSection(t *testing.T) {
	show := false
	m := New("Checkout").
		AddSection(When(func() bool { return show }, Buttons(Btn(" Copy ", "copy")))).
		AddSection(Buttons(Btn(" Close ", "close")))

	if got := m.FocusedID(); got != "close" {
		t.Errorf("hidden section should not be focusable, focus = %q", got)
	}

	show = true
	m.SetFocus("copy")
	if got := m.FocusedID(); got != "copy" {
		t.Errorf("focus = %q, want copy", got)
	}
}

func TestViewContainsTitleAndText(t *testing.T) {
	view := ansi.Strip(confirmModal().View())
	for _, want := range []string{"Delete organization", "Delete acme?", "Delete", "Cancel", "esc close"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRenderCentersInScreen(t *testing.T) {
	out := confirmModal().Render(100, 30)
	lines := strings.Split(out, "\n")
	if len(lines) != 30 {
		t.Errorf("rendered %d lines, want 30", len(lines))
	}
}

func TestKeyValueSkipsEmpty(t *testing.T) {
	m := New("Org", WithHints(false)).AddSection(KeyValue(
		[2]string{"Domain", "acme.io"},
		[2]string{"Sector", ""},
	))
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "acme.io") {
		t.Errorf("missing value:\n%s", view)
	}
	if strings.Contains(view, "Sector") {
		t.Errorf("empty value should be skipped:\n%s", view)
	}
}

func TestListFilter(t *testing.T) {
	selected := 0
	items := []ListItem{
		{ID: "acme", Label: "Acme", Detail: "acme.io", Current: true},
		{ID: "globex", Label: "Globex", Detail: "globex.com"},
		{ID: "initech", Label: "Initech", Detail: "initech.com"},
	}
	m := New("Switch organization").AddSection(List("orgs", items, &selected, WithFilter()))

	for _, r := range "glx" {
		m.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "filter: glx") || strings.Contains(view, "Initech") {
		t.Errorf("filtered view:\n%s", view)
	}
	if selected != 1 {
		t.Errorf("selected = %d, want 1 (globex)", selected)
	}
	if action, _ := m.HandleKey(key("enter")); action != "globex" {
		t.Errorf("action = %q, want globex", action)
	}

	// Clearing the filter keeps the selection.
	for range 3 {
		m.HandleKey(key("backspace"))
	}
	view = ansi.Strip(m.View())
	if !strings.Contains(view, "Initech") || !strings.Contains(view, "type to filter") {
		t.Errorf("unfiltered view:\n%s", view)
	}
	if selected != 1 {
		t.Errorf("selected = %d after clearing, want 1", selected)
	}
}

func TestListNoMatches(t *testing.T) {
	selected := 0
	m := New("Pick").AddSection(List("orgs", []ListItem{{ID: "acme", Label: "Acme"}}, &selected, WithFilter()))
	for _, r := range "zzz" {
		m.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "(no matches)") {
		t.Errorf("view:\n%s", view)
	}
	if action, _ := m.HandleKey(key("enter")); action != "" {
		t.Errorf("enter with no matches returned %q", action)
	}
}
