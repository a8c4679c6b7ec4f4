package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type textSection struct {
	text string
}

// Text creates a static, word-wrapped text section.
func Text(s string) Section {
	return textSection{text: s}
}

func (s textSection) Render(contentWidth int, focusID string) RenderedSection {
	return RenderedSection{Content: Body.Width(contentWidth).Render(s.text)}
}

func (s textSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

type spacerSection struct{}

// Spacer creates a blank line.
func Spacer() Section {
	return spacerSection{}
}

func (spacerSection) Render(int, string) RenderedSection {
	return RenderedSection{Content: ""}
}

func (spacerSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

// ButtonDef defines one button in a Buttons row.
type ButtonDef struct {
	Label  string
	Action string
	Danger bool
}

// BtnOption configures a ButtonDef.
type BtnOption func(*ButtonDef)

// BtnDanger styles the button as destructive.
func BtnDanger() BtnOption {
	return func(b *ButtonDef) { b.Danger = true }
}

// Btn defines a button whose activation returns action.
func Btn(label, action string, opts ...BtnOption) ButtonDef {
	b := ButtonDef{Label: label, Action: action}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

type buttonsSection struct {
	buttons []ButtonDef
}

// Buttons creates a row of buttons. Each button is focusable; its ID is its action.
func Buttons(btns ...ButtonDef) Section {
	return buttonsSection{buttons: btns}
}

func (s buttonsSection) Render(contentWidth int, focusID string) RenderedSection {
	var rendered []string
	var focusables []FocusableInfo
	x := 0
	for i, b := range s.buttons {
		style := Button
		switch {
		case b.Action == focusID && b.Danger:
			style = ButtonDangerFocused
		case b.Action == focusID:
			style = ButtonFocused
		case b.Danger:
			style = ButtonDanger
		}
		label := style.Render(b.Label)
		w := lipgloss.Width(label)
		focusables = append(focusables, FocusableInfo{ID: b.Action, OffsetX: x, Width: w, Height: 1})
		rendered = append(rendered, label)
		x += w
		if i < len(s.buttons)-1 {
			rendered = append(rendered, "  ")
			x += 2
		}
	}
	return RenderedSection{
		Content:    lipgloss.JoinHorizontal(lipgloss.Top, rendered...),
		Focusables: focusables,
	}
}

func (s buttonsSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || (key.String() != "enter" && key.String() != " ") {
		return "", nil
	}
	for _, b := range s.buttons {
		if b.Action == focusID {
			return b.Action, nil
		}
	}
	return "", nil
}

type whenSection struct {
	cond    func() bool
	section Section
}

// When renders section only while cond returns true.
func When(cond func() bool, section Section) Section {
	return whenSection{cond: cond, section: section}
}

func (s whenSection) Render(contentWidth int, focusID string) RenderedSection {
	if !s.cond() {
		return RenderedSection{}
	}
	return s.section.Render(contentWidth, focusID)
}

func (s whenSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if !s.cond() {
		return "", nil
	}
	return s.section.Update(msg, focusID)
}

type customSection struct {
	render func(contentWidth int, focusID string) RenderedSection
	update func(msg tea.Msg, focusID string) (string, tea.Cmd)
}

// Custom wraps arbitrary render and update functions. update may be nil.
func Custom(
	renderFn func(contentWidth int, focusID string) RenderedSection,
	updateFn func(msg tea.Msg, focusID string) (string, tea.Cmd),
) Section {
	return customSection{render: renderFn, update: updateFn}
}

func (s customSection) Render(contentWidth int, focusID string) RenderedSection {
	return s.render(contentWidth, focusID)
}

func (s customSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if s.update == nil {
		return "", nil
	}
	return s.update(msg, focusID)
}

// KeyValue renders aligned "key: value" lines, skipping empty values.
func KeyValue(pairs ...[2]string) Section {
	return Custom(func(contentWidth int, _ string) RenderedSection {
		keyW := 0
		for _, p := range pairs {
			keyW = max(keyW, lipgloss.Width(p[0]))
		}
		var lines []string
		for _, p := range pairs {
			if p[1] == "" {
				continue
			}
			key := MutedText.Render(p[0] + strings.Repeat(" ", keyW-lipgloss.Width(p[0])))
			lines = append(lines, key+"  "+Body.Width(max(1, contentWidth-keyW-2)).Render(p[1]))
		}
		return RenderedSection{Content: strings.Join(lines, "\n")}
	}, nil)
}
