package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Section is one block of modal content.
type Section interface {
	// Render draws the section at contentWidth and reports its focusable
	// regions relative to the section's top-left corner.
	Render(contentWidth int, focusID string) RenderedSection
	// Update handles a message while focusID has focus and returns an
	// action ID when the message triggers one.
	Update(msg tea.Msg, focusID string) (string, tea.Cmd)
}

// RenderedSection is the output of Section.Render.
type RenderedSection struct {
	Content    string
	Focusables []FocusableInfo
}

// FocusableInfo describes a focusable region within a rendered section.
type FocusableInfo struct {
	ID      string
	OffsetX int
	OffsetY int
	Width   int
	Height  int
}

// Variant selects the modal's accent color.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDanger
	VariantWarning
	VariantInfo
)

func (v Variant) color() lipgloss.Color {
	switch v {
	case VariantDanger:
		return Error
	case VariantWarning:
		return Warning
	case VariantInfo:
		return Info
	default:
		return Primary
	}
}

// Action IDs returned by HandleKey for built-in keys.
const (
	ActionCancel = "cancel"
)

// Modal is a declarative dialog: a title, a stack of sections and keyboard
// focus across their focusable regions.
type Modal struct {
	title         string
	width         int
	variant       Variant
	showHints     bool
	primaryAction string

	sections []Section
	focusIDs []string
	focusIdx int
}

// Option configures a Modal.
type Option func(*Modal)

// WithWidth sets the modal width (default: 50).
func WithWidth(w int) Option {
	return func(m *Modal) {
		if w > 0 {
			m.width = w
		}
	}
}

// WithVariant sets the visual style.
func WithVariant(v Variant) Option {
	return func(m *Modal) { m.variant = v }
}

// WithHints shows or hides the keyboard hints line.
func WithHints(show bool) Option {
	return func(m *Modal) { m.showHints = show }
}

// WithPrimaryAction sets the action returned by Enter when the focused
// section does not handle it.
func WithPrimaryAction(actionID string) Option {
	return func(m *Modal) { m.primaryAction = actionID }
}

// New creates a modal.
func New(title string, opts ...Option) *Modal {
	m := &Modal{
		title:     title,
		width:     50,
		showHints: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddSection appends a section and returns the modal for chaining.
func (m *Modal) AddSection(s Section) *Modal {
	m.sections = append(m.sections, s)
	return m
}

// Title returns the modal title.
func (m *Modal) Title() string {
	return m.title
}

// Width returns the modal width.
func (m *Modal) Width() int {
	return m.width
}

// FocusedID returns the ID of the focused region, or "".
func (m *Modal) FocusedID() string {
	m.measure()
	if len(m.focusIDs) == 0 {
		return ""
	}
	return m.focusIDs[m.focusIdx]
}

// SetFocus focuses the region with id, if present.
func (m *Modal) SetFocus(id string) {
	m.measure()
	for i, f := range m.focusIDs {
		if f == id {
			m.focusIdx = i
			return
		}
	}
}

func (m *Modal) contentWidth() int {
	// border (2) + horizontal padding (2)
	return max(1, m.width-4)
}

// measure renders every section to collect focusable IDs in order.
func (m *Modal) measure() []RenderedSection {
	focusID := ""
	if len(m.focusIDs) > 0 && m.focusIdx < len(m.focusIDs) {
		focusID = m.focusIDs[m.focusIdx]
	}
	rendered := make([]RenderedSection, len(m.sections))
	var ids []string
	for i, s := range m.sections {
		rendered[i] = s.Render(m.contentWidth(), focusID)
		for _, f := range rendered[i].Focusables {
			ids = append(ids, f.ID)
		}
	}
	m.focusIDs = ids
	m.focusIdx = clamp(m.focusIdx, 0, max(0, len(ids)-1))
	return rendered
}

// View renders the modal box.
func (m *Modal) View() string {
	rendered := m.measure()
	// Focus may have been clamped; render again so styles match.
	if len(rendered) > 0 {
		rendered = m.measure()
	}

	var parts []string
	parts = append(parts, ModalTitle.Foreground(m.variant.color()).Render(m.title), "")
	for _, r := range rendered {
		parts = append(parts, r.Content)
	}
	if m.showHints {
		parts = append(parts, "", MutedText.Render(m.hints()))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.variant.color()).
		Padding(0, 1).
		Width(m.width - 2)
	return box.Render(strings.Join(parts, "\n"))
}

// Render renders the modal centered in a screenW x screenH area.
func (m *Modal) Render(screenW, screenH int) string {
	return lipgloss.Place(screenW, screenH, lipgloss.Center, lipgloss.Center, m.View())
}

func (m *Modal) hints() string {
	if len(m.focusIDs) > 1 {
		return "tab next · enter select · esc close"
	}
	return "enter select · esc close"
}

// HandleKey processes a key press. It returns the triggered action ID, or ""
// when the key only moved focus or was consumed by a section.
func (m *Modal) HandleKey(msg tea.KeyMsg) (string, tea.Cmd) {
	m.measure()

	switch msg.String() {
	case "esc":
		return ActionCancel, nil
	case "tab":
		if len(m.focusIDs) > 0 {
			m.focusIdx = (m.focusIdx + 1) % len(m.focusIDs)
		}
		return "", nil
	case "shift+tab":
		if len(m.focusIDs) > 0 {
			m.focusIdx = (m.focusIdx - 1 + len(m.focusIDs)) % len(m.focusIDs)
		}
		return "", nil
	}

	focusID := m.FocusedID()
	var cmds []tea.Cmd
	for _, s := range m.sections {
		action, cmd := s.Update(msg, focusID)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if action != "" {
			return action, tea.Batch(cmds...)
		}
	}

	if msg.String() == "enter" && m.primaryAction != "" {
		return m.primaryAction, tea.Batch(cmds...)
	}
	return "", tea.Batch(cmds...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
