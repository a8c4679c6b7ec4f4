package modal

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"
)

// ListItem is one selectable row. Enter on it returns ID as the action.
type ListItem struct {
	ID     string
	Label  string
	Detail string // muted text after the label
	// Current marks the item the user already has, e.g. the active organization.
	Current bool
}

// ListOption is a functional option for List sections.
type ListOption func(*listSection)

// WithMaxVisible sets the maximum number of visible items.
func WithMaxVisible(n int) ListOption {
	return func(s *listSection) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

// WithFilter lets the user narrow the list by typing. Matching is fuzzy
// over label, ID and detail, best match first.
func WithFilter() ListOption {
	return func(s *listSection) { s.filterable = true }
}

type listSection struct {
	id         string
	items      []ListItem
	selected   *int // index into items, shared with the caller
	maxVisible int
	offset     int
	filterable bool
	query      string
}

// List creates a list section. selected is the index of the highlighted item
// in items; the caller reads it back after the modal closes. A nil selected
// renders a read-only list.
func List(id string, items []ListItem, selected *int, opts ...ListOption) Section {
	s := &listSection{
		id:         id,
		items:      items,
		selected:   selected,
		maxVisible: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type itemSource []ListItem

func (s itemSource) String(i int) string {
	return s[i].Label + " " + s[i].ID + " " + s[i].Detail
}

func (s itemSource) Len() int { return len(s) }

// matches returns the indices of the items the query keeps, in display order.
func (s *listSection) matches() []int {
	q := strings.TrimSpace(s.query)
	out := make([]int, 0, len(s.items))
	if q == "" {
		for i := range s.items {
			out = append(out, i)
		}
		return out
	}
	for _, m := range fuzzy.FindFrom(q, itemSource(s.items)) {
		out = append(out, m.Index)
	}
	return out
}

// position returns where the selection sits in visible, moving it onto the
// first match when the filter hid it.
func (s *listSection) position(visible []int) int {
	if s.selected == nil || len(visible) == 0 {
		return -1
	}
	pos := slices.Index(visible, *s.selected)
	if pos < 0 {
		pos = 0
		*s.selected = visible[0]
	}
	return pos
}

func (s *listSection) Render(contentWidth int, focusID string) RenderedSection {
	visible := s.matches()
	pos := s.position(visible)
	focused := focusID == s.id

	var lines []string
	if s.filterable {
		if s.query == "" {
			lines = append(lines, MutedText.Render("type to filter"))
		} else {
			lines = append(lines, ListFilterPrompt.Render("filter: ")+s.query+"▏")
		}
	}
	if len(visible) == 0 {
		if len(s.items) == 0 {
			lines = append(lines, MutedText.Render("(no items)"))
		} else {
			lines = append(lines, MutedText.Render("(no matches)"))
		}
		return s.rendered(lines, contentWidth)
	}

	count := min(s.maxVisible, len(visible))
	if pos >= 0 {
		if pos < s.offset {
			s.offset = pos
		} else if pos >= s.offset+count {
			s.offset = pos - count + 1
		}
	}
	s.offset = clamp(s.offset, 0, len(visible)-count)

	if s.offset > 0 {
		lines = append(lines, MutedText.Render(fmt.Sprintf("↑ %d more above", s.offset)))
	}
	for i := s.offset; i < s.offset+count; i++ {
		lines = append(lines, s.renderItem(s.items[visible[i]], i == pos, focused, contentWidth))
	}
	if below := len(visible) - s.offset - count; below > 0 {
		lines = append(lines, MutedText.Render(fmt.Sprintf("↓ %d more below", below)))
	}
	return s.rendered(lines, contentWidth)
}

func (s *listSection) renderItem(item ListItem, selected, focused bool, width int) string {
	style := ListItemNormal
	switch {
	case selected && focused:
		style = ListItemFocused
	case selected:
		style = ListItemSelected
	}

	cursor := "  "
	if selected {
		cursor = ListCursor.Render("› ")
	}
	mark := "  "
	if item.Current {
		mark = ListCurrent.Render(" ●")
	}

	label := item.Label
	room := width - 4
	if item.Detail != "" {
		detailRoom := max(0, room-ansi.StringWidth(label)-2)
		if detailRoom > 3 {
			label += "  " + MutedText.Render(ansi.Truncate(item.Detail, detailRoom, "…"))
		}
	}
	return cursor + style.Render(ansi.Truncate(label, max(1, room), "…")) + mark
}

// rendered registers the whole list as a single focusable so Tab moves to
// the next section rather than through the items.
func (s *listSection) rendered(lines []string, width int) RenderedSection {
	return RenderedSection{
		Content: strings.Join(lines, "\n"),
		Focusables: []FocusableInfo{{
			ID:     s.id,
			Width:  width,
			Height: len(lines),
		}},
	}
}

func (s *listSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || focusID != s.id || s.selected == nil {
		return "", nil
	}

	visible := s.matches()
	pos := s.position(visible)

	switch key.String() {
	case "up", "ctrl+p":
		pos--
	case "down", "ctrl+n":
		pos++
	case "home":
		pos = 0
	case "end":
		pos = len(visible) - 1
	case "enter":
		if pos >= 0 {
			return s.items[visible[pos]].ID, nil
		}
		return "", nil
	case "backspace":
		if !s.filterable || s.query == "" {
			return "", nil
		}
		r := []rune(s.query)
		s.query = string(r[:len(r)-1])
		s.position(s.matches())
		return "", nil
	case "ctrl+u":
		s.query = ""
		return "", nil
	case "k", "j":
		if !s.filterable {
			if key.String() == "k" {
				pos--
			} else {
				pos++
			}
			break
		}
		fallthrough
	default:
		if s.filterable && key.Type == tea.KeyRunes {
			s.query += string(key.Runes)
			s.offset = 0
			s.position(s.matches())
		}
		return "", nil
	}

	if len(visible) > 0 {
		*s.selected = visible[clamp(pos, 0, len(visible)-1)]
	}
	return "", nil
}
