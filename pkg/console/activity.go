package console

import (
	"fmt"
	"strings"

	"github.com/marcus/bastion/internal/output"
)

// renderActivity draws the local activity feed, newest first.
func (m Model) renderActivity(height int) string {
	if m.Activity == nil {
		return mutedStyle.Render("Activity log is not available.")
	}
	if len(m.ActivityItems) == 0 {
		return mutedStyle.Render("No activity yet.")
	}

	var lines []string
	for _, e := range m.ActivityItems {
		if height > 0 && len(lines) >= height {
			break
		}
		mark := successStyle.Render("✓")
		if !e.OK {
			mark = errorStyle.Render("✗")
		}
		target := e.Entity
		if e.EntityID != "" {
			target += " " + e.EntityID
		}
		lines = append(lines, fmt.Sprintf("%s %-14s %-10s %-28s %s",
			mark,
			mutedStyle.Render(pad(output.FormatTimeAgo(e.Timestamp), 14)),
			e.Action,
			pad(target, 28),
			e.Message))
	}
	return strings.Join(lines, "\n")
}
