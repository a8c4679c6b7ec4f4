// Package output formats CLI output: status lines, JSON, tables and the
// organization tree.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/marcus/bastion/internal/models"
)

var (
	// Stdout and Stderr are swapped out by tests.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	leStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
)

// Success prints a confirmation line to stdout.
func Success(format string, args ...any) {
	fmt.Fprintln(Stdout, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Error prints an error line to stderr.
func Error(format string, args ...any) {
	fmt.Fprintln(Stderr, errorStyle.Render("ERROR: ")+fmt.Sprintf(format, args...))
}

// Warning prints a warning line to stderr.
func Warning(format string, args ...any) {
	fmt.Fprintln(Stderr, warningStyle.Render("WARNING: "+fmt.Sprintf(format, args...)))
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// JSON writes v as indented JSON to stdout.
func JSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSONError writes an error object to stdout for --json callers.
func JSONError(code, message string) error {
	return JSON(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// FormatTimeAgo renders t relative to now ("3 minutes ago").
func FormatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatKind renders an organization's kind as a short badge.
func FormatKind(k models.OrgKind) string {
	if k == models.OrgKindLE {
		return leStyle.Render("[LE]")
	}
	return ""
}

// FormatProfileState renders a threat-profile state.
func FormatProfileState(s models.ProfileState) string {
	switch s {
	case models.ProfileCompleted:
		return successStyle.Render(string(s))
	case models.ProfileFailed:
		return errorStyle.Render(string(s))
	case models.ProfileRunning:
		return warningStyle.Render(string(s))
	default:
		return mutedStyle.Render(string(s))
	}
}

// ProgressBar renders a fixed-width progress bar for pct in [0,100].
func ProgressBar(pct, width int) string {
	pct = max(0, min(100, pct))
	filled := pct * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %3d%%", pct)
}

// FormatOrgShort renders a one-line organization summary.
func FormatOrgShort(o models.Organization) string {
	parts := []string{o.ClientName, o.OrgName, Muted(o.OrgDomain)}
	if badge := FormatKind(o.Kind); badge != "" {
		parts = append(parts, badge)
	}
	return strings.Join(parts, "  ")
}

// FormatOrgLong renders every populated field of an organization.
func FormatOrgLong(o models.Organization) string {
	rows := [][2]string{
		{"Client name", o.ClientName},
		{"Name", o.OrgName},
		{"Domain", o.OrgDomain},
		{"Kind", string(o.Kind)},
		{"Plan", o.Plan},
		{"Sector", o.Sector},
		{"Website", o.WebsiteURL},
		{"Home page", o.HomeURL},
		{"About us", o.AboutUsURL},
		{"Countries", strings.Join(o.CountriesOfOperation, ", ")},
		{"Details", o.AdditionalDetails},
	}
	if o.EmployeeCount > 0 {
		rows = append(rows, [2]string{"Employees", humanize.Comma(int64(o.EmployeeCount))})
	}
	if o.AnnualRevenue > 0 {
		rows = append(rows, [2]string{"Revenue", "$" + humanize.CommafWithDigits(o.AnnualRevenue, 0)})
	}
	if len(o.Subsidiaries) > 0 {
		rows = append(rows, [2]string{"Subsidiaries", strings.Join(o.Subsidiaries, ", ")})
	}
	if !o.CreatedAt.IsZero() {
		rows = append(rows, [2]string{"Created", FormatTimeAgo(o.CreatedAt)})
	}

	var b strings.Builder
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(fmt.Sprintf("%-13s", r[0]+":")), r[1])
	}
	return b.String()
}

// Table renders rows under headers, truncating cells to maxWidth display
// columns (0 = no limit).
func Table(headers []string, rows [][]string, maxWidth int) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = ansi.StringWidth(h)
	}
	cell := func(s string) string {
		if maxWidth > 0 {
			return ansi.Truncate(s, maxWidth, "…")
		}
		return s
	}
	for _, r := range rows {
		for i := range min(len(r), len(widths)) {
			widths[i] = max(widths[i], ansi.StringWidth(cell(r[i])))
		}
	}

	var b strings.Builder
	writeRow := func(r []string, style *lipgloss.Style) {
		for i := range widths {
			var v string
			if i < len(r) {
				v = cell(r[i])
			}
			pad := strings.Repeat(" ", widths[i]-ansi.StringWidth(v))
			if style != nil {
				v = style.Render(v)
			}
			b.WriteString(v + pad)
			if i < len(widths)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	writeRow(headers, &headerStyle)
	for _, r := range rows {
		writeRow(r, nil)
	}
	return b.String()
}
