package console

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
)

// clipboardWriter is replaced in tests.
var clipboardWriter = copyToClipboard

// copyToClipboard copies text to the system clipboard.
// Uses pbcopy on macOS, xclip on Linux, clip.exe on Windows.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		// Try xclip first, fall back to xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("no clipboard tool found (install xclip or xsel)")
		}
	case "windows":
		cmd = exec.Command("clip.exe")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// copyCmd copies text off the update loop and reports the result.
func copyCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardMsg{What: what, Err: clipboardWriter(text)}
	}
}

// formatOrgAsMarkdown formats an organization as markdown, for the
// clipboard and the detail view.
func formatOrgAsMarkdown(o *models.Organization) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", o.OrgName)
	fmt.Fprintf(&sb, "**Client:** `%s`", o.ClientName)
	if o.Kind == models.OrgKindLE {
		sb.WriteString(" | **Kind:** Large enterprise")
	}
	sb.WriteString("\n")
	if o.Plan != "" {
		fmt.Fprintf(&sb, "**Plan:** %s\n", o.Plan)
	}

	sb.WriteString("\n## Profile\n\n")
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&sb, "- **%s:** %s\n", k, v)
		}
	}
	row("Domain", o.OrgDomain)
	row("Sector", o.Sector)
	row("Countries", strings.Join(o.CountriesOfOperation, ", "))
	if o.EmployeeCount > 0 {
		row("Employees", humanize.Comma(int64(o.EmployeeCount)))
	}
	if o.AnnualRevenue > 0 {
		row("Annual revenue", "$"+humanize.CommafWithDigits(o.AnnualRevenue, 0))
	}
	row("Subsidiaries", strings.Join(o.Subsidiaries, ", "))

	if o.WebsiteURL != "" || o.HomeURL != "" || o.AboutUsURL != "" {
		sb.WriteString("\n## Web presence\n\n")
		row("Website", o.WebsiteURL)
		row("Home", o.HomeURL)
		row("About us", o.AboutUsURL)
	}

	if o.AdditionalDetails != "" {
		sb.WriteString("\n## Additional details\n\n")
		sb.WriteString(o.AdditionalDetails)
		sb.WriteString("\n")
	}

	if !o.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "\n_Created %s_\n", output.FormatTimeAgo(o.CreatedAt))
	}
	return sb.String()
}
