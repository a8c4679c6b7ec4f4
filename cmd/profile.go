package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/bastion/internal/api"
	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
	"github.com/marcus/bastion/internal/poll"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Run and inspect threat profiles",
	GroupID: "core",
}

var profileStartCmd = &cobra.Command{
	Use:   "start [client-name]",
	Short: "Start a threat-profiling run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := orgArg(args)
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		st, err := client.StartThreatProfile(ctx, name)
		cancel()
		if err != nil {
			recordActivity("profile", "org", name, err, "Failed to start threat profiling")
			return fail("request_failed", err)
		}
		recordActivity("profile", "org", name, nil, "Threat profiling started")

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return watchProfile(cmd, client, name)
		}
		return printJSONOr(st, func() { printProfileStatus(*st) })
	},
}

var profileStatusCmd = &cobra.Command{
	Use:   "status [client-name]",
	Short: "Show the progress of the latest run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := orgArg(args)
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		st, err := client.ThreatProfileStatus(ctx, name)
		if err != nil {
			return fail("request_failed", err)
		}
		return printJSONOr(st, func() { printProfileStatus(*st) })
	},
}

var profileWatchCmd = &cobra.Command{
	Use:   "watch [client-name]",
	Short: "Follow the latest run until it finishes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := orgArg(args)
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		return watchProfile(cmd, client, name)
	},
}

var profileReportCmd = &cobra.Command{
	Use:   "report [client-name]",
	Short: "Show the report of a completed run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := orgArg(args)
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		report, err := client.ThreatProfileReport(ctx, name)
		if err != nil {
			return fail("request_failed", err)
		}
		raw, _ := cmd.Flags().GetBool("raw")
		return printJSONOr(report, func() {
			fmt.Fprint(output.Stdout, renderReport(report.Summary, raw))
		})
	},
}

// watchProfile polls the run status until it is terminal, redrawing one
// progress line on a terminal and printing one line per update otherwise.
func watchProfile(cmd *cobra.Command, client *api.Client, name string) error {
	tty := term.IsTerminal(int(os.Stdout.Fd())) && !jsonOutput
	fetch := func(ctx context.Context) (*models.ThreatProfileStatus, error) {
		rctx, cancel := context.WithTimeout(ctx, settings.RequestTimeout)
		defer cancel()
		return client.ThreatProfileStatus(rctx, name)
	}
	onUpdate := func(st *models.ThreatProfileStatus) {
		switch {
		case jsonOutput:
			_ = output.JSON(st)
		case tty:
			fmt.Fprintf(output.Stdout, "\r\033[K%s %s %s", output.ProgressBar(st.Progress, 30),
				output.FormatProfileState(st.Status), output.Muted(st.Message))
		default:
			printProfileStatus(*st)
		}
	}

	st, err := poll.Poll(cmd.Context(), settings.PollInterval, fetch, onUpdate)
	if tty {
		fmt.Fprintln(output.Stdout)
	}
	if err != nil {
		return fail("request_failed", err)
	}
	switch st.Status {
	case models.ProfileCompleted:
		recordActivity("profile", "org", name, nil, "Threat profiling completed")
		if !jsonOutput {
			output.Success("Threat profile ready: bastion profile report %s", name)
		}
	case models.ProfileFailed:
		err := fmt.Errorf("threat profiling failed: %s", st.Message)
		recordActivity("profile", "org", name, err, "Threat profiling failed")
		return err
	}
	return nil
}

func printProfileStatus(st models.ThreatProfileStatus) {
	fmt.Fprintf(output.Stdout, "%s  %s %s  %s\n", st.ClientName, output.FormatProfileState(st.Status),
		output.ProgressBar(st.Progress, 20), output.Muted(st.Message))
}

// renderReport renders the markdown summary for the terminal. raw, or a
// renderer failure, returns the markdown as is.
func renderReport(md string, raw bool) string {
	if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width-4))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func init() {
	profileStartCmd.Flags().BoolP("watch", "w", false, "Follow the run until it finishes")
	profileReportCmd.Flags().Bool("raw", false, "Print the markdown without rendering")

	profileCmd.AddCommand(profileStartCmd, profileStatusCmd, profileWatchCmd, profileReportCmd)
	rootCmd.AddCommand(profileCmd)
}
