package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/bastion/internal/db"
	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
)

var activityCmd = &cobra.Command{
	Use:     "activity",
	Short:   "Show the local activity log",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		org, _ := cmd.Flags().GetString("org")

		database, err := db.Open(settings.Dir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		if age, _ := cmd.Flags().GetDuration("prune"); age > 0 {
			n, err := database.Prune(time.Now().Add(-age))
			if err != nil {
				return err
			}
			logger.Info("pruned activity", "rows", n, "older_than", age)
		}

		var items []models.ActivityEntry
		if org != "" {
			items, err = database.ForEntity("org", org)
			if len(items) > limit {
				items = items[:limit]
			}
		} else {
			items, err = database.Recent(limit)
		}
		if err != nil {
			return err
		}

		return printJSONOr(items, func() {
			if len(items) == 0 {
				fmt.Fprintln(output.Stdout, output.Muted("No activity yet"))
				return
			}
			for _, e := range items {
				mark := "✓"
				if !e.OK {
					mark = "✗"
				}
				line := fmt.Sprintf("%s %-16s %-9s %-10s %-16s %s", mark,
					output.FormatTimeAgo(e.Timestamp), e.Action, e.Entity, e.EntityID, e.Message)
				fmt.Fprintln(output.Stdout, line)
			}
		})
	},
}

func init() {
	activityCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	activityCmd.Flags().String("org", "", "Only entries for this organization")
	activityCmd.Flags().Duration("prune", 0, "First delete entries older than this, e.g. 720h")
	rootCmd.AddCommand(activityCmd)
}
