package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
	"github.com/marcus/bastion/internal/wizard"
)

var assessmentCmd = &cobra.Command{
	Use:     "assessment",
	Aliases: []string{"assessments"},
	Short:   "Manage security assessments",
	GroupID: "core",
}

var assessmentCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an assessment for an organization",
	Example: `  bastion assessment create --org acme --assessment-id ASM-2026-001 --creator dana@acme.io --framework "SOC 2"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		org, _ := cmd.Flags().GetString("org")
		client, err := apiClient()
		if err != nil {
			return err
		}
		// An empty org targets the caller's active organization server-side.
		if org == "" {
			org = settings.ActiveOrg
		}
		c := wizard.NewAssessmentCreate(client, org)
		applyFieldFlags(cmd, c)
		payload, err := submitWizard(cmd, c, "create", "assessment", "")
		if err != nil {
			return err
		}
		a, _ := payload.(*models.Assessment)
		if a == nil {
			output.Success("%s", c.Success())
			return nil
		}
		return printJSONOr(a, func() {
			output.Success("%s: %s", c.Success(), a.AssessmentID)
		})
	},
}

var assessmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an organization's assessments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		org, _ := cmd.Flags().GetString("org")
		name, err := orgArg([]string{org})
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		items, err := client.ListAssessments(ctx, name)
		if err != nil {
			return fail("request_failed", err)
		}
		return printJSONOr(items, func() {
			if len(items) == 0 {
				fmt.Fprintln(output.Stdout, output.Muted("No assessments for "+name))
				return
			}
			rows := make([][]string, 0, len(items))
			for _, a := range items {
				rows = append(rows, []string{
					a.AssessmentID, a.Title, a.Framework,
					strconv.Itoa(a.ControlsInScope), a.DueDate, output.FormatTimeAgo(a.CreatedAt),
				})
			}
			headers := []string{"ID", "TITLE", "FRAMEWORK", "CONTROLS", "DUE", "CREATED"}
			fmt.Fprint(output.Stdout, output.Table(headers, rows, cellWidth()))
		})
	},
}

func init() {
	addFieldFlags(assessmentCreateCmd, wizard.MustCatalog(wizard.AssessmentCreate))
	for _, c := range []*cobra.Command{assessmentCreateCmd, assessmentListCmd} {
		c.Flags().String("org", "", "Organization client name (default: the active one)")
	}

	assessmentCmd.AddCommand(assessmentCreateCmd, assessmentListCmd)
	rootCmd.AddCommand(assessmentCmd)
}
