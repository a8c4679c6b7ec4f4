package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/marcus/bastion/internal/config"
	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
	"github.com/marcus/bastion/internal/wizard"
)

var orgCmd = &cobra.Command{
	Use:     "org",
	Aliases: []string{"orgs"},
	Short:   "Manage organizations",
	GroupID: "core",
}

var orgCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an organization",
	Example: `  bastion org create --org-name Acme --org-domain acme.io --countries-of-operation "USA, Canada"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		c := wizard.NewOrgCreate(client)
		applyFieldFlags(cmd, c)
		payload, err := submitWizard(cmd, c, "create", "org", "")
		if err != nil {
			return err
		}
		return printOrgResult(c.Success(), payload)
	},
}

var orgCreateLECmd = &cobra.Command{
	Use:     "create-le",
	Short:   "Create a large-enterprise organization",
	Example: `  bastion org create-le --org-name Globex --org-domain globex.com --employee-count 12000 --subsidiaries "Globex EU, Globex APAC"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		c := wizard.NewOrgLE(client)
		applyFieldFlags(cmd, c)
		payload, err := submitWizard(cmd, c, "create-le", "org", "")
		if err != nil {
			return err
		}
		return printOrgResult(c.Success(), payload)
	},
}

var orgUpdateCmd = &cobra.Command{
	Use:   "update <client-name>",
	Short: "Update an organization's profile",
	Long: `Update an organization's profile. Fields not given keep their current
value; pass an empty string to clear one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		org, err := client.GetOrg(ctx, args[0])
		cancel()
		if err != nil {
			return failRequest(err)
		}

		c := wizard.NewOrgUpdate(client, *org)
		if !applyFieldFlags(cmd, c) {
			return fail("invalid", fmt.Errorf("nothing to update: pass at least one field flag"))
		}
		payload, err := submitWizard(cmd, c, "update", "org", org.ClientName)
		if err != nil {
			return err
		}
		return printOrgResult(c.Success(), payload)
	},
}

func printOrgResult(success string, payload any) error {
	org, _ := payload.(*models.Organization)
	if org == nil {
		output.Success("%s", success)
		return nil
	}
	return printJSONOr(org, func() {
		output.Success("%s: %s", success, org.ClientName)
	})
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the organizations in your scope",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		scope, err := client.ListOrgs(ctx)
		if err != nil {
			return fail("request_failed", err)
		}
		return printJSONOr(scope, func() {
			if scope.Org == nil {
				fmt.Fprintln(output.Stdout, output.Muted("No organization yet. Create one with: bastion org create"))
				return
			}
			opts := output.TreeRenderOptions{ShowPlan: true, ShowKind: true}
			fmt.Fprintln(output.Stdout, output.RenderTree(output.ScopeTree(*scope), opts))
		})
	},
}

var orgShowCmd = &cobra.Command{
	Use:   "show [client-name]",
	Short: "Show an organization (default: the active one)",
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
		org, err := client.GetOrg(ctx, name)
		if err != nil {
			return failRequest(err)
		}
		return printJSONOr(org, func() {
			fmt.Fprint(output.Stdout, output.FormatOrgLong(*org))
		})
	},
}

var orgDeleteCmd = &cobra.Command{
	Use:   "delete <client-name...>",
	Short: "Delete one or more organizations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}

		var failed int
		for _, name := range args {
			ctx, cancel := requestContext(cmd)
			err := client.DeleteOrg(ctx, name)
			cancel()
			if err != nil {
				output.Error("failed to delete %s: %v", name, err)
				recordActivity("delete", "org", name, err, "Failed to delete organization")
				failed++
				continue
			}
			recordActivity("delete", "org", name, nil, "Organization deleted")
			if settings.ActiveOrg == name {
				if err := config.ClearActiveOrg(settings.Dir); err != nil {
					output.Warning("clear active organization: %v", err)
				}
			}
			fmt.Fprintf(output.Stdout, "DELETED %s\n", name)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d deletions failed", failed, len(args))
		}
		return nil
	},
}

var orgSwitchCmd = &cobra.Command{
	Use:   "switch <client-name>",
	Short: "Switch the active organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		org, err := client.SwitchOrg(ctx, args[0])
		if err != nil {
			recordActivity("switch", "org", args[0], err, "Failed to switch organization")
			return fail("request_failed", err)
		}
		if err := config.SetActiveOrg(settings.Dir, org.ClientName); err != nil {
			return err
		}
		recordActivity("switch", "org", org.ClientName, nil, "Switched to "+org.ClientName)
		return printJSONOr(org, func() {
			output.Success("Switched to %s", output.FormatOrgShort(*org))
		})
	},
}

var orgAllCmd = &cobra.Command{
	Use:   "all",
	Short: "List every organization on the platform (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		var (
			all   []models.Organization
			scope *models.OrgScope
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			all, err = client.ListAllOrgs(gctx)
			return err
		})
		g.Go(func() (err error) {
			scope, err = client.ListOrgs(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return fail("request_failed", err)
		}

		return printJSONOr(all, func() {
			inScope := map[string]bool{}
			if scope != nil {
				for _, o := range scope.Orgs() {
					inScope[o.ClientName] = true
				}
			}
			rows := make([][]string, 0, len(all))
			for _, o := range all {
				mark := ""
				if inScope[o.ClientName] {
					mark = "●"
				}
				rows = append(rows, []string{mark, o.ClientName, o.OrgName, o.OrgDomain, string(o.Kind), o.Plan})
			}
			headers := []string{"", "CLIENT", "NAME", "DOMAIN", "KIND", "PLAN"}
			fmt.Fprint(output.Stdout, output.Table(headers, rows, cellWidth()))
		})
	},
}

// orgArg returns the organization named on the command line, else the
// active one.
func orgArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if settings.ActiveOrg != "" {
		return settings.ActiveOrg, nil
	}
	return "", fmt.Errorf("no organization given and none active: run bastion org switch <client-name>")
}

// cellWidth caps table cells on narrow terminals.
func cellWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 40
	}
	return max(12, w/4)
}

func init() {
	addFieldFlags(orgCreateCmd, wizard.MustCatalog(wizard.OrgCreate))
	addFieldFlags(orgCreateLECmd, wizard.MustCatalog(wizard.OrgLE))
	addFieldFlags(orgUpdateCmd, wizard.MustCatalog(wizard.OrgUpdate))

	orgCmd.AddCommand(orgCreateCmd, orgCreateLECmd, orgListCmd, orgShowCmd,
		orgUpdateCmd, orgDeleteCmd, orgSwitchCmd, orgAllCmd)
	rootCmd.AddCommand(orgCmd)
}
