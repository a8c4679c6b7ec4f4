package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
)

var checkoutPlans = []string{"starter", "pro", "enterprise"}

var checkoutCmd = &cobra.Command{
	Use:       "checkout <plan>",
	Short:     "Create a checkout session to change an organization's plan",
	GroupID:   "core",
	Args:      cobra.ExactArgs(1),
	ValidArgs: checkoutPlans,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := args[0]
		if !slices.Contains(checkoutPlans, plan) {
			return fail("invalid", fmt.Errorf("unknown plan %q (want one of %v)", plan, checkoutPlans))
		}
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
		sess, err := client.CreateCheckoutSession(ctx, models.CheckoutRequest{Plan: plan, ClientName: name})
		if err != nil {
			recordActivity("checkout", "org", name, err, "Failed to create checkout session")
			return fail("request_failed", err)
		}
		recordActivity("checkout", "org", name, nil, "Checkout session for "+plan)
		return printJSONOr(sess, func() {
			output.Success("Checkout session created for %s (%s)", name, plan)
			fmt.Fprintln(output.Stdout, sess.URL)
		})
	},
}

func init() {
	checkoutCmd.Flags().String("org", "", "Organization client name (default: the active one)")
	rootCmd.AddCommand(checkoutCmd)
}
