package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/bastion/internal/devserver"
)

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run an in-memory API server for local development",
	Long: `Run an in-memory implementation of the platform API.

Point the CLI at it with --api-url or BASTION_API_URL. With no --accept-token
every non-empty bearer token is accepted. State is lost on exit.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE:    runDevServer,
}

func init() {
	devServerCmd.Flags().StringP("addr", "a", "localhost:8080", "Address to listen on")
	devServerCmd.Flags().StringSlice("accept-token", nil, "Accepted bearer token (repeatable)")
	devServerCmd.Flags().Bool("managed", false, "Answer GET /orgs as a managed provider")
	devServerCmd.Flags().Bool("seed", true, "Preload sample organizations")
	devServerCmd.Flags().Int("profile-step", 25, "Progress added per threat-profile status poll")
	rootCmd.AddCommand(devServerCmd)
}

func runDevServer(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	tokens, _ := cmd.Flags().GetStringSlice("accept-token")
	managed, _ := cmd.Flags().GetBool("managed")
	seed, _ := cmd.Flags().GetBool("seed")
	step, _ := cmd.Flags().GetInt("profile-step")

	srv := devserver.NewServer(devserver.Config{
		ListenAddr:  addr,
		Tokens:      tokens,
		Managed:     managed,
		ProfileStep: step,
		Seed:        seed,
		Logger:      logger,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "bastion dev-server listening on http://%s\n", srv.Addr())
	fmt.Fprintf(os.Stderr, "  managed:  %v\n", managed)
	if len(tokens) > 0 {
		fmt.Fprintf(os.Stderr, "  tokens:   %s\n", strings.Join(tokens, ", "))
	} else {
		fmt.Fprintf(os.Stderr, "  tokens:   any\n")
	}

	<-cmd.Context().Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
