package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/bastion/internal/api"
	"github.com/marcus/bastion/internal/config"
	"github.com/marcus/bastion/internal/db"
	"github.com/marcus/bastion/internal/models"
	"github.com/marcus/bastion/internal/output"
	"github.com/marcus/bastion/internal/session"
)

var (
	version  string
	settings *config.Settings
	logger   = slog.Default()

	flagAPIURL   string
	flagToken    string
	flagLogLevel string
	jsonOutput   bool
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "bastion",
	Short: "Admin console for the bastion security platform",
	Long: `bastion - manage organizations, assessments and threat profiles on the bastion platform.

Run "bastion console" for the interactive console, or use the subcommands
below from scripts. Settings come from flags, BASTION_* environment
variables and ~/.bastion/config.json, in that order.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Platform commands:"},
		&cobra.Group{ID: "session", Title: "Session commands:"},
		&cobra.Group{ID: "system", Title: "System commands:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPIURL, "api-url", "", "API base URL (env BASTION_API_URL)")
	pf.StringVar(&flagToken, "token", "", "Bearer token (env BASTION_TOKEN)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (env BASTION_LOG_LEVEL)")
	pf.BoolVar(&jsonOutput, "json", false, "Output JSON")
}

// loadSettings resolves defaults < config file < environment < flags and
// installs the stderr logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	env, err := config.LoadEnv(".env", filepath.Join(dir, ".env"))
	if err != nil {
		return err
	}
	s, err := config.Resolve(dir, env)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		s.APIURL = flagAPIURL
	}
	if flags.Changed("token") {
		s.Token = flagToken
	}
	if flags.Changed("log-level") {
		level, err := config.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		s.LogLevel = level
	}

	settings = s
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: s.LogLevel}))
	slog.SetDefault(logger)
	return nil
}

// apiClient builds a client from the resolved settings.
func apiClient() (*api.Client, error) {
	return api.New(api.Options{
		BaseURL:   settings.APIURL,
		Tokens:    session.TokenStore{Dir: settings.Dir, Override: settings.Token},
		Timeout:   settings.RequestTimeout,
		UserAgent: "bastion/" + version,
		Logger:    logger,
	})
}

// requestContext bounds one API call by the request timeout.
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), settings.RequestTimeout)
}

// recordActivity appends to the local activity log. Failures are logged,
// never returned.
func recordActivity(action, entity, entityID string, err error, message string) {
	database, openErr := db.Open(settings.Dir)
	if openErr != nil {
		logger.Warn("open activity log", "err", openErr)
		return
	}
	defer database.Close()

	e := &models.ActivityEntry{
		Timestamp: time.Now(),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		OK:        err == nil,
		Message:   message,
	}
	if recErr := database.Record(e); recErr != nil {
		logger.Warn("record activity", "err", recErr)
	}
}

// fail prints err in the requested format and returns it for cobra.
func fail(code string, err error) error {
	if jsonOutput {
		_ = output.JSONError(code, err.Error())
	}
	return err
}

// failRequest is fail with the code matching an API error.
func failRequest(err error) error {
	if api.IsNotFound(err) {
		return fail("not_found", err)
	}
	return fail("request_failed", err)
}

// printJSONOr writes v as JSON under --json, otherwise calls text.
func printJSONOr(v any, text func()) error {
	if jsonOutput {
		return output.JSON(v)
	}
	text()
	return nil
}

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the version",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSONOr(map[string]string{"version": version}, func() {
			fmt.Fprintf(output.Stdout, "bastion %s\n", version)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
