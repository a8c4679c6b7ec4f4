package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/bastion/internal/appstate"
	"github.com/marcus/bastion/internal/config"
	"github.com/marcus/bastion/internal/db"
	"github.com/marcus/bastion/pkg/console"
)

const consoleLogFile = "console.log"

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"ui"},
	Short:   "Open the interactive console",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("the console needs a terminal")
		}
		admin, _ := cmd.Flags().GetBool("admin")

		if err := os.MkdirAll(settings.Dir, 0700); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		// The terminal belongs to the UI, so logs go to a file.
		logFile, err := os.OpenFile(filepath.Join(settings.Dir, consoleLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open console log: %w", err)
		}
		defer logFile.Close()
		uiLogger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: settings.LogLevel}))
		logger = uiLogger

		client, err := apiClient()
		if err != nil {
			return err
		}
		database, err := db.Open(settings.Dir)
		if err != nil {
			return err
		}
		defer database.Close()

		dir := settings.Dir
		uiLogger.Info("console start", "api", settings.APIURL, "admin", admin)
		return console.Run(console.Options{
			API:            client,
			Activity:       database,
			State:          appstate.New(),
			Logger:         uiLogger,
			PollInterval:   settings.PollInterval,
			RequestTimeout: settings.RequestTimeout,
			Admin:          admin,
			ActiveOrg:      settings.ActiveOrg,
			ShowWelcome:    !settings.SeenWelcome,
			OnWelcomeSeen: func() {
				if err := config.MarkWelcomeSeen(dir); err != nil {
					uiLogger.Warn("mark welcome seen", "err", err)
				}
			},
			OnSwitch: func(clientName string) {
				if err := config.SetActiveOrg(dir, clientName); err != nil {
					uiLogger.Warn("save active organization", "err", err)
				}
			},
		})
	},
}

func init() {
	consoleCmd.Flags().Bool("admin", false, "Enable the all-organizations view (g)")
	rootCmd.AddCommand(consoleCmd)
}
