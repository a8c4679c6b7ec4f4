package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/bastion/internal/api"
	"github.com/marcus/bastion/internal/output"
	"github.com/marcus/bastion/internal/session"
)

// tokenInput is swapped out by tests.
var tokenInput io.Reader = os.Stdin

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token",
	Long: `Store an API token in ~/.bastion/token (mode 0600).

The token is read without echo from the terminal, or from stdin when it is
piped. It is checked against the API first unless --no-verify is given.`,
	GroupID: "session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readToken()
		if err != nil {
			return err
		}

		if noVerify, _ := cmd.Flags().GetBool("no-verify"); !noVerify {
			client, err := api.New(api.Options{
				BaseURL:   settings.APIURL,
				Tokens:    api.StaticToken(token),
				Timeout:   settings.RequestTimeout,
				UserAgent: "bastion/" + version,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if _, err := client.ListOrgs(ctx); err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					return fail("unauthorized", errors.New("token rejected by "+settings.APIURL))
				}
				return fail("request_failed", err)
			}
		}

		if err := session.SaveToken(settings.Dir, token); err != nil {
			return err
		}
		sess, err := session.GetOrCreate(settings.Dir)
		if err != nil {
			return err
		}
		recordActivity("login", "session", sess.ID, nil, "Logged in to "+settings.APIURL)
		output.Success("Logged in to %s", settings.APIURL)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Remove the stored API token",
	GroupID: "session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.ClearToken(settings.Dir); err != nil {
			return err
		}
		if sess, err := session.Get(settings.Dir); err == nil {
			recordActivity("logout", "session", sess.ID, nil, "Logged out")
		}
		output.Success("Logged out")
		if settings.Token != "" {
			output.Warning("BASTION_TOKEN is still set and will be used")
		}
		return nil
	},
}

// readToken prompts on a terminal, or reads the first line of piped input.
func readToken() (string, error) {
	if f, ok := tokenInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, "API token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return validToken(string(b))
	}
	line, err := bufio.NewReader(tokenInput).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	return validToken(line)
}

func validToken(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty token")
	}
	return s, nil
}

func init() {
	loginCmd.Flags().Bool("no-verify", false, "Store the token without checking it")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
