// Command devhub is a terminal client for the DevHub API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mrJackie7/coderdev-hub/pkg/client"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiURL      string
	sessionFile string
	timeout     time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "devhub",
	Short: "DevHub - developer profiles and posts from the terminal",
	Long: `devhub talks to a DevHub API server.

Log in once with 'devhub login'; the session token is kept in
~/.devhub/session.yml and sent with every later command until
'devhub logout'.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("DEVHUB_API_URL", client.DefaultBaseURL), "API base URL (or set DEVHUB_API_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session", "", "Session file (default: ~/.devhub/session.yml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(feedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// withStore loads the saved session, runs fn against a store built from it,
// prints any alerts fn produced and saves the session if it changed.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *client.Store) error) error {
	path, err := resolveSessionPath(sessionFile)
	if err != nil {
		return err
	}
	sess, err := loadSession(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	store := client.NewStore(client.New(apiURL), sess)
	runErr := fn(ctx, store)

	printAlerts(cmd, store.DrainAlerts())

	if next := store.Session(); next != sess {
		if err := saveSession(path, next); err != nil {
			return err
		}
	}
	return runErr
}

func requireLogin(store *client.Store) error {
	if !store.Session().Authenticated() {
		return fmt.Errorf("not logged in, run 'devhub login' first")
	}
	return nil
}

func printAlerts(cmd *cobra.Command, alerts []client.Alert) {
	for _, a := range alerts {
		if a.Type == client.AlertDanger {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", a.Msg)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.Msg)
	}
}
