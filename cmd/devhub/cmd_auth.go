package main

import (
	"context"
	"fmt"

	"github.com/mrJackie7/coderdev-hub/pkg/client"

	"github.com/spf13/cobra"
)

var (
	authName     string
	authEmail    string
	authPassword string
)

// registerCmd creates an account and logs in
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE:  runRegister,
}

// loginCmd exchanges credentials for a saved session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the saved session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in account",
	RunE:  runWhoami,
}

func init() {
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password")
	}
}

func runRegister(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		in := client.RegisterInput{Name: authName, Email: authEmail, Password: authPassword}
		if err := store.Register(ctx, in); err != nil {
			return err
		}
		printWelcome(cmd, store)
		return nil
	})
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := store.Login(ctx, client.LoginInput{Email: authEmail, Password: authPassword}); err != nil {
			return err
		}
		printWelcome(cmd, store)
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		store.Logout(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *client.Store) error {
		if err := requireLogin(store); err != nil {
			return err
		}
		if err := store.LoadUser(ctx); err != nil {
			return fmt.Errorf("session rejected, log in again: %w", err)
		}
		user := store.State().Auth.User
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nid: %s\n", user.Name, user.Email, user.ID)
		return nil
	})
}

func printWelcome(cmd *cobra.Command, store *client.Store) {
	if user := store.State().Auth.User; user != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome %s\n", user.Name)
	}
}
