package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCommand(e *env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Args:  cobra.NoArgs,
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("INVENTORY_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or $INVENTORY_PASSWORD) are required")
			}
			identity, err := e.api.Client().Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", identity.Email, identity.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Args:  cobra.NoArgs,
		Short: "Revoke the refresh token and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.api.Client().Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote logout failed: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCommand(e *env) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Args:  cobra.NoArgs,
		Short: "Show the logged-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, ok := e.api.Client().Session().Identity()
			if !ok {
				return errors.New("not logged in")
			}
			if remote {
				me, err := e.api.Me(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s active=%t\n", me.FullName, me.Email, me.Role, me.Active)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", identity.FullName, identity.Email, identity.Role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the account from the API instead of the cached identity")
	return cmd
}
