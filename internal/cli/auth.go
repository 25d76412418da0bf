package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRegisterCmd(app *App) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and remember its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.client().Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			err = app.saveToken(res.Token)
			if err != nil {
				return fmt.Errorf("registered, but could not save token: %w", err)
			}
			if app.JSON {
				return writeJSON(cmd, res)
			}
			writeLine(cmd, fmt.Sprintf("Registered %s (%s)", res.User.Username, res.User.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", os.Getenv("CALLLOG_PASSWORD"), "Password (or CALLLOG_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.client().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			err = app.saveToken(res.Token)
			if err != nil {
				return fmt.Errorf("logged in, but could not save token: %w", err)
			}
			if app.JSON {
				return writeJSON(cmd, res)
			}
			writeLine(cmd, "Logged in as "+res.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", os.Getenv("CALLLOG_PASSWORD"), "Password (or CALLLOG_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.tokenPath()
			if err != nil {
				return err
			}
			err = os.Remove(p)
			if err != nil && !os.IsNotExist(err) {
				return err
			}
			writeLine(cmd, "Logged out")
			return nil
		},
	}
}

func newProfileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.client().Profile(cmd.Context())
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, user)
			}
			writeLine(cmd, fmt.Sprintf("%s <%s>\nid:      %s\nsince:   %s", user.Username, user.Email, user.ID, user.CreatedAt.Local().Format("2006-01-02")))
			return nil
		},
	}
}
