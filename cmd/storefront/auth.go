package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pomerium/storefront/internal/session"
)

func (c *cli) loginCommand() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := c.prompt("Username or email", username)
			if err != nil {
				return err
			}
			password, err := c.promptPassword("Password")
			if err != nil {
				return err
			}

			s, err := c.app.session.Login(cmd.Context(), name, password)
			if err != nil {
				return err
			}
			remaining := time.Until(s.Claims.Expiry()).Round(time.Second)
			fmt.Fprintf(c.stdout, "Logged in as %s (session expires in %s)\n", s.User.DisplayName(), remaining)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email")
	return cmd
}

func (c *cli) registerCommand() *cobra.Command {
	var req session.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			for _, field := range []struct {
				label string
				value *string
			}{
				{"First name", &req.FirstName},
				{"Last name", &req.LastName},
				{"Username", &req.Username},
				{"Email", &req.Email},
			} {
				if *field.value, err = c.prompt(field.label, *field.value); err != nil {
					return err
				}
			}
			if req.Password, err = c.promptPassword("Password"); err != nil {
				return err
			}
			confirm, err := c.promptPassword("Confirm password")
			if err != nil {
				return err
			}
			if confirm != req.Password {
				return errors.New("passwords do not match")
			}

			ack, err := c.app.session.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			msg := ack.Message
			if msg == "" {
				msg = "Account created"
			}
			fmt.Fprintf(c.stdout, "%s. Run `storefront login` to log in.\n", msg)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.FirstName, "first-name", "", "First name")
	flags.StringVar(&req.LastName, "last-name", "", "Last name")
	flags.StringVarP(&req.Username, "username", "u", "", "Username")
	flags.StringVar(&req.Email, "email", "", "Email")
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logout := c.app.session.Logout
			if remote {
				logout = c.app.session.LogoutRemote
			}
			if err := logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "Logged out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Also revoke the token on the server")
	return cmd
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, ok := c.app.session.CurrentUser(cmd.Context())
			if !ok {
				return errNotLoggedIn
			}
			rows := [][2]string{
				{"Name", user.FullName()},
				{"Username", user.Username},
				{"Email", user.Email},
				{"User ID", fmt.Sprint(user.ID)},
			}
			if created, ok := user.CreatedTime(); ok {
				rows = append(rows, [2]string{"Member since", created.Format(time.DateOnly)})
			}
			renderFields(c.stdout, rows)
			return nil
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rows := [][2]string{
				{"Server", c.app.opts.APIBaseURL},
			}
			if c.app.monitor != nil {
				rows = append(rows, [2]string{"Network", connectivity(c.app.monitor.IsConnected())})
			}

			s, ok := c.app.session.Snapshot(ctx)
			if ok && s.Active {
				rows = append(rows, [2]string{"State", session.StateLoggedIn.String()})
				if s.User != nil {
					rows = append(rows, [2]string{"User", s.User.DisplayName()})
				}
				remaining, _ := c.app.session.TokenRemainingTime(ctx)
				rows = append(rows,
					[2]string{"Expires", s.Claims.Expiry().Format(time.RFC3339)},
					[2]string{"Remaining", remaining.Round(time.Second).String()})
			} else {
				rows = append(rows, [2]string{"State", c.app.session.State().String()})
			}
			renderFields(c.stdout, rows)
			return nil
		},
	}
}

func connectivity(connected bool) string {
	if connected {
		return "online"
	}
	return "offline"
}

func (c *cli) tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the bearer token of the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, ok := c.app.session.Token(cmd.Context())
			if !ok || !c.app.session.IsLoggedIn(cmd.Context()) {
				return errNotLoggedIn
			}
			fmt.Fprintln(c.stdout, token)
			return nil
		},
	}
}
