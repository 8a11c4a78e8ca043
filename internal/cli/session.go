package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/easybook/internal/app"
	"github.com/roach88/easybook/internal/model"
)

// NewSessionCommand creates the session command group.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Sign a user in or out",
		Long: `Sign a user in or out.

Identity is verified elsewhere; login only records who is signed in.`,
	}

	cmd.AddCommand(newSessionLoginCommand(rootOpts))
	cmd.AddCommand(newSessionShowCommand(rootOpts))
	cmd.AddCommand(newSessionLogoutCommand(rootOpts))

	return cmd
}

func newSessionLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user model.User
		role string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Record the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user.Role = model.Role(role)
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Session.Save(ctx, user); err != nil {
					return out.Fail(ExitFailure, CodeInvalid, "login rejected", err)
				}
				return out.Success(message{Text: fmt.Sprintf("Logged in as %s", user.FullName())})
			})
		},
	}
	cmd.Flags().StringVar(&user.ID, "id", "", "user id (required)")
	cmd.Flags().StringVar(&user.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&user.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&user.Email, "email", "", "email")
	cmd.Flags().StringVar(&user.Phone, "phone", "", "phone")
	cmd.Flags().StringVar(&role, "role", string(model.RoleCustomer), "customer|provider|admin")
	cmd.Flags().BoolVar(&user.Verified, "verified", false, "identity already verified")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newSessionShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				p, err := a.Session.Profile(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read session", err)
				}
				return out.Success(profileView(p))
			})
		},
	}
}

func newSessionLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign the current user out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Session.Clear(ctx); err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to sign out", err)
				}
				return out.Success(message{Text: "Logged out"})
			})
		},
	}
}
