package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/easybook/internal/app"
	"github.com/roach88/easybook/internal/checkout"
)

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart and check out",
		Long: `Manage the cart and check out.

The cart has no quantities: adding a service twice keeps two entries, and
removing a service id removes every entry with that id.`,
	}

	cmd.AddCommand(newCartListCommand(rootOpts))
	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))
	cmd.AddCommand(newCartCheckoutCommand(rootOpts))

	return cmd
}

func newCartListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cart entries and the total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				items, err := a.Cart.All(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read cart", err)
				}
				total, err := a.Cart.Total(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read cart", err)
				}
				return out.Success(cartView{Items: items, Total: total})
			})
		},
	}
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <service-id>",
		Short: "Add a catalog service to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				svc, ok := a.Catalog.Service(ctx, args[0])
				if !ok {
					return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("service %s not found", args[0]), nil)
				}
				if err := a.Cart.Add(ctx, svc); err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to add to cart", err)
				}
				return out.Success(message{Text: fmt.Sprintf("Added %s to cart", svc.Name)})
			})
		},
	}
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <service-id>",
		Short: "Remove every cart entry for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Cart.Remove(ctx, args[0]); err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to update cart", err)
				}
				return out.Success(message{Text: fmt.Sprintf("Removed %s from cart", args[0])})
			})
		},
	}
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Cart.Clear(ctx); err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to clear cart", err)
				}
				return out.Success(message{Text: "Cart cleared"})
			})
		},
	}
}

func newCartCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date, slot, notes string
		addr              addressFlags
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Book everything in the cart for the signed-in user",
		Long: `Book everything in the cart for the signed-in user.

One pending booking is created per cart entry, each with a provider chosen
by category and the price shown in the cart. The cart is emptied afterwards.

Example:
  easybook cart checkout --date 2026-02-01 --slot 09:00-11:00 --street "1 Main St" --city Springfield`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduled, err := parseDate(date)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --date", err)
			}
			details := checkout.Details{
				ScheduledAt: scheduled,
				TimeSlot:    slot,
				Notes:       notes,
			}
			if address := addr.address(); address != nil {
				details.Address = *address
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				user, err := a.Session.Current(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read session", err)
				}
				if user == nil {
					return out.Fail(ExitFailure, CodeRejected, "not logged in", nil)
				}

				created, err := a.Checkout.Checkout(ctx, *user, details)
				switch {
				case errors.Is(err, checkout.ErrEmptyCart):
					return out.Fail(ExitFailure, CodeRejected, "cart is empty", nil)
				case err != nil:
					return out.Fail(ExitFailure, CodeInternal,
						fmt.Sprintf("checkout stopped after %d bookings", len(created)), err)
				}
				return out.Success(bookingList(created))
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date (2006-01-02 or RFC 3339)")
	cmd.Flags().StringVar(&slot, "slot", "", "time slot, e.g. 09:00-10:00")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for the providers")
	addr.bind(cmd)
	return cmd
}
