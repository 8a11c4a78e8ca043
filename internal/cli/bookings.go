package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/easybook/internal/app"
	"github.com/roach88/easybook/internal/booking"
	"github.com/roach88/easybook/internal/model"
)

// NewBookingsCommand creates the bookings command group.
func NewBookingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings and drive their status",
		Long: `List bookings and drive their status.

Status moves forward only: pending -> confirmed -> in_progress -> completed.
A pending booking may instead be cancelled or declined. Completed, cancelled
and declined bookings are final.`,
	}

	cmd.AddCommand(newBookingsListCommand(rootOpts))
	cmd.AddCommand(newBookingsShowCommand(rootOpts))
	cmd.AddCommand(newBookingsCreateCommand(rootOpts))
	cmd.AddCommand(newBookingsStatusCommand(rootOpts))
	cmd.AddCommand(newBookingsRateCommand(rootOpts))
	cmd.AddCommand(newBookingsRescheduleCommand(rootOpts))
	cmd.AddCommand(newBookingsEarningsCommand(rootOpts))
	cmd.AddCommand(newBookingsStatsCommand(rootOpts))
	cmd.AddCommand(newBookingsAssignCommand(rootOpts))

	return cmd
}

func newBookingsListCommand(rootOpts *RootOptions) *cobra.Command {
	var customer, provider, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		Long: `List bookings in the order they were made.

--customer, --provider and --status narrow the list; at most one of
--customer and --provider may be given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if customer != "" && provider != "" {
				return NewExitError(ExitCommandError, "--customer and --provider are mutually exclusive")
			}
			var want model.Status
			if status != "" {
				parsed, err := model.ParseStatus(status)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --status", err)
				}
				want = parsed
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				list, err := a.Bookings.Find(ctx, booking.Filter{
					CustomerID: customer,
					ProviderID: provider,
					Status:     want,
				})
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read bookings", err)
				}
				return out.Success(bookingList(list))
			})
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "only bookings made by this customer id")
	cmd.Flags().StringVar(&provider, "provider", "", "only bookings assigned to this provider id")
	cmd.Flags().StringVar(&status, "status", "", "only bookings in this status")
	return cmd
}

func newBookingsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				b, err := a.Bookings.Get(ctx, args[0])
				if err != nil {
					return bookingFailure(out, args[0], err)
				}
				return out.Success(bookingList{b})
			})
		},
	}
}

func newBookingsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		serviceID, date, slot, notes string
		addr                         addressFlags
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book one service for the signed-in user",
		Long: `Book one service for the signed-in user.

A provider is assigned from the service category and the booking starts as
pending at the service's current price.

Example:
  easybook bookings create --service 3 --date 2026-02-01 --slot 09:00-11:00 --street "1 Main St"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduled, err := parseDate(date)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --date", err)
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				user, err := a.Session.Current(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read session", err)
				}
				if user == nil {
					return out.Fail(ExitFailure, CodeRejected, "not logged in", nil)
				}
				svc, ok := a.Catalog.Service(ctx, serviceID)
				if !ok {
					return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("service %s not found", serviceID), nil)
				}

				b := model.Booking{
					ID:              strconv.FormatInt(time.Now().UnixMilli(), 10),
					ServiceID:       svc.ID,
					ServiceName:     svc.Name,
					ServiceCategory: svc.Category,
					CustomerID:      user.ID,
					CustomerName:    user.FullName(),
					CustomerEmail:   user.Email,
					CustomerPhone:   user.Phone,
					ScheduledAt:     scheduled,
					TimeSlot:        slot,
					TotalAmount:     svc.Price,
					Notes:           notes,
				}
				if address := addr.address(); address != nil {
					b.Address = *address
				}

				created, err := a.Bookings.CreateProviderRequest(ctx, b)
				if err != nil {
					return out.Fail(ExitFailure, CodeRejected, "failed to create booking", err)
				}
				return out.Success(bookingList{created})
			})
		},
	}
	cmd.Flags().StringVar(&serviceID, "service", "", "service id (required)")
	cmd.Flags().StringVar(&date, "date", "", "date (2006-01-02 or RFC 3339)")
	cmd.Flags().StringVar(&slot, "slot", "", "time slot, e.g. 09:00-10:00")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for the provider")
	addr.bind(cmd)
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func newBookingsStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a booking to a new status",
		Long: `Move a booking to a new status.

An unknown booking id is not an error; nothing changes.

Example:
  easybook bookings status 1700000000000 confirmed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid status", err)
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Bookings.SetStatus(ctx, args[0], status); err != nil {
					return bookingFailure(out, args[0], err)
				}
				return out.Success(message{Text: fmt.Sprintf("Booking %s is %s", args[0], status)})
			})
		},
	}
}

func newBookingsRateCommand(rootOpts *RootOptions) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "rate <id> <rating>",
		Short: "Rate a booking and mark it completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid rating", err)
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Bookings.RecordRating(ctx, args[0], rating, comment); err != nil {
					return bookingFailure(out, args[0], err)
				}
				return out.Success(message{Text: fmt.Sprintf("Rated booking %s %.1f", args[0], rating)})
			})
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "review comment")
	return cmd
}

func newBookingsRescheduleCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date, slot string
		addr       addressFlags
	)
	cmd := &cobra.Command{
		Use:   "reschedule <id>",
		Short: "Change the date, time slot or address of a pending booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduled, err := parseDate(date)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --date", err)
			}
			change := booking.Change{
				ScheduledAt: scheduled,
				TimeSlot:    slot,
				Address:     addr.address(),
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Bookings.Reschedule(ctx, args[0], change); err != nil {
					return bookingFailure(out, args[0], err)
				}
				return out.Success(message{Text: fmt.Sprintf("Rescheduled booking %s", args[0])})
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "new date (2006-01-02 or RFC 3339)")
	cmd.Flags().StringVar(&slot, "slot", "", "new time slot")
	addr.bind(cmd)
	return cmd
}

func newBookingsEarningsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "earnings <provider-id>",
		Short: "Total earnings of a provider from completed bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				total, err := a.Bookings.ProviderEarnings(ctx, args[0])
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read bookings", err)
				}
				return out.Success(earningsView{ProviderID: args[0], Earnings: total})
			})
		},
	}
}

func newBookingsStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var customer, provider string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Booking counts per status and total earnings",
		Long: `Booking counts per status and total earnings.

--provider shows that provider's pending requests and earnings instead.
--customer shows how many bookings that customer has made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if customer != "" && provider != "" {
				return NewExitError(ExitCommandError, "--customer and --provider are mutually exclusive")
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				switch {
				case provider != "":
					pending, err := a.Bookings.PendingRequests(ctx, provider)
					if err != nil {
						return out.Fail(ExitFailure, CodeInternal, "failed to read bookings", err)
					}
					earned, err := a.Bookings.ProviderEarnings(ctx, provider)
					if err != nil {
						return out.Fail(ExitFailure, CodeInternal, "failed to read bookings", err)
					}
					return out.Success(providerStatsView{ProviderID: provider, PendingRequests: len(pending), Earnings: earned})

				case customer != "":
					n, err := a.Bookings.CustomerBookingCount(ctx, customer)
					if err != nil {
						return out.Fail(ExitFailure, CodeInternal, "failed to read bookings", err)
					}
					return out.Success(customerStatsView{CustomerID: customer, TotalBookings: n})
				}

				s, err := a.Bookings.Summary(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read bookings", err)
				}
				return out.Success(summaryView(s))
			})
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "show the booking count of this customer id")
	cmd.Flags().StringVar(&provider, "provider", "", "show pending requests and earnings of this provider id")
	return cmd
}

func newBookingsAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <category>",
		Short: "Show which provider a category is assigned to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				p, ok := a.Bookings.AssignProvider(args[0])
				if !ok {
					return out.Fail(ExitFailure, CodeNotFound, "no providers available", nil)
				}
				return out.Success(message{
					Text:   fmt.Sprintf("%s -> %s (%s)", args[0], p.ID, p.FullName()),
					Fields: map[string]any{"category": args[0], "providerId": p.ID, "providerName": p.FullName()},
				})
			})
		},
	}
}

// bookingFailure maps ledger errors to exit codes and error envelopes.
func bookingFailure(out *OutputFormatter, id string, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("booking %s not found", id), err)
	case errors.Is(err, booking.ErrNotPending),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrInvalidRating),
		errors.Is(err, booking.ErrInvalidStatus):
		return out.Fail(ExitFailure, CodeRejected, fmt.Sprintf("booking %s: change refused", id), err)
	default:
		return out.Fail(ExitFailure, CodeInternal, fmt.Sprintf("booking %s: update failed", id), err)
	}
}
