package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/easybook/internal/app"
)

// NewSlotsCommand creates the slots command.
func NewSlotsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List stored slots with revision and size",
		Long: `List the stored slots (bookings, cart, services, user) with their
revision, document size and last write time. Absent slots are not listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				infos, err := a.Store.Slots(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to list slots", err)
				}
				return out.Success(slotList(infos))
			})
		},
	}
}
