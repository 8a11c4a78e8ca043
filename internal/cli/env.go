package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/easybook/internal/app"
	"github.com/roach88/easybook/internal/config"
	"github.com/roach88/easybook/internal/model"
)

// runFunc is the body of a command that needs the started application.
type runFunc func(ctx context.Context, a *app.App, out *OutputFormatter) error

// withApp loads config, starts the application for the duration of fn and
// shuts it down afterwards.
func withApp(cmd *cobra.Command, opts *RootOptions, fn runFunc) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	slog.SetDefault(a.Log)
	defer func() {
		if closeErr := a.Close(context.Background()); closeErr != nil {
			a.Log.Error("error closing application", "error", closeErr)
		}
	}()

	return fn(ctx, a, newFormatter(cmd, opts))
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// parseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// An empty string yields the zero time.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// addressFlags binds the four address fields to a command.
type addressFlags struct {
	street, city, state, postalCode string
}

func (f *addressFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.street, "street", "", "street address")
	cmd.Flags().StringVar(&f.city, "city", "", "city")
	cmd.Flags().StringVar(&f.state, "state", "", "state")
	cmd.Flags().StringVar(&f.postalCode, "postal-code", "", "postal code")
}

// address returns nil when no address flag was given.
func (f *addressFlags) address() *model.Address {
	if f.street == "" && f.city == "" && f.state == "" && f.postalCode == "" {
		return nil
	}
	return &model.Address{
		Street:     f.street,
		City:       f.city,
		State:      f.state,
		PostalCode: f.postalCode,
	}
}
