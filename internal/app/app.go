// Package app is the composition root. It wires config, logger, store,
// writer and the ledgers with fx and owns their lifecycle: the writer loop
// starts with the app, and on stop the writer drains before the store
// closes.
package app

import (
	"context"
	"io"
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/roach88/easybook/internal/booking"
	"github.com/roach88/easybook/internal/cart"
	"github.com/roach88/easybook/internal/catalog"
	"github.com/roach88/easybook/internal/checkout"
	"github.com/roach88/easybook/internal/config"
	"github.com/roach88/easybook/internal/logs"
	"github.com/roach88/easybook/internal/session"
	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/writer"
)

// App holds the started components.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Store    *store.Store
	Writer   *writer.Writer
	Catalog  *catalog.Catalog
	Bookings *booking.Ledger
	Cart     *cart.Ledger
	Session  *session.Holder
	Checkout *checkout.Flow

	fx *fx.App
}

type appParams struct {
	fx.In

	Config   *config.Config
	Log      *slog.Logger
	Store    *store.Store
	Writer   *writer.Writer
	Catalog  *catalog.Catalog
	Bookings *booking.Ledger
	Cart     *cart.Ledger
	Session  *session.Holder
	Checkout *checkout.Flow
}

// Module provides every component for cfg. Logs go to logOut.
func Module(cfg *config.Config, logOut io.Writer) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			func() io.Writer { return logOut },
			logs.New,
			newStore,
			newWriter,
			newCatalog,
			newBookings,
			newCart,
			newSession,
			newCheckout,
		),
	)
}

// New builds and starts the application. Close must be called to stop the
// writer and close the database.
func New(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	var a *App
	fxApp := fx.New(
		Module(cfg, logOut),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			l := &fxevent.SlogLogger{Logger: log}
			l.UseLogLevel(slog.LevelDebug)
			return l
		}),
		fx.Provide(newApp),
		fx.Populate(&a),
	)
	if err := fxApp.Err(); err != nil {
		return nil, err
	}
	if err := fxApp.Start(ctx); err != nil {
		return nil, err
	}
	a.fx = fxApp
	return a, nil
}

// Close stops the writer and closes the store.
func (a *App) Close(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

func newApp(p appParams) *App {
	return &App{
		Config:   p.Config,
		Log:      p.Log,
		Store:    p.Store,
		Writer:   p.Writer,
		Catalog:  p.Catalog,
		Bookings: p.Bookings,
		Cart:     p.Cart,
		Session:  p.Session,
		Checkout: p.Checkout,
	}
}

func newStore(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	log.Debug("database ready", "path", cfg.Database.Path)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Debug("closing database")
			return st.Close()
		},
	})
	return st, nil
}

// newWriter takes the store so its stop hook is registered later and runs
// earlier: queued jobs finish before the database closes.
func newWriter(lc fx.Lifecycle, _ *store.Store, log *slog.Logger) *writer.Writer {
	w := writer.New(writer.WithLogger(log))

	var stop func()
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// The start context ends once startup completes; the loop must
			// outlive it.
			stop = w.Start(context.Background())
			return nil
		},
		OnStop: func(context.Context) error {
			if stop != nil {
				stop()
			}
			return nil
		},
	})
	return w
}

func newCatalog(st *store.Store, w *writer.Writer, log *slog.Logger) *catalog.Catalog {
	return catalog.New(st, w, log)
}

func newBookings(st *store.Store, w *writer.Writer, log *slog.Logger) *booking.Ledger {
	return booking.New(st, w, booking.WithLogger(log))
}

func newCart(st *store.Store, w *writer.Writer, log *slog.Logger) *cart.Ledger {
	return cart.New(st, w, log)
}

func newSession(st *store.Store, w *writer.Writer) *session.Holder {
	return session.New(st, w)
}

func newCheckout(w *writer.Writer, c *cart.Ledger, b *booking.Ledger, log *slog.Logger) *checkout.Flow {
	return checkout.New(w, c, b, checkout.WithLogger(log))
}
