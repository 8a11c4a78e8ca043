package writer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/easybook/internal/store"
)

// ErrStopped is returned by Do once the Writer no longer accepts jobs.
var ErrStopped = errors.New("writer stopped")

// Submitter runs a mutation job on the single writer goroutine.
// *Writer implements it; ledgers depend on this interface.
type Submitter interface {
	Do(ctx context.Context, slot store.Slot, fn func(ctx context.Context) error) error
}

// Writer is the single-writer mutation loop shared by every slot.
type Writer struct {
	queue *jobQueue
	clock *Clock
	log   *slog.Logger

	stopOnce sync.Once
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger used by the Run loop.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		w.log = l
	}
}

// New creates a Writer. Nothing runs until Run or Start is called.
func New(opts ...Option) *Writer {
	w := &Writer{
		queue: newJobQueue(),
		clock: NewClock(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Do submits fn as a mutation of slot and waits for it to finish.
//
// Returns fn's error, ErrStopped if the Writer has stopped, or ctx.Err()
// if ctx ends first. A job whose context is already done when its turn
// comes is skipped. If Do returns ctx.Err() while the job was running,
// the mutation may still have been applied.
func (w *Writer) Do(ctx context.Context, slot store.Slot, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j := &job{
		ctx:  ctx,
		slot: slot,
		fn:   fn,
		done: make(chan error, 1),
	}
	if !w.queue.Enqueue(j) {
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes queued jobs in FIFO order.
// Blocks until ctx is cancelled or Stop() is called.
//
// Must be called from exactly ONE goroutine. A failing job does not stop
// the loop: its error goes back to the submitter and is logged.
func (w *Writer) Run(ctx context.Context) error {
	w.log.Info("writer starting")

	for {
		if j, ok := w.queue.TryDequeue(); ok {
			w.execute(j)
			continue
		}

		select {
		case <-ctx.Done():
			w.log.Info("writer stopping: context cancelled")
			w.Stop()
			return ctx.Err()

		case _, open := <-w.queue.Wait():
			if !open {
				w.log.Info("writer stopping: queue closed")
				return nil
			}
		}
	}
}

// Start runs the loop on its own goroutine. The returned function stops
// the Writer and waits for the loop to exit.
func (w *Writer) Start(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	return func() {
		w.Stop()
		<-done
	}
}

// Stop closes the queue. Jobs still waiting fail with ErrStopped and
// later calls to Do return ErrStopped.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		for _, j := range w.queue.Close() {
			j.done <- ErrStopped
		}
	})
}

// Pending returns how many submitted jobs are waiting to run.
func (w *Writer) Pending() int {
	return w.queue.Len()
}

// Seq returns the sequence number of the last executed job.
func (w *Writer) Seq() int64 {
	return w.clock.Current()
}

// execute runs one job. Called only from Run.
func (w *Writer) execute(j *job) {
	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}

	seq := w.clock.Next()
	w.log.Debug("mutation started", "slot", j.slot, "seq", seq)

	err := j.fn(j.ctx)
	if err != nil {
		w.log.Warn("mutation failed",
			"slot", j.slot,
			"seq", seq,
			"error", err,
		)
	} else {
		w.log.Debug("mutation applied", "slot", j.slot, "seq", seq)
	}
	j.done <- err
}
