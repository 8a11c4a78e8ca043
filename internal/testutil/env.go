// Package testutil holds shared test scaffolding: a manual clock, a
// throwaway store plus running writer, and model fixtures.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/writer"
)

// Env is an opened store with a running writer, torn down by t.Cleanup.
type Env struct {
	Store  *store.Store
	Writer *writer.Writer
	Clock  *Clock
}

// NewEnv opens a fresh database in t.TempDir and starts a writer over it.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	clock := NewClock(time.Time{})
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), store.WithClock(clock.Now))
	require.NoError(t, err)

	w := writer.New()
	stop := w.Start(context.Background())

	t.Cleanup(func() {
		stop()
		st.Close()
	})

	return &Env{Store: st, Writer: w, Clock: clock}
}

// Seed writes raw bytes into slot, bypassing the writer.
func (e *Env) Seed(t *testing.T, slot store.Slot, doc string) {
	t.Helper()
	require.NoError(t, e.Store.Save(context.Background(), slot, []byte(doc)))
}

// Raw returns the stored document of slot as a string.
func (e *Env) Raw(t *testing.T, slot store.Slot) string {
	t.Helper()
	snap, err := e.Store.Load(context.Background(), slot)
	require.NoError(t, err)
	return string(snap.Doc)
}
