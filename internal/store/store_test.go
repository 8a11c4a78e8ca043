package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.Save(ctx, SlotCart, []byte(`[]`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	snap, err := s2.Load(ctx, SlotCart)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !snap.Exists || string(snap.Doc) != `[]` {
		t.Errorf("slot not persisted across reopen: %+v", snap)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		"slots",
	).Scan(&name)
	if err != nil {
		t.Errorf("table slots not found after idempotent opens: %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_MigratesPreRevisionDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE slots (name TEXT PRIMARY KEY, doc TEXT NOT NULL, updated_at TEXT NOT NULL)`)
	if err != nil {
		t.Fatalf("create v0 table: %v", err)
	}
	_, err = db.Exec(`INSERT INTO slots (name, doc, updated_at) VALUES ('cart', '[]', '')`)
	if err != nil {
		t.Fatalf("insert v0 row: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() on v0 database failed: %v", err)
	}
	defer s.Close()

	columns := getTableColumns(t, s.db, "slots")
	if !contains(columns, "revision") {
		t.Fatalf("revision column not added, got %v", columns)
	}

	snap, err := s.Load(context.Background(), SlotCart)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if snap.Revision != 1 {
		t.Errorf("migrated revision = %d, want 1", snap.Revision)
	}
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close should not panic (though may error)
	_ = s.Close()
}

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestSchema_SlotsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "slots")
	for _, col := range []string{"name", "doc", "revision", "updated_at"} {
		if !contains(columns, col) {
			t.Errorf("slots table missing column %q", col)
		}
	}
}

func TestLoad_AbsentSlot(t *testing.T) {
	s := createTestStore(t)

	snap, err := s.Load(context.Background(), SlotBookings)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if snap.Exists {
		t.Error("absent slot reported as existing")
	}
	if snap.Doc != nil || snap.Revision != 0 {
		t.Errorf("absent slot snapshot not empty: %+v", snap)
	}
	if snap.Slot != SlotBookings {
		t.Errorf("snapshot slot = %q", snap.Slot)
	}
}

func TestSave_BumpsRevision(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := s.Save(ctx, SlotServices, []byte(`[]`)); err != nil {
			t.Fatalf("Save() #%d failed: %v", i, err)
		}
		snap, err := s.Load(ctx, SlotServices)
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if snap.Revision != int64(i) {
			t.Errorf("revision after save #%d = %d", i, snap.Revision)
		}
		if !snap.UpdatedAt.Equal(testNow) {
			t.Errorf("updated_at = %v, want %v", snap.UpdatedAt, testNow)
		}
	}
}

func TestSave_OverwritesWholeDocument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, SlotCart, []byte(`[{"id":"1"},{"id":"2"}]`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Save(ctx, SlotCart, []byte(`[{"id":"3"}]`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	snap, err := s.Load(ctx, SlotCart)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(snap.Doc) != `[{"id":"3"}]` {
		t.Errorf("doc = %s", snap.Doc)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, SlotCart, []byte(`["cart"]`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Save(ctx, SlotBookings, []byte(`["bookings"]`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	cart, _ := s.Load(ctx, SlotCart)
	bookings, _ := s.Load(ctx, SlotBookings)
	if string(cart.Doc) != `["cart"]` || string(bookings.Doc) != `["bookings"]` {
		t.Errorf("slots interfered: cart=%s bookings=%s", cart.Doc, bookings.Doc)
	}
}

func TestRemove(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, SlotUser, []byte(`{"id":"u1"}`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := s.Remove(ctx, SlotUser); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	snap, err := s.Load(ctx, SlotUser)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if snap.Exists {
		t.Error("slot still exists after Remove")
	}

	// Removing again is fine
	if err := s.Remove(ctx, SlotUser); err != nil {
		t.Errorf("second Remove() failed: %v", err)
	}
}

func TestUnknownSlotRejected(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, Slot("providers"), []byte(`[]`)); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("Save() err = %v, want ErrUnknownSlot", err)
	}
	if _, err := s.Load(ctx, Slot("")); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("Load() err = %v, want ErrUnknownSlot", err)
	}
	if err := s.Remove(ctx, Slot("x")); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("Remove() err = %v, want ErrUnknownSlot", err)
	}
}

func TestSlots_ListsStoredSlots(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	infos, err := s.Slots(ctx)
	if err != nil {
		t.Fatalf("Slots() failed: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("fresh store lists %d slots", len(infos))
	}

	_ = s.Save(ctx, SlotUser, []byte(`{"id":"u1"}`))
	_ = s.Save(ctx, SlotCart, []byte(`[]`))
	_ = s.Save(ctx, SlotCart, []byte(`[1]`))

	infos, err = s.Slots(ctx)
	if err != nil {
		t.Fatalf("Slots() failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Slots() returned %d entries, want 2", len(infos))
	}
	if infos[0].Name != SlotCart || infos[0].Revision != 2 || infos[0].Size != 3 {
		t.Errorf("cart info = %+v", infos[0])
	}
	if infos[1].Name != SlotUser || infos[1].Revision != 1 {
		t.Errorf("user info = %+v", infos[1])
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
