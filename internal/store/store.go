package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (slots without revision)
// 1 - Added slots.revision
const currentSchemaVersion = 1

// Store provides durable slot storage for the local data layer.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the current document of a slot.
// An absent slot yields a Snapshot with Exists=false and no error.
func (s *Store) Load(ctx context.Context, slot Slot) (Snapshot, error) {
	if err := slot.check(); err != nil {
		return Snapshot{}, fmt.Errorf("load slot: %w", err)
	}

	var (
		doc       string
		revision  int64
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT doc, revision, updated_at
		FROM slots
		WHERE name = ?
	`, string(slot)).Scan(&doc, &revision, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{Slot: slot}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load slot %s: %w", slot, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		// The timestamp is informational; a bad value must not hide the doc.
		ts = time.Time{}
	}

	return Snapshot{
		Slot:      slot,
		Doc:       []byte(doc),
		Revision:  revision,
		Exists:    true,
		UpdatedAt: ts,
	}, nil
}

// Save replaces the whole document of a slot and bumps its revision.
// The document is stored as given; no shape check is made here.
func (s *Store) Save(ctx context.Context, slot Slot, doc []byte) error {
	if err := slot.check(); err != nil {
		return fmt.Errorf("save slot: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (name, doc, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			doc = excluded.doc,
			revision = slots.revision + 1,
			updated_at = excluded.updated_at
	`,
		string(slot),
		string(doc),
		s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

// Remove deletes a slot. Removing an absent slot is not an error.
func (s *Store) Remove(ctx context.Context, slot Slot) error {
	if err := slot.check(); err != nil {
		return fmt.Errorf("remove slot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, string(slot)); err != nil {
		return fmt.Errorf("remove slot %s: %w", slot, err)
	}
	return nil
}

// Slots lists every stored slot ordered by name.
func (s *Store) Slots(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, revision, length(doc), updated_at
		FROM slots
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	infos := []SlotInfo{}
	for rows.Next() {
		var (
			info      SlotInfo
			name      string
			updatedAt string
		)
		if err := rows.Scan(&name, &info.Revision, &info.Size, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		info.Name = Slot(name)
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return infos, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds slots.revision to databases created before revisions
// existed. New databases already get the column from schema.sql.
func migrateToV1(db *sql.DB) error {
	has, err := hasColumn(db, "slots", "revision")
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	if has {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE slots ADD COLUMN revision INTEGER NOT NULL DEFAULT 1`); err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
