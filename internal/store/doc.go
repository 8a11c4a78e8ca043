// Package store provides SQLite-backed durable storage for the local data layer.
//
// The store is a small key-value table of named slots. Each slot holds one
// JSON document:
//   - bookings: sequence of Booking
//   - cart:     sequence of Service
//   - services: sequence of Service (admin-managed, seed data never lands here)
//   - user:     single User, or absent
//
// # Write Semantics
//
// A save replaces the whole document of a slot. There are no partial
// updates. Every save bumps the slot's revision so readers can tell two
// snapshots apart. Coordination of concurrent read-modify-write sequences
// is not done here; mutations are serialised by internal/writer.
//
// # Read Semantics
//
// An absent slot reads as an empty snapshot. The typed helpers (LoadList,
// LoadDoc) never fail on malformed documents: they log a warning and
// return an empty list or a nil document. Backend errors are returned.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: one writer at a time
package store
