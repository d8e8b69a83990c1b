// Package store provides durable storage for widgets, gadgets and function
// results.
//
// The store backs three collaborators of the execution engine:
//   - WidgetStore: widget name -> ordered parts
//   - GadgetStore: gadget name -> ordered widget references + functions
//   - RecordStore: immutable function results keyed by id and token
//
// # Backends
//
// SQLite (github.com/mattn/go-sqlite3) is the default. A DSN starting with
// postgres:// or postgresql:// selects PostgreSQL through the pgx stdlib
// driver. Both use the same schema; queries are written with ? placeholders
// and rebound for PostgreSQL.
//
// # Deterministic Query Results
//
// List queries order by name, or by (start, id) for results, so repeated
// reads return identical slices.
//
// # SQLite Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Function results are never updated or deleted once written.
package store
