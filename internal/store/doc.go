// Package store provides SQLite-backed durable storage for the run log.
//
// Every execution recorded by `bfe run --db` becomes one row in the runs
// table: the program bytes and their hash, the input the program consumed,
// the output it produced, the final machine state and the settings it ran
// under. `bfe replay` reads runs back and re-executes them.
//
// # Ordering
//
//   - Runs are ordered by seq INTEGER (logical clock), NEVER timestamps
//   - seq is assigned as MAX(seq)+1 inside the write transaction
//   - All queries use: ORDER BY seq ASC, id COLLATE BINARY ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Run IDs come from a RunIDGenerator; UUIDv7Generator in production and
// FixedGenerator in tests.
package store
