// Package store provides SQLite-backed durable storage for sortstep runs.
//
// The store keeps:
//   - Runs: one precomputed calculation (algorithm, input, output, hashes)
//   - Run events: the run's full event log, one row per event
//   - Snapshots: named engine states, LZ4-compressed
//
// # Critical Patterns
//
// Logical ordering:
//   - Runs and events are ordered by seq INTEGER, never by timestamps
//   - All multi-row queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Content addressing:
//   - input_hash and log_hash come from internal/ir/hash.go, so a stored
//     run can be checked against a fresh recalculation byte for byte
//
// Atomic writes:
//   - A run row and all of its events are written in one transaction
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
