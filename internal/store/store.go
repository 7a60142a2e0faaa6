package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a run log from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations are applied in order on top of schema.sql. Version 0 is the
// bare runs/run_events/snapshots layout.
var migrations = []migration{
	{
		version: 1,
		name:    "run_events by type",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_run_events_type ON run_events(run_id, type)`,
	},
	{
		version: 2,
		name:    "runs by algorithm",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_runs_algorithm ON runs(algorithm, seq)`,
	},
}

// currentSchemaVersion is the user_version a fully migrated run log carries.
var currentSchemaVersion = migrations[len(migrations)-1].version

// pragma is a connection setting applied on Open and read back to confirm
// SQLite accepted it. want is the value PRAGMA reports after the set.
type pragma struct {
	name  string
	value string
	want  string
}

// Runs are written in one transaction per run while replay/trace readers
// may hold the file open, hence WAL and a busy timeout. run_events cascade
// from runs, which needs foreign_keys.
var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", want: "wal"},
	{name: "synchronous", value: "NORMAL", want: "1"},
	{name: "busy_timeout", value: "5000", want: "5000"},
	{name: "foreign_keys", value: "ON", want: "1"},
}

// Store provides durable storage for sortstep runs and snapshots.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run log at path, applies pragmas and brings the
// schema to currentSchemaVersion. A log written by a newer sortstep is
// rejected rather than downgraded.
//
// ":memory:" opens a private in-memory log; WAL is not available there and
// its journal_mode is not checked.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to run log: %w", err)
	}

	// One writer; a single connection also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.applyPragmas(path == ":memory:"); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.applySchema(); err != nil {
		db.Close()
		return nil, err
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

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SchemaVersion reports the run log's user_version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func (s *Store) applyPragmas(inMemory bool) error {
	for _, p := range pragmas {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to set %s: %w", p.name, err)
		}
		if inMemory && p.name == "journal_mode" {
			continue
		}
		if err := s.verifyPragma(p.name, p.want); err != nil {
			return fmt.Errorf("run log rejected pragma: %w", err)
		}
	}
	return nil
}

func (s *Store) applySchema() error {
	version, err := s.SchemaVersion(context.Background())
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("run log schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create run log tables: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := s.db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set schema version %d: %w", m.version, err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
