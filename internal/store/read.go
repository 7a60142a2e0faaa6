package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sortstep/internal/ir"
)

const runColumns = `id, seq, algorithm, input, output, input_hash, log_hash, event_count, engine_version, log_version`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// LatestRun retrieves the run with the highest seq.
// Returns sql.ErrNoRows if the store holds no runs.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)
	return scanRun(row)
}

// ListRuns returns stored runs ordered by seq ASC, id ASC. When algos is
// non-empty only runs of those algorithms are returned.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, algos ...ir.AlgorithmType) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	args := make([]any, 0, len(algos))
	if len(algos) > 0 {
		query += ` WHERE algorithm IN (?` + repeatPlaceholder(len(algos)-1) + `)`
		for _, a := range algos {
			args = append(args, a.String())
		}
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRunEvents returns the event log of a run in seq order. When types is
// non-empty only events of those types are returned.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadRunEvents(ctx context.Context, runID string, types ...ir.EventType) ([]ir.Event, error) {
	query := `
		SELECT type, elements, value_a, value_b
		FROM run_events
		WHERE run_id = ?`
	args := []any{runID}
	if len(types) > 0 {
		query += ` AND type IN (?` + repeatPlaceholder(len(types)-1) + `)`
		for _, t := range types {
			args = append(args, t.String())
		}
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query run events: %w", err)
	}
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		var (
			typeName string
			elemJSON string
			ev       ir.Event
		)
		if err := rows.Scan(&typeName, &elemJSON, &ev.ValueA, &ev.ValueB); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		if ev.Type, err = ir.ParseEventType(typeName); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		if ev.Elements, err = unmarshalElements(elemJSON); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run events: %w", err)
	}
	return events, nil
}

func repeatPlaceholder(n int) string {
	out := make([]byte, 0, n*3)
	for range n {
		out = append(out, ", ?"...)
	}
	return string(out)
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		algoName   string
		inputJSON  string
		outputJSON string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&algoName,
		&inputJSON,
		&outputJSON,
		&run.InputHash,
		&run.LogHash,
		&run.EventCount,
		&run.EngineVersion,
		&run.LogVersion,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if run.Algorithm, err = ir.ParseAlgorithmType(algoName); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.Input, err = unmarshalValues(inputJSON); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.Output, err = unmarshalValues(outputJSON); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
