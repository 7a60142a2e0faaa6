package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/sortstep/internal/ir"
)

// Run is the stored summary of one precomputed calculation.
type Run struct {
	ID            string
	Seq           int64
	Algorithm     ir.AlgorithmType
	Input         []int
	Output        []int
	InputHash     string
	LogHash       string
	EventCount    int
	EngineVersion string
	LogVersion    string
}

// NewRun builds the run record for log, calculated by algo over input.
// Output is input with log replayed onto it. ID and Seq are assigned by
// WriteRun.
func NewRun(algo ir.AlgorithmType, input []int, log []ir.Event) (Run, error) {
	logHash, err := ir.LogHash(log)
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	return Run{
		Algorithm:     algo,
		Input:         append([]int{}, input...),
		Output:        ir.Replay(input, log),
		InputHash:     ir.InputHash(input),
		LogHash:       logHash,
		EventCount:    len(log),
		EngineVersion: ir.EngineVersion,
		LogVersion:    ir.LogVersion,
	}, nil
}

// WriteRun stores run and its event log in one transaction and returns the
// stored record with its assigned ID and Seq.
//
// A run without an ID gets a UUIDv7. Seq is the next value of the store's
// run counter, so runs list in write order.
func (s *Store) WriteRun(ctx context.Context, run Run, log []ir.Event) (Run, error) {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Run{}, fmt.Errorf("write run: generate id: %w", err)
		}
		run.ID = id.String()
	}
	run.EventCount = len(log)

	inputJSON, err := marshalValues(run.Input)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	outputJSON, err := marshalValues(run.Output)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, algorithm, input, output, input_hash, log_hash, event_count, engine_version, log_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Algorithm.String(),
		inputJSON,
		outputJSON,
		run.InputHash,
		run.LogHash,
		run.EventCount,
		run.EngineVersion,
		run.LogVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_events (run_id, seq, type, elements, value_a, value_b)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run: prepare events: %w", err)
	}
	defer stmt.Close()

	for i, ev := range log {
		elems, err := marshalElements(ev.Elements)
		if err != nil {
			return Run{}, fmt.Errorf("write run: event %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, ev.Type.String(), elems, ev.ValueA, ev.ValueB); err != nil {
			return Run{}, fmt.Errorf("write run: event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// DeleteRun removes a run and its events. Deleting a missing run is not an
// error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
