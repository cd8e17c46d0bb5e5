package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("spectrum run not found")

// SpectrumRun is one persisted model evaluation.
type SpectrumRun struct {
	RunID           string    `json:"run_id"`
	Model           string    `json:"model"`
	Label           string    `json:"label,omitempty"`
	Params          []float64 `json:"params"`
	TBG             float64   `json:"tbg"`
	RestFrequencyHz float64   `json:"rest_frequency_hz"`
	Velocities      []float64 `json:"velocities"`
	Values          []float64 `json:"values"`
	CreatedAt       int64     `json:"created_at"`
}

// SpectrumStore provides persistence for evaluated spectra.
type SpectrumStore struct {
	db *sql.DB
}

// NewSpectrumStore creates a new SpectrumStore.
func NewSpectrumStore(db *sql.DB) *SpectrumStore {
	return &SpectrumStore{db: db}
}

// Insert persists a run. If RunID is empty, a UUID is generated; if
// CreatedAt is zero it is set to now.
func (s *SpectrumStore) Insert(run *SpectrumRun) error {
	if len(run.Velocities) != len(run.Values) {
		return fmt.Errorf("run has %d velocities but %d values", len(run.Velocities), len(run.Values))
	}
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	velocities, err := json.Marshal(run.Velocities)
	if err != nil {
		return fmt.Errorf("marshal velocities: %w", err)
	}
	values, err := json.Marshal(run.Values)
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}

	var label interface{}
	if run.Label != "" {
		label = run.Label
	}

	err = retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO spectrum_runs (
				run_id, model, label, params_json, tbg, rest_frequency_hz,
				velocities_json, values_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Model, label, string(params), run.TBG, run.RestFrequencyHz,
			string(velocities), string(values), run.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	logf("recorded %s run %s (%d samples)", run.Model, run.RunID, len(run.Values))
	return nil
}

const selectRun = `
	SELECT run_id, model, label, params_json, tbg, rest_frequency_hz,
	       velocities_json, values_json, created_at
	FROM spectrum_runs`

// Get returns a single run by ID.
func (s *SpectrumStore) Get(runID string) (*SpectrumRun, error) {
	row := s.db.QueryRow(selectRun+` WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	return run, nil
}

// ListByModel returns all runs of a model, newest first.
func (s *SpectrumStore) ListByModel(model string) ([]*SpectrumRun, error) {
	rows, err := s.db.Query(selectRun+` WHERE model = ? ORDER BY created_at DESC`, model)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*SpectrumRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run by ID.
func (s *SpectrumStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM spectrum_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*SpectrumRun, error) {
	var (
		run                        SpectrumRun
		label                      sql.NullString
		params, velocities, values string
	)
	err := row.Scan(
		&run.RunID, &run.Model, &label, &params, &run.TBG, &run.RestFrequencyHz,
		&velocities, &values, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Label = label.String

	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return nil, fmt.Errorf("run %s params: %w", run.RunID, err)
	}
	if err := json.Unmarshal([]byte(velocities), &run.Velocities); err != nil {
		return nil, fmt.Errorf("run %s velocities: %w", run.RunID, err)
	}
	if err := json.Unmarshal([]byte(values), &run.Values); err != nil {
		return nil, fmt.Errorf("run %s values: %w", run.RunID, err)
	}
	return &run, nil
}
