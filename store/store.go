// Package store keeps the run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"autoPallet/errs"
	"autoPallet/models"
)

// Run is one stored palletization.
type Run struct {
	ID           string                      `json:"id"`
	SKU          string                      `json:"sku"`
	CreatedAt    time.Time                   `json:"created_at"`
	Request      models.PalletizationRequest `json:"request"`
	ItemCount    int                         `json:"item_count"`
	Utilization  float64                     `json:"utilization"`
	Validated    bool                        `json:"validated"`
	ArtifactPath string                      `json:"artifact_path,omitempty"`
	Plan         *models.Plan                `json:"plan,omitempty"`
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and makes sure the runs
// table exists. ":memory:" works for throwaway stores.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorage, err, "open %s", path)
	}
	// One writer; sqlite serialises anyway.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			request_json TEXT NOT NULL,
			plan_json TEXT NOT NULL,
			item_count INTEGER NOT NULL,
			utilization DOUBLE NOT NULL,
			validated BOOLEAN NOT NULL,
			artifact_path TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`)
	if err != nil {
		db.Close()
		return nil, errs.Wrap(errs.CodeStorage, err, "create schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// NewRun builds a Run for a finished plan with a fresh id.
func NewRun(sku string, req models.PalletizationRequest, plan models.Plan) Run {
	return Run{
		ID:          uuid.NewString(),
		SKU:         sku,
		CreatedAt:   time.Now().UTC(),
		Request:     req,
		ItemCount:   plan.ItemCount(),
		Utilization: plan.Utilization(),
		Validated:   plan.Validated,
		Plan:        &plan,
	}
}

// SaveRun inserts run. An empty ID is filled with a new UUID.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	plan := run.Plan
	if plan == nil {
		plan = &models.Plan{}
	}

	reqJSON, err := json.Marshal(run.Request)
	if err != nil {
		return errs.Wrap(errs.CodeInternal, err, "marshal request")
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return errs.Wrap(errs.CodeInternal, err, "marshal plan")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, sku, created_at, request_json, plan_json, item_count, utilization, validated, artifact_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SKU, run.CreatedAt, string(reqJSON), string(planJSON),
		run.ItemCount, run.Utilization, run.Validated, run.ArtifactPath)
	if err != nil {
		return errs.Wrap(errs.CodeStorage, err, "insert run %s", run.ID)
	}
	return nil
}

// SetArtifact records where a run's artifact was written.
func (s *Store) SetArtifact(ctx context.Context, id, path string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE runs SET artifact_path = ? WHERE id = ?", path, id)
	if err != nil {
		return errs.Wrap(errs.CodeStorage, err, "update run %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.New(errs.CodeNotFound, "run %s not found", id)
	}
	return nil
}

// GetRun loads a run including its plan.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sku, created_at, request_json, plan_json, item_count, utilization, validated, artifact_path
		FROM runs WHERE id = ?`, id)

	var run Run
	var reqJSON, planJSON string
	err := row.Scan(&run.ID, &run.SKU, &run.CreatedAt, &reqJSON, &planJSON,
		&run.ItemCount, &run.Utilization, &run.Validated, &run.ArtifactPath)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errs.New(errs.CodeNotFound, "run %s not found", id)
	}
	if err != nil {
		return Run{}, errs.Wrap(errs.CodeStorage, err, "read run %s", id)
	}

	if err := json.Unmarshal([]byte(reqJSON), &run.Request); err != nil {
		return Run{}, errs.Wrap(errs.CodeStorage, err, "decode request of run %s", id)
	}
	var plan models.Plan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return Run{}, errs.Wrap(errs.CodeStorage, err, "decode plan of run %s", id)
	}
	run.Plan = &plan
	return run, nil
}

// ListRuns returns the most recent runs first, without their plans.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, created_at, request_json, item_count, utilization, validated, artifact_path
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorage, err, "list runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var reqJSON string
		if err := rows.Scan(&run.ID, &run.SKU, &run.CreatedAt, &reqJSON,
			&run.ItemCount, &run.Utilization, &run.Validated, &run.ArtifactPath); err != nil {
			return nil, errs.Wrap(errs.CodeStorage, err, "scan run")
		}
		if err := json.Unmarshal([]byte(reqJSON), &run.Request); err != nil {
			return nil, errs.Wrap(errs.CodeStorage, err, "decode request of run %s", run.ID)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeStorage, err, "list runs")
	}
	return runs, nil
}
