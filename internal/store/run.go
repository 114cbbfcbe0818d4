package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Run represents one recorded regression batch.
type Run struct {
	ID             string
	AnnotationFile string
	Total          int
	Succeeded      int
	CreatedAt      time.Time
}

// RunResult is the per-image outcome persisted for a run.
type RunResult struct {
	Image   string
	Success bool
}

// RunRepository provides access to recorded regression runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

// Record inserts a run and its per-image results in a single transaction.
// Results are stored in slice order so the batch order is reproducible.
// A missing run ID is filled in with a fresh UUID.
func (r *RunRepository) Record(run *Run, results []RunResult) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = time.Now()
	run.Total = len(results)
	run.Succeeded = 0
	for _, res := range results {
		if res.Success {
			run.Succeeded++
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, annotation_file, total, succeeded, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.AnnotationFile, run.Total, run.Succeeded, run.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, res := range results {
		_, err = tx.Exec(
			`INSERT INTO run_results (run_id, position, image, success)
			 VALUES (?, ?, ?, ?)`,
			run.ID, i, res.Image, res.Success,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	run := &Run{}

	err := r.db.QueryRow(
		`SELECT id, annotation_file, total, succeeded, created_at
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.AnnotationFile, &run.Total, &run.Succeeded, &run.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return run, nil
}

// List retrieves all recorded runs, newest first.
func (r *RunRepository) List() ([]*Run, error) {
	rows, err := r.db.Query(
		`SELECT id, annotation_file, total, succeeded, created_at
		 FROM runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(&run.ID, &run.AnnotationFile, &run.Total, &run.Succeeded, &run.CreatedAt)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Results retrieves the per-image outcomes of a run in batch order.
func (r *RunRepository) Results(runID string) ([]RunResult, error) {
	rows, err := r.db.Query(
		`SELECT image, success FROM run_results
		 WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var res RunResult
		if err := rows.Scan(&res.Image, &res.Success); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Delete removes a run and its results by run ID.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
