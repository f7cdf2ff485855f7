// Package data provides the persistence layer for qbatch: job-set metadata
// in PostgreSQL and completed result payloads in Redis.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/qbatch/qbatch/internal/data/pgxutil"
	"github.com/qbatch/qbatch/internal/domain/model"
	apperrors "github.com/qbatch/qbatch/internal/errors"
)

// PGJobSetRepo implements core.JobSetRepository on PostgreSQL.
type PGJobSetRepo struct {
	db           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// JobSetRepoConfig holds options for PGJobSetRepo.
type JobSetRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewPGJobSetRepo creates a new PGJobSetRepo with the given database connection.
func NewPGJobSetRepo(db *sql.DB, cfg JobSetRepoConfig) *PGJobSetRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	var logger *slog.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger.With("component", "jobset_repo")
	}

	return &PGJobSetRepo{
		db:           db,
		timeProvider: tp,
		logger:       logger,
	}
}

const jobSetColumns = `id, name, backend_name, tags, created_at, updated_at`

const jobColumns = `job_set_id, position, job_id, name, start_index, experiment_count, submit_error`

// Save stores the record, replacing any previous record with the same ID.
// The set row and its job rows are written in one transaction.
func (r *PGJobSetRepo) Save(ctx context.Context, rec *model.JobSetRecord) error {
	if rec == nil {
		return apperrors.Validation("job set record is required")
	}
	if err := rec.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	tags, err := json.Marshal(tagsOrEmpty(rec.Tags))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal tags")
	}

	now := r.timeProvider.Now()
	txErr := pgxutil.WithSQLTx(ctx, r.db, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			_, execErr := tx.ExecContext(ctx, `
				INSERT INTO job_sets (id, name, backend_name, tags, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $5)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					backend_name = EXCLUDED.backend_name,
					tags = EXCLUDED.tags,
					updated_at = EXCLUDED.updated_at`,
				rec.ID, rec.Name, rec.BackendName, tags, now)
			if execErr != nil {
				return fmt.Errorf("upsert job set: %w", execErr)
			}

			if _, execErr = tx.ExecContext(ctx,
				`DELETE FROM job_set_jobs WHERE job_set_id = $1`, rec.ID); execErr != nil {
				return fmt.Errorf("clear job rows: %w", execErr)
			}

			for i := range rec.Jobs {
				j := &rec.Jobs[i]
				if _, execErr = tx.ExecContext(ctx, `
					INSERT INTO job_set_jobs (`+jobColumns+`)
					VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					rec.ID, j.Position, j.JobID, j.Name,
					j.StartIndex, j.ExperimentCount, j.SubmitError); execErr != nil {
					return fmt.Errorf("insert job row %d: %w", j.Position, execErr)
				}
			}
			return nil
		},
	})
	if txErr != nil {
		return apperrors.MapDBError(txErr)
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "job set saved", "job_set_id", rec.ID, "jobs", len(rec.Jobs))
	}
	return nil
}

// GetByID fetches one record.
func (r *PGJobSetRepo) GetByID(ctx context.Context, id string) (*model.JobSetRecord, error) {
	if id == "" {
		return nil, apperrors.Validation("job set id is required")
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+jobSetColumns+`
		FROM job_sets
		WHERE id = $1`, id)
	rec, err := scanJobSet(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	if err := r.loadJobs(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByName fetches the most recently created record with the given name.
func (r *PGJobSetRepo) GetByName(ctx context.Context, name string) (*model.JobSetRecord, error) {
	if name == "" {
		return nil, apperrors.Validation("job set name is required")
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+jobSetColumns+`
		FROM job_sets
		WHERE name = $1
		ORDER BY created_at DESC
		LIMIT 1`, name)
	rec, err := scanJobSet(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	if err := r.loadJobs(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records ordered by creation time, newest first. Job rows are
// loaded for each record.
func (r *PGJobSetRepo) List(ctx context.Context, limit, offset int) ([]*model.JobSetRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+jobSetColumns+`
		FROM job_sets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer closeRows(rows, r.logger)

	var recs []*model.JobSetRecord
	for rows.Next() {
		rec, scanErr := scanJobSet(rows)
		if scanErr != nil {
			return nil, apperrors.MapDBError(scanErr)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	for _, rec := range recs {
		if err := r.loadJobs(ctx, rec); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// Delete removes a record and its job rows. Returns true if a record was deleted.
func (r *PGJobSetRepo) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, apperrors.Validation("job set id is required")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM job_sets WHERE id = $1`, id)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return n > 0, nil
}

func (r *PGJobSetRepo) loadJobs(ctx context.Context, rec *model.JobSetRecord) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT position, job_id, name, start_index, experiment_count, submit_error
		FROM job_set_jobs
		WHERE job_set_id = $1
		ORDER BY position ASC`, rec.ID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	defer closeRows(rows, r.logger)

	for rows.Next() {
		var j model.JobRecord
		if scanErr := rows.Scan(&j.Position, &j.JobID, &j.Name,
			&j.StartIndex, &j.ExperimentCount, &j.SubmitError); scanErr != nil {
			return apperrors.MapDBError(scanErr)
		}
		rec.Jobs = append(rec.Jobs, j)
	}
	if err := rows.Err(); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobSet(row rowScanner) (*model.JobSetRecord, error) {
	var (
		rec  model.JobSetRecord
		tags []byte
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.BackendName, &tags,
		&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &rec.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if len(rec.Tags) == 0 {
		rec.Tags = nil
	}
	return &rec, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func closeRows(rows *sql.Rows, logger *slog.Logger) {
	if err := rows.Close(); err != nil && logger != nil {
		logger.Warn("failed to close rows", "error", err)
	}
}
