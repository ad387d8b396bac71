package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdf-fields/constants"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored batch execution.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Documents  int
	Failed     int
	Columns    []string
}

type RunRepository interface {
	SaveRun(ctx context.Context, run Run, records []*entity.Record) error
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	ListRecords(ctx context.Context, id uuid.UUID) ([]*entity.Record, error)
}

type runRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db.SQL, log: log}
}

// SaveRun stores the run and its records, row for row, in a single transaction.
func (r *runRepo) SaveRun(ctx context.Context, run Run, records []*entity.Record) (err error) {
	cols, err := json.Marshal(run.Columns)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO extract_runs (id, started_at, finished_at, documents, failed, columns) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID.String(), formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Documents, run.Failed, string(cols),
	); err != nil {
		r.log.Error("extract_run insert failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("insert run: %w", err)
	}

	for i, rec := range records {
		var values []byte
		values, err = json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO extract_records (run_id, row_index, filename, status, error, values_json) VALUES ($1, $2, $3, $4, $5, $6)`,
			run.ID.String(), i, rec.Filename(), string(rec.Status), rec.Error, string(values),
		); err != nil {
			r.log.Error("extract_record insert failed", "run_id", run.ID, "row", i, "err", err)
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Info("extract_run saved", "run_id", run.ID, "records", len(records), "failed", run.Failed)
	return nil
}

func (r *runRepo) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var (
		run               Run
		started, finished string
		cols              string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT started_at, finished_at, documents, failed, columns FROM extract_runs WHERE id = $1`, id.String(),
	).Scan(&started, &finished, &run.Documents, &run.Failed, &cols)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	run.ID = id
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Run{}, fmt.Errorf("finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(cols), &run.Columns); err != nil {
		return Run{}, fmt.Errorf("columns: %w", err)
	}
	return run, nil
}

// ListRecords rebuilds the records of a run in row order. Keys follow the run's column
// order; a stored null becomes an absent value.
func (r *runRepo) ListRecords(ctx context.Context, id uuid.UUID) ([]*entity.Record, error) {
	run, err := r.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT filename, status, error, values_json FROM extract_records WHERE run_id = $1 ORDER BY row_index`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Record
	for rows.Next() {
		var filename, status, errMsg, values string
		if err := rows.Scan(&filename, &status, &errMsg, &values); err != nil {
			return nil, err
		}
		var m map[string]*string
		if err := json.Unmarshal([]byte(values), &m); err != nil {
			return nil, fmt.Errorf("decode record %q: %w", filename, err)
		}

		rec := entity.NewRecord(filename)
		for _, c := range run.Columns {
			if c == constants.FilenameColumn {
				continue
			}
			v, ok := m[c]
			if !ok {
				continue
			}
			if v == nil {
				rec.Set(c, entity.Missing())
			} else {
				rec.Set(c, entity.Present(*v))
			}
		}
		rec.Status = constants.RecordStatus(status)
		rec.Error = errMsg
		out = append(out, rec)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
