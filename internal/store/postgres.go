package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/pskc-research/sunassign/internal/db"
	"github.com/pskc-research/sunassign/internal/model"
)

// PostgresStore implements Store using pgxpool. Bulk tables load through the
// COPY protocol; the region-day table easily runs to hundreds of thousands of
// rows per run.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	window_start DATE NOT NULL,
	window_end   DATE NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	regions      INTEGER NOT NULL DEFAULT 0,
	assignments  INTEGER NOT NULL DEFAULT 0,
	intervals    INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS region_day_assignments (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	region_code TEXT NOT NULL,
	resid_area  TEXT NOT NULL,
	date        DATE NOT NULL,
	method      TEXT NOT NULL,
	station_id  INTEGER NOT NULL,
	distance_m  DOUBLE PRECISION NOT NULL,
	sun_hours   DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS assignment_intervals (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	region_code     TEXT NOT NULL,
	resid_area      TEXT NOT NULL,
	method          TEXT NOT NULL,
	station_id      INTEGER NOT NULL,
	start_date      DATE NOT NULL,
	end_date        DATE NOT NULL,
	mean_distance_m DOUBLE PRECISION NOT NULL,
	n_days          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS monthly_sunlight (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	region_code TEXT NOT NULL,
	resid_area  TEXT NOT NULL,
	ym          TEXT NOT NULL,
	method      TEXT NOT NULL,
	sun_hr_sum  DOUBLE PRECISION NOT NULL,
	n_days      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rda_run_region ON region_day_assignments(run_id, region_code, date);
CREATE INDEX IF NOT EXISTS idx_intervals_run ON assignment_intervals(run_id, region_code);
CREATE INDEX IF NOT EXISTS idx_monthly_run ON monthly_sunlight(run_id, region_code, ym);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, windowStart, windowEnd time.Time) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, window_start, window_end, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, windowStart, windowEnd, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:          id,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Status:      model.RunStatusRunning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, regions, assignments, intervals int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, regions = $2, assignments = $3, intervals = $4, updated_at = $5 WHERE id = $6`,
		string(model.RunStatusComplete), regions, assignments, intervals, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: complete run")
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), cause, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: fail run")
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, window_start, window_end, status, regions, assignments, intervals, COALESCE(error, ''), created_at, updated_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.WindowStart, &r.WindowEnd, &r.Status,
			&r.Regions, &r.Assignments, &r.Intervals, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

var assignmentColumns = []string{
	"run_id", "region_code", "resid_area", "date", "method", "station_id", "distance_m", "sun_hours",
}

func (s *PostgresStore) SaveAssignments(ctx context.Context, runID string, assignments []model.Assignment) error {
	rows := make([][]any, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, []any{
			runID, a.RegionCode, a.ResidArea, a.Date, string(a.Policy), a.StationID, a.DistanceM, a.Value,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "region_day_assignments", assignmentColumns, rows)
	return eris.Wrap(err, "postgres: save assignments")
}

var intervalColumns = []string{
	"run_id", "region_code", "resid_area", "method", "station_id", "start_date", "end_date", "mean_distance_m", "n_days",
}

func (s *PostgresStore) SaveIntervals(ctx context.Context, runID string, intervals []model.Interval) error {
	rows := make([][]any, 0, len(intervals))
	for _, iv := range intervals {
		rows = append(rows, []any{
			runID, iv.RegionCode, iv.ResidArea, string(iv.Policy), iv.StationID, iv.Start, iv.End, iv.MeanDistM, iv.Days,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "assignment_intervals", intervalColumns, rows)
	return eris.Wrap(err, "postgres: save intervals")
}

var monthlyColumns = []string{
	"run_id", "region_code", "resid_area", "ym", "method", "sun_hr_sum", "n_days",
}

func (s *PostgresStore) SaveMonthly(ctx context.Context, runID string, monthly []model.MonthlyAggregate) error {
	rows := make([][]any, 0, len(monthly))
	for _, m := range monthly {
		rows = append(rows, []any{
			runID, m.RegionCode, m.ResidArea, m.YearMonth, string(m.Policy), m.ValueSum, m.Days,
		})
	}
	_, err := db.CopyFrom(ctx, s.pool, "monthly_sunlight", monthlyColumns, rows)
	return eris.Wrap(err, "postgres: save monthly")
}
