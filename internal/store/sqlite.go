package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pskc-research/sunassign/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	window_start TEXT NOT NULL,
	window_end   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	regions      INTEGER NOT NULL DEFAULT 0,
	assignments  INTEGER NOT NULL DEFAULT 0,
	intervals    INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS region_day_assignments (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	region_code TEXT NOT NULL,
	resid_area  TEXT NOT NULL,
	date        TEXT NOT NULL,
	method      TEXT NOT NULL,
	station_id  INTEGER NOT NULL,
	distance_m  REAL NOT NULL,
	sun_hours   REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS assignment_intervals (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	region_code     TEXT NOT NULL,
	resid_area      TEXT NOT NULL,
	method          TEXT NOT NULL,
	station_id      INTEGER NOT NULL,
	start_date      TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	mean_distance_m REAL NOT NULL,
	n_days          INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS monthly_sunlight (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	region_code TEXT NOT NULL,
	resid_area  TEXT NOT NULL,
	ym          TEXT NOT NULL,
	method      TEXT NOT NULL,
	sun_hr_sum  REAL NOT NULL,
	n_days      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rda_run_region ON region_day_assignments(run_id, region_code, date);
CREATE INDEX IF NOT EXISTS idx_intervals_run ON assignment_intervals(run_id, region_code);
CREATE INDEX IF NOT EXISTS idx_monthly_run ON monthly_sunlight(run_id, region_code, ym);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, windowStart, windowEnd time.Time) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, window_start, window_end, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, windowStart.Format(dateLayout), windowEnd.Format(dateLayout), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, regions, assignments, intervals int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, regions = ?, assignments = ?, intervals = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), regions, assignments, intervals, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: complete run")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, cause string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), cause, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: fail run")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, window_start, window_end, status, regions, assignments, intervals, COALESCE(error, ''), created_at, updated_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var ws, we string
		if err := rows.Scan(&r.ID, &ws, &we, &r.Status, &r.Regions, &r.Assignments, &r.Intervals, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if r.WindowStart, err = time.Parse(dateLayout, ws); err != nil {
			return nil, eris.Wrap(err, "sqlite: parse window start")
		}
		if r.WindowEnd, err = time.Parse(dateLayout, we); err != nil {
			return nil, eris.Wrap(err, "sqlite: parse window end")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) SaveAssignments(ctx context.Context, runID string, assignments []model.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin assignments tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO region_day_assignments (run_id, region_code, resid_area, date, method, station_id, distance_m, sun_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare assignment insert")
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, runID, a.RegionCode, a.ResidArea,
			a.Date.Format(dateLayout), string(a.Policy), a.StationID, a.DistanceM, a.Value); err != nil {
			return eris.Wrap(err, "sqlite: insert assignment")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit assignments")
}

func (s *SQLiteStore) SaveIntervals(ctx context.Context, runID string, intervals []model.Interval) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin intervals tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignment_intervals (run_id, region_code, resid_area, method, station_id, start_date, end_date, mean_distance_m, n_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare interval insert")
	}
	defer stmt.Close()

	for _, iv := range intervals {
		if _, err := stmt.ExecContext(ctx, runID, iv.RegionCode, iv.ResidArea, string(iv.Policy),
			iv.StationID, iv.Start.Format(dateLayout), iv.End.Format(dateLayout), iv.MeanDistM, iv.Days); err != nil {
			return eris.Wrap(err, "sqlite: insert interval")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit intervals")
}

func (s *SQLiteStore) SaveMonthly(ctx context.Context, runID string, monthly []model.MonthlyAggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin monthly tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO monthly_sunlight (run_id, region_code, resid_area, ym, method, sun_hr_sum, n_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare monthly insert")
	}
	defer stmt.Close()

	for _, m := range monthly {
		if _, err := stmt.ExecContext(ctx, runID, m.RegionCode, m.ResidArea, m.YearMonth,
			string(m.Policy), m.ValueSum, m.Days); err != nil {
			return eris.Wrap(err, "sqlite: insert monthly")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit monthly")
}
