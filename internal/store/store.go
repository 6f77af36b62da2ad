// Package store persists runs and their output tables so past assignments
// stay queryable without re-running the pipeline.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pskc-research/sunassign/internal/model"
)

// Store defines the persistence interface for pipeline results.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, windowStart, windowEnd time.Time) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, regions, assignments, intervals int) error
	FailRun(ctx context.Context, runID string, cause string) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Output tables
	SaveAssignments(ctx context.Context, runID string, rows []model.Assignment) error
	SaveIntervals(ctx context.Context, runID string, rows []model.Interval) error
	SaveMonthly(ctx context.Context, runID string, rows []model.MonthlyAggregate) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

const dateLayout = "2006-01-02"
