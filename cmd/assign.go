package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pskc-research/sunassign/internal/assign"
	"github.com/pskc-research/sunassign/internal/centers"
	"github.com/pskc-research/sunassign/internal/export"
	"github.com/pskc-research/sunassign/internal/model"
	"github.com/pskc-research/sunassign/internal/proj"
	"github.com/pskc-research/sunassign/internal/station"
	"github.com/pskc-research/sunassign/internal/store"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Run the daily nearest-station assignment pipeline",
	Long:  "Loads region centers, station validity segments, and daily sunlight observations, assigns each region to its nearest operating station per day under both reference-point policies, compresses the result into intervals, aggregates monthly sums, persists everything to the store, and exports CSV/XLSX files.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("assign"); err != nil {
			return err
		}

		ctx := cmd.Context()

		windowStart, windowEnd, err := cfg.Window.Dates()
		if err != nil {
			return err
		}

		regions, err := centers.LoadRegions(cfg.Inputs.Centers)
		if err != nil {
			return eris.Wrap(err, "assign")
		}

		rawSegs, err := station.LoadMeta(cfg.Inputs.StationMeta)
		if err != nil {
			return eris.Wrap(err, "assign")
		}
		segs := station.Resolve(rawSegs, windowStart, windowEnd)

		obs, err := station.LoadObservations(cfg.Inputs.Sunlight, windowStart, windowEnd)
		if err != nil {
			return eris.Wrap(err, "assign")
		}
		cands := station.Attach(obs, segs, proj.ToUTMK)

		zap.L().Info("assign: inputs loaded",
			zap.Int("regions", len(regions)),
			zap.Int("segments", len(segs)),
			zap.Int("observations", len(obs)),
			zap.Int("candidates", len(cands)))

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "assign")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, windowStart, windowEnd)
		if err != nil {
			return eris.Wrap(err, "assign")
		}

		if err := runAssignment(ctx, st, run, regions, cands); err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("assign: record failure", zap.Error(failErr))
			}
			return err
		}
		return nil
	},
}

// runAssignment executes the compute and persist phases under an open run.
// Any error here marks the run failed in the caller.
func runAssignment(ctx context.Context, st store.Store, run *model.Run, regions []model.Region, cands []model.Candidate) error {
	assignments, err := assign.Build(ctx, regions, cands, assign.Options{
		WindowStart: run.WindowStart,
		WindowEnd:   run.WindowEnd,
		Concurrency: cfg.Assign.Concurrency,
	})
	if err != nil {
		return eris.Wrap(err, "assign: build")
	}

	intervals := assign.Compress(assignments)
	monthly := assign.Monthly(assignments)

	zap.L().Info("assign: computed",
		zap.Int("assignments", len(assignments)),
		zap.Int("intervals", len(intervals)),
		zap.Int("monthly_rows", len(monthly)))

	if err := st.SaveAssignments(ctx, run.ID, assignments); err != nil {
		return err
	}
	if err := st.SaveIntervals(ctx, run.ID, intervals); err != nil {
		return err
	}
	if err := st.SaveMonthly(ctx, run.ID, monthly); err != nil {
		return err
	}

	if err := exportOutputs(assignments, intervals, monthly); err != nil {
		return err
	}

	if err := st.CompleteRun(ctx, run.ID, len(regions), len(assignments), len(intervals)); err != nil {
		return eris.Wrap(err, "assign: complete run")
	}

	zap.L().Info("assign: run complete", zap.String("run_id", run.ID))
	return nil
}

// exportOutputs writes the CSV exports and the interval workbook. The
// workbook is a convenience copy, so its failure only warns.
func exportOutputs(assignments []model.Assignment, intervals []model.Interval, monthly []model.MonthlyAggregate) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return eris.Wrap(err, "assign: create output dir")
	}

	daily := filepath.Join(cfg.Output.Dir, "region_station_daily.csv")
	if err := export.WriteDailyCSV(assignments, daily); err != nil {
		return err
	}
	intervalCSV := filepath.Join(cfg.Output.Dir, "region_station_intervals.csv")
	if err := export.WriteIntervalCSV(intervals, intervalCSV); err != nil {
		return err
	}
	monthlyCSV := filepath.Join(cfg.Output.Dir, "monthly_sunlight.csv")
	if err := export.WriteMonthlyCSV(monthly, monthlyCSV); err != nil {
		return err
	}

	workbook := filepath.Join(cfg.Output.Dir, "region_station_intervals.xlsx")
	if err := export.WriteIntervalXLSX(intervals, workbook); err != nil {
		zap.L().Warn("assign: interval workbook export failed", zap.Error(err))
	}

	zap.L().Info("assign: exports written", zap.String("dir", cfg.Output.Dir))
	return nil
}

func init() {
	rootCmd.AddCommand(assignCmd)
}
