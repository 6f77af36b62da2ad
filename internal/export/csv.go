// Package export writes the pipeline's output tables. CSV is the primary,
// always-produced representation; the XLSX workbook is a secondary export
// whose failure never invalidates a run.
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/pskc-research/sunassign/internal/model"
)

const dateLayout = "2006-01-02"

var dailyHeader = []string{
	"SIGUNGU_CD", "resid_area", "date", "method", "station_id", "dist_m", "sun_hr",
}

var intervalHeader = []string{
	"SIGUNGU_CD", "resid_area", "station_id", "start_date", "end_date",
	"mean_distance_m", "n_days", "method",
}

var monthlyHeader = []string{
	"SIGUNGU_CD", "resid_area", "ym", "method", "sun_hr_sum", "n_days",
}

// writeCSV writes rows under a header, UTF-8 with BOM so the Korean region
// keys open cleanly in spreadsheet tools.
func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return eris.Wrap(err, "export: write BOM")
	}

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	return w.Error()
}

// WriteDailyCSV writes the region-day assignment table.
func WriteDailyCSV(assignments []model.Assignment, path string) error {
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, []string{
			a.RegionCode,
			a.ResidArea,
			a.Date.Format(dateLayout),
			string(a.Policy),
			strconv.Itoa(a.StationID),
			ftoa(a.DistanceM),
			ftoa(a.Value),
		})
	}
	return writeCSV(path, dailyHeader, rows)
}

// WriteIntervalCSV writes the compressed assignment intervals.
func WriteIntervalCSV(intervals []model.Interval, path string) error {
	rows := make([][]string, 0, len(intervals))
	for _, iv := range intervals {
		rows = append(rows, []string{
			iv.RegionCode,
			iv.ResidArea,
			strconv.Itoa(iv.StationID),
			iv.Start.Format(dateLayout),
			iv.End.Format(dateLayout),
			ftoa(iv.MeanDistM),
			strconv.Itoa(iv.Days),
			string(iv.Policy),
		})
	}
	return writeCSV(path, intervalHeader, rows)
}

// WriteMonthlyCSV writes the per-region monthly sums.
func WriteMonthlyCSV(monthly []model.MonthlyAggregate, path string) error {
	rows := make([][]string, 0, len(monthly))
	for _, m := range monthly {
		rows = append(rows, []string{
			m.RegionCode,
			m.ResidArea,
			m.YearMonth,
			string(m.Policy),
			ftoa(m.ValueSum),
			strconv.Itoa(m.Days),
		})
	}
	return writeCSV(path, monthlyHeader, rows)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
