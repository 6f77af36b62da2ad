package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/pskc-research/sunassign/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3], "exports carry a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteDailyCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	rows := []model.Assignment{
		{
			RegionCode: "11740", ResidArea: "서울특별시/강동구",
			Date: day(2008, 1, 1), Policy: model.PolicyCentroid,
			StationID: 108, DistanceM: 12345.5, Value: 5.5,
		},
	}
	require.NoError(t, WriteDailyCSV(rows, path))

	records := readBack(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"SIGUNGU_CD", "resid_area", "date", "method", "station_id", "dist_m", "sun_hr"}, records[0])
	assert.Equal(t, []string{"11740", "서울특별시/강동구", "2008-01-01", "centroid", "108", "12345.5", "5.5"}, records[1])
}

func TestWriteIntervalCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intervals.csv")
	ivals := []model.Interval{
		{
			RegionCode: "11740", ResidArea: "서울특별시/강동구",
			Policy: model.PolicyRepPoint, StationID: 119,
			Start: day(2008, 1, 1), End: day(2008, 3, 31),
			MeanDistM: 9000.25, Days: 88,
		},
	}
	require.NoError(t, WriteIntervalCSV(ivals, path))

	records := readBack(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "rep", records[1][7])
	assert.Equal(t, "88", records[1][6])
	assert.Equal(t, "2008-03-31", records[1][4])
}

func TestWriteMonthlyCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monthly.csv")
	monthly := []model.MonthlyAggregate{
		{RegionCode: "11740", ResidArea: "서울특별시/강동구", YearMonth: "2008-01",
			Policy: model.PolicyCentroid, ValueSum: 130.5, Days: 31},
	}
	require.NoError(t, WriteMonthlyCSV(monthly, path))

	records := readBack(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"11740", "서울특별시/강동구", "2008-01", "centroid", "130.5", "31"}, records[1])
}

func TestWriteIntervalXLSX_OneSheetPerPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intervals.xlsx")
	ivals := []model.Interval{
		{RegionCode: "11740", Policy: model.PolicyCentroid, StationID: 108,
			Start: day(2008, 1, 1), End: day(2008, 1, 31), MeanDistM: 1000, Days: 31},
		{RegionCode: "11740", Policy: model.PolicyRepPoint, StationID: 119,
			Start: day(2008, 1, 1), End: day(2008, 1, 31), MeanDistM: 900, Days: 31},
	}
	require.NoError(t, WriteIntervalXLSX(ivals, path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Equal(t, "centroid", f.Sheets[0].Name)
	assert.Equal(t, "rep", f.Sheets[1].Name)

	// Header + one row each.
	require.Len(t, f.Sheets[0].Rows, 2)
	assert.Equal(t, "108", f.Sheets[0].Rows[1].Cells[2].String())
	assert.Equal(t, "119", f.Sheets[1].Rows[1].Cells[2].String())
}
