package station

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pskc-research/sunassign/internal/fetcher"
	"github.com/pskc-research/sunassign/internal/model"
)

// Column names as exported by the KMA Open MET Data Portal.
const (
	colStationID = "지점"
	colName      = "지점명"
	colSegStart  = "시작일"
	colSegEnd    = "종료일"
	colLat       = "위도"
	colLon       = "경도"
	colDate      = "일시"
	colSunHours  = "합계 일조시간(hr)"
)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "2006/01/02", "2006.01.02"}

// parseDate parses a source date field, normalized to UTC midnight. The zero
// time and false are returned for empty or unparseable fields.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// LoadMeta reads the raw station metadata table. Rows without a parseable
// station id or coordinate pair are dropped; dates are left zero when absent
// so Resolve can default them to the window bounds.
func LoadMeta(path string) ([]RawSegment, error) {
	tbl, err := fetcher.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := tbl.Require("station metadata", colStationID, colName, colSegStart, colSegEnd, colLat, colLon); err != nil {
		return nil, err
	}

	raw := make([]RawSegment, 0, len(tbl.Rows))
	var dropped int

	for _, row := range tbl.Rows {
		id, err := strconv.Atoi(tbl.Field(row, colStationID))
		if err != nil {
			dropped++
			continue
		}
		lat, latErr := strconv.ParseFloat(tbl.Field(row, colLat), 64)
		lon, lonErr := strconv.ParseFloat(tbl.Field(row, colLon), 64)
		if latErr != nil || lonErr != nil {
			dropped++
			continue
		}

		start, _ := parseDate(tbl.Field(row, colSegStart))
		end, _ := parseDate(tbl.Field(row, colSegEnd))

		raw = append(raw, RawSegment{
			StationID: id,
			Name:      tbl.Field(row, colName),
			Start:     start,
			End:       end,
			Lat:       lat,
			Lon:       lon,
		})
	}

	if dropped > 0 {
		zap.L().Debug("station: dropped malformed metadata rows", zap.Int("dropped", dropped))
	}

	return raw, nil
}

// LoadObservations reads the station-day measurement table, filtered to the
// analysis window. A row with an unparseable measurement keeps its station-day
// identity with a nil value: absence is preserved, never zero-filled.
func LoadObservations(path string, windowStart, windowEnd time.Time) ([]model.Observation, error) {
	tbl, err := fetcher.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if err := tbl.Require("sunshine data", colStationID, colDate, colSunHours); err != nil {
		return nil, err
	}

	obs := make([]model.Observation, 0, len(tbl.Rows))
	var dropped int

	for _, row := range tbl.Rows {
		id, err := strconv.Atoi(tbl.Field(row, colStationID))
		if err != nil {
			dropped++
			continue
		}
		date, ok := parseDate(tbl.Field(row, colDate))
		if !ok {
			dropped++
			continue
		}
		if date.Before(windowStart) || date.After(windowEnd) {
			continue
		}

		var value *float64
		if v, err := strconv.ParseFloat(tbl.Field(row, colSunHours), 64); err == nil {
			value = &v
		}

		obs = append(obs, model.Observation{
			StationID: id,
			Name:      tbl.Field(row, colName),
			Date:      date,
			Value:     value,
		})
	}

	if dropped > 0 {
		zap.L().Debug("station: dropped malformed observation rows", zap.Int("dropped", dropped))
	}
	if len(obs) == 0 {
		return nil, eris.New("station: no observations inside the analysis window")
	}

	return obs, nil
}
