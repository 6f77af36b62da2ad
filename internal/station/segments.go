// Package station resolves station lifecycle metadata into clean validity
// segments and attaches segment locations to station-day observations.
//
// KMA metadata carries one row per station lifecycle event (built, moved,
// renamed, decommissioned), each with its own coordinates and start/end date.
// Rows for the same station routinely overlap; resolution produces a
// non-overlapping per-station timeline clipped to the analysis window.
package station

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pskc-research/sunassign/internal/model"
)

// RawSegment is one unvalidated metadata row. Zero start/end times mean the
// source field was empty or unparseable.
type RawSegment struct {
	StationID int
	Name      string
	Start     time.Time
	End       time.Time
	Lat       float64
	Lon       float64
}

// Resolve clips raw segments to [windowStart, windowEnd] and truncates
// within-station overlaps so that for every station the segments are
// time-disjoint and ordered. A missing start opens the segment from the window
// start, a missing end extends it through the window end. When two segments of
// one station overlap, the earlier-starting one is truncated to the day before
// the next segment begins.
func Resolve(raw []RawSegment, windowStart, windowEnd time.Time) []model.Segment {
	segs := make([]model.Segment, 0, len(raw))
	var dropped int

	for _, r := range raw {
		start := r.Start
		if start.IsZero() {
			start = windowStart
		}
		end := r.End
		if end.IsZero() {
			end = windowEnd
		}

		// Keep only segments that intersect the window, clipped to it.
		if end.Before(windowStart) || start.After(windowEnd) {
			dropped++
			continue
		}
		if start.Before(windowStart) {
			start = windowStart
		}
		if end.After(windowEnd) {
			end = windowEnd
		}

		segs = append(segs, model.Segment{
			StationID: r.StationID,
			Name:      r.Name,
			Start:     start,
			End:       end,
			Lat:       r.Lat,
			Lon:       r.Lon,
		})
	}

	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].StationID != segs[j].StationID {
			return segs[i].StationID < segs[j].StationID
		}
		if !segs[i].Start.Equal(segs[j].Start) {
			return segs[i].Start.Before(segs[j].Start)
		}
		return segs[i].End.Before(segs[j].End)
	})

	// Adjacent-pair scan within each station: truncate the earlier segment
	// whenever it runs into the next one's start.
	for i := 0; i+1 < len(segs); i++ {
		next := segs[i+1]
		if segs[i].StationID != next.StationID {
			continue
		}
		if !segs[i].End.Before(next.Start) {
			segs[i].End = next.Start.AddDate(0, 0, -1)
		}
	}

	if dropped > 0 {
		zap.L().Debug("station: dropped segments outside window", zap.Int("dropped", dropped))
	}

	return segs
}

// Attach joins each observation to the segment of its station that contains
// the observation date and returns the observation as a located candidate in
// UTM-K meters, via reproject. Observations with no live segment on their date
// are dropped: the station is at no known location and cannot be a candidate.
// Should more than one segment match, the most recently started one wins.
func Attach(obs []model.Observation, segs []model.Segment, reproject func(lon, lat float64) (x, y float64)) []model.Candidate {
	byStation := make(map[int][]model.Segment)
	for _, s := range segs {
		byStation[s.StationID] = append(byStation[s.StationID], s)
	}

	out := make([]model.Candidate, 0, len(obs))
	var unmatched int

	for _, o := range obs {
		var match *model.Segment
		for i := range byStation[o.StationID] {
			s := &byStation[o.StationID][i]
			if !s.Contains(o.Date) {
				continue
			}
			if match == nil || s.Start.After(match.Start) {
				match = s
			}
		}
		if match == nil {
			unmatched++
			continue
		}

		x, y := reproject(match.Lon, match.Lat)
		out = append(out, model.Candidate{Observation: o, X: x, Y: y})
	}

	if unmatched > 0 {
		zap.L().Info("station: observations without a live segment",
			zap.Int("dropped", unmatched),
		)
	}

	return out
}
