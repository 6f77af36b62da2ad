// Package assign computes daily nearest-station assignments for regions and
// reduces them into intervals and monthly aggregates.
package assign

import (
	"math"

	"github.com/pskc-research/sunassign/internal/model"
)

// nearest returns the index of the candidate closest to (x, y) and the
// distance in meters. Exact distance ties resolve to the lowest station id so
// results never depend on enumeration order. Returns -1 for an empty pool.
func nearest(x, y float64, cands []model.Candidate) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range cands {
		d := math.Hypot(c.X-x, c.Y-y)
		if d < bestDist || (d == bestDist && best >= 0 && c.StationID < cands[best].StationID) {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// eligible filters the day's candidates to those carrying a measurement.
// Filtering happens before the distance computation: a region whose nearest
// station is silent for the day is assigned its nearest station with data
// rather than losing the day.
func eligible(cands []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Value != nil {
			out = append(out, c)
		}
	}
	return out
}
