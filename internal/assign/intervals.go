package assign

import (
	"sort"

	"github.com/pskc-research/sunassign/internal/model"
)

type seriesKey struct {
	Policy     model.Policy
	RegionCode string
}

// Compress run-length-encodes the assignment table into intervals: one per
// maximal run of consecutive assignment rows for a region and policy sharing
// the same station. Concatenating the intervals of a region/policy pair in
// order reconstructs its daily station sequence exactly.
//
// Days counts records in the run, not the calendar span: the input sequence
// is sparse over calendar days since an empty day produces no row.
func Compress(assignments []model.Assignment) []model.Interval {
	// Partition into per-region/policy sequences, preserving date order.
	series := make(map[seriesKey][]model.Assignment)
	for _, a := range assignments {
		k := seriesKey{Policy: a.Policy, RegionCode: a.RegionCode}
		series[k] = append(series[k], a)
	}

	keys := make([]seriesKey, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Policy != keys[j].Policy {
			return keys[i].Policy == model.PolicyCentroid
		}
		return keys[i].RegionCode < keys[j].RegionCode
	})

	var out []model.Interval
	for _, k := range keys {
		out = append(out, compressSeries(series[k])...)
	}
	return out
}

// compressSeries scans one date-ordered sequence, breaking a run wherever the
// station id differs from the immediate predecessor. The first record always
// opens a run.
func compressSeries(seq []model.Assignment) []model.Interval {
	var out []model.Interval
	var cur *model.Interval
	var distSum float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.MeanDistM = distSum / float64(cur.Days)
		out = append(out, *cur)
		cur = nil
	}

	for _, a := range seq {
		if cur != nil && a.StationID == cur.StationID {
			cur.End = a.Date
			cur.Days++
			distSum += a.DistanceM
			continue
		}
		flush()
		cur = &model.Interval{
			RegionCode: a.RegionCode,
			ResidArea:  a.ResidArea,
			Policy:     a.Policy,
			StationID:  a.StationID,
			Start:      a.Date,
			End:        a.Date,
			Days:       1,
		}
		distSum = a.DistanceM
	}
	flush()

	return out
}
