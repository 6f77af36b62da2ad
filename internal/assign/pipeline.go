package assign

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pskc-research/sunassign/internal/model"
)

// Options bounds the day loop. The window is inclusive on both ends and must
// be supplied before computation begins.
type Options struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Concurrency int // day workers; <=0 means sequential
}

// Build iterates the analysis window one calendar day at a time and produces
// one assignment row per region per policy for every day with at least one
// eligible candidate. Days are independent, so they run concurrently into
// disjoint partitions that are concatenated in date order afterward.
//
// A day whose candidate pool is empty is entirely absent from the output; it
// is a data-quality signal, not an error.
func Build(ctx context.Context, regions []model.Region, cands []model.Candidate, opts Options) ([]model.Assignment, error) {
	byDay := make(map[time.Time][]model.Candidate)
	for _, c := range cands {
		byDay[c.Date] = append(byDay[c.Date], c)
	}

	nDays := int(opts.WindowEnd.Sub(opts.WindowStart).Hours()/24) + 1
	partitions := make([][]model.Assignment, nDays)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := 0; i < nDays; i++ {
		i := i
		day := opts.WindowStart.AddDate(0, 0, i)
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			partitions[i] = assignDay(regions, day, byDay[day])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.Assignment
	var emptyDays int
	for _, p := range partitions {
		if p == nil {
			emptyDays++
			continue
		}
		out = append(out, p...)
	}

	if emptyDays > 0 {
		zap.L().Warn("assign: days with no eligible station",
			zap.Int("days", emptyDays),
			zap.Int("window_days", nDays),
		)
	}

	return out, nil
}

// assignDay computes both policies for one day. Returns nil when no candidate
// carries a measurement.
func assignDay(regions []model.Region, day time.Time, pool []model.Candidate) []model.Assignment {
	cands := eligible(pool)
	if len(cands) == 0 {
		return nil
	}

	out := make([]model.Assignment, 0, len(regions)*len(model.Policies))
	for _, policy := range model.Policies {
		for _, region := range regions {
			x, y := region.RefPoint(policy)
			idx, dist := nearest(x, y, cands)
			c := cands[idx]
			out = append(out, model.Assignment{
				RegionCode: region.Code,
				ResidArea:  region.ResidArea,
				Date:       day,
				Policy:     policy,
				StationID:  c.StationID,
				DistanceM:  dist,
				Value:      *c.Value,
			})
		}
	}
	return out
}
