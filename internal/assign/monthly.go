package assign

import (
	"sort"

	"github.com/pskc-research/sunassign/internal/model"
)

type monthKey struct {
	RegionCode string
	YearMonth  string
	Policy     model.Policy
}

// Monthly sums the assigned measurement per region, calendar month, and
// policy. Only days that produced an assignment contribute; Days records how
// many did, so a month with gaps is distinguishable from a full one.
func Monthly(assignments []model.Assignment) []model.MonthlyAggregate {
	agg := make(map[monthKey]*model.MonthlyAggregate)
	for _, a := range assignments {
		k := monthKey{
			RegionCode: a.RegionCode,
			YearMonth:  a.Date.Format("2006-01"),
			Policy:     a.Policy,
		}
		m, ok := agg[k]
		if !ok {
			m = &model.MonthlyAggregate{
				RegionCode: a.RegionCode,
				ResidArea:  a.ResidArea,
				YearMonth:  k.YearMonth,
				Policy:     a.Policy,
			}
			agg[k] = m
		}
		m.ValueSum += a.Value
		m.Days++
	}

	out := make([]model.MonthlyAggregate, 0, len(agg))
	for _, m := range agg {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegionCode != out[j].RegionCode {
			return out[i].RegionCode < out[j].RegionCode
		}
		if out[i].YearMonth != out[j].YearMonth {
			return out[i].YearMonth < out[j].YearMonth
		}
		return out[i].Policy == model.PolicyCentroid && out[j].Policy != model.PolicyCentroid
	})
	return out
}
