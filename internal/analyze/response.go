package analyze

import (
	"sort"

	"github.com/trirpi/imessage-analysis/internal/msg"
	"github.com/trirpi/imessage-analysis/internal/series"
)

// MonthlyMedian is a per-month median reply latency in hours.
type MonthlyMedian struct {
	Month  string // YYYY-MM
	Hours  float64
	Events int
}

// responseMedians buckets response events by the month of the reply and takes
// the median latency per bucket. The first series covers every responder, the
// second only replies sent by self; a month with no qualifying events in a
// view is simply absent from it.
func responseMedians(events []series.ResponseEvent) (all, self []MonthlyMedian) {
	allByMonth := make(map[string][]float64)
	selfByMonth := make(map[string][]float64)
	for _, ev := range events {
		allByMonth[ev.Month] = append(allByMonth[ev.Month], ev.DeltaHours)
		if ev.Responder == msg.SenderSelf {
			selfByMonth[ev.Month] = append(selfByMonth[ev.Month], ev.DeltaHours)
		}
	}
	return monthlyMedians(allByMonth), monthlyMedians(selfByMonth)
}

func monthlyMedians(byMonth map[string][]float64) []MonthlyMedian {
	out := make([]MonthlyMedian, 0, len(byMonth))
	for month, deltas := range byMonth {
		out = append(out, MonthlyMedian{
			Month:  month,
			Hours:  median(deltas),
			Events: len(deltas),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// median sorts its argument in place. Even-length input averages the two
// middle values.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
