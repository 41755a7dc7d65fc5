package analytics

import (
	"math"
	"sort"

	"uptime-monitor/internal/model"
)

// uptimePercent is the ratio of successful samples to all samples, as a
// percentage. An empty window reports 0, not an error.
func uptimePercent(samples []*model.MetricSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	up := 0
	for _, s := range samples {
		if s.Status.IsUp() {
			up++
		}
	}
	return round2(float64(up) / float64(len(samples)) * 100)
}

// latencies extracts the millisecond values of all samples that carry a
// latency. Timeout samples never carry one.
func latencies(samples []*model.MetricSample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.HasLatency() {
			out = append(out, s.LatencyMillis())
		}
	}
	return out
}

// percentile computes the p-th percentile of a sorted slice with linear
// interpolation between ranks.
func percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// latencyStats summarizes a set of latency values. The caller owns the
// decision of what to do when values is empty.
func latencyStats(values []float64) LatencyStats {
	if len(values) == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return LatencyStats{
		Min:    round2(sorted[0]),
		Max:    round2(sorted[len(sorted)-1]),
		Avg:    round2(sum / float64(len(sorted))),
		Median: round2(percentile(sorted, 50)),
		P95:    round2(percentile(sorted, 95)),
		P99:    round2(percentile(sorted, 99)),
	}
}

// avg returns the arithmetic mean, 0 for an empty slice.
func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// round2 rounds to two decimal places for API payloads.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
