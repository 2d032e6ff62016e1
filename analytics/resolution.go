package analytics

import (
	"sort"

	"report-analytics/models"
)

// ResolutionTimes computes duration statistics over closed reports,
// overall and per category. Open reports have no resolution time and are
// excluded throughout.
func ResolutionTimes(valid []models.Report) models.ResolutionReport {
	var overall []int64
	byCategory := make(map[string][]int64)

	for _, r := range valid {
		if !models.IsTerminalStatus(r.CurrentStatus) || len(r.StatusHistory) < 2 {
			continue
		}
		history := r.StatusHistory
		d := history[len(history)-1].Timestamp.Sub(history[0].Timestamp).Milliseconds()
		overall = append(overall, d)
		byCategory[r.Category] = append(byCategory[r.Category], d)
	}

	report := models.ResolutionReport{
		Overall:    resolutionStats(overall),
		ByCategory: make(map[string]models.ResolutionStats, len(byCategory)),
	}
	for category, durations := range byCategory {
		report.ByCategory[category] = resolutionStats(durations)
	}
	return report
}

func resolutionStats(durations []int64) models.ResolutionStats {
	stats := models.ResolutionStats{Count: len(durations)}
	if len(durations) == 0 {
		return stats
	}

	sorted := append([]int64(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	avg := meanMs(sorted)
	med := medianMs(sorted)
	p90 := percentileMs(sorted, 90)
	max := sorted[len(sorted)-1]

	stats.AvgMs = &avg
	stats.MedianMs = &med
	stats.P90Ms = &p90
	stats.MaxMs = &max
	return stats
}

// percentileMs is the nearest-rank percentile over an already sorted
// slice.
func percentileMs(sorted []int64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (pct*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return float64(sorted[rank-1])
}
