package analytics

import (
	"sort"

	"report-analytics/models"
)

// BuildTimelines reconstructs per-report stage dwell periods from the
// transition log. The final stage of every report is still open (it has
// no successor event), so its duration is nil; it stays in the timeline
// for observability but never enters duration math.
func BuildTimelines(valid []models.Report) ([]models.ReportTimeline, models.EfficiencyMetrics) {
	timelines := make([]models.ReportTimeline, 0, len(valid))
	var resolutions []int64

	for _, r := range valid {
		tl := models.ReportTimeline{ReportID: r.ID}
		history := r.StatusHistory
		for i, ev := range history {
			stage := models.TimelineStage{
				Status:    ev.ToStatus,
				EnteredAt: ev.Timestamp,
			}
			if i+1 < len(history) {
				d := history[i+1].Timestamp.Sub(ev.Timestamp).Milliseconds()
				stage.DurationMs = &d
			}
			tl.Stages = append(tl.Stages, stage)
		}
		timelines = append(timelines, tl)

		// Resolution time is only defined for closed reports.
		if models.IsTerminalStatus(r.CurrentStatus) && len(history) > 1 {
			resolutions = append(resolutions,
				history[len(history)-1].Timestamp.Sub(history[0].Timestamp).Milliseconds())
		}
	}

	sort.Slice(timelines, func(i, j int) bool {
		return timelines[i].ReportID < timelines[j].ReportID
	})

	return timelines, efficiencyFrom(resolutions)
}

// FindBottlenecks groups closed stage durations by status and ranks
// statuses by mean dwell time, longest first. A status never observed
// closed cannot be ranked and is omitted.
func FindBottlenecks(timelines []models.ReportTimeline) []models.Bottleneck {
	sums := make(map[string]int64)
	counts := make(map[string]int)

	for _, tl := range timelines {
		for _, stage := range tl.Stages {
			if stage.DurationMs == nil {
				continue
			}
			sums[stage.Status] += *stage.DurationMs
			counts[stage.Status]++
		}
	}

	bottlenecks := make([]models.Bottleneck, 0, len(sums))
	for status, sum := range sums {
		bottlenecks = append(bottlenecks, models.Bottleneck{
			Status:        status,
			AvgDurationMs: float64(sum) / float64(counts[status]),
			ReportCount:   counts[status],
		})
	}
	sort.Slice(bottlenecks, func(i, j int) bool {
		if bottlenecks[i].AvgDurationMs != bottlenecks[j].AvgDurationMs {
			return bottlenecks[i].AvgDurationMs > bottlenecks[j].AvgDurationMs
		}
		return bottlenecks[i].Status < bottlenecks[j].Status
	})

	return bottlenecks
}

// GroupTimelinesByDriver partitions timelines by the assigned driver of
// their report. Unassigned reports are left out of the grouping.
func GroupTimelinesByDriver(valid []models.Report, timelines []models.ReportTimeline) map[string][]models.ReportTimeline {
	driverByReport := make(map[string]string, len(valid))
	for _, r := range valid {
		if r.AssignedDriverID != nil && *r.AssignedDriverID != "" {
			driverByReport[r.ID] = *r.AssignedDriverID
		}
	}

	grouped := make(map[string][]models.ReportTimeline)
	for _, tl := range timelines {
		if driver, ok := driverByReport[tl.ReportID]; ok {
			grouped[driver] = append(grouped[driver], tl)
		}
	}
	return grouped
}

func efficiencyFrom(resolutions []int64) models.EfficiencyMetrics {
	var metrics models.EfficiencyMetrics
	if len(resolutions) == 0 {
		return metrics
	}
	avg := meanMs(resolutions)
	med := medianMs(resolutions)
	metrics.AvgResolutionMs = &avg
	metrics.MedianResolutionMs = &med
	return metrics
}

func meanMs(values []int64) float64 {
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func medianMs(values []int64) float64 {
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
