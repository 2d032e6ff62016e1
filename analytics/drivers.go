package analytics

import (
	"sort"

	"report-analytics/models"
)

// DriverPerformance aggregates per-driver workload and outcomes over the
// filtered set. Reports without an assigned driver have nobody to score
// and are skipped. A driver whose reports are all still open gets a nil
// average resolution time rather than a misleading zero.
func DriverPerformance(valid []models.Report) models.DriverPerformance {
	type acc struct {
		assigned    int
		completed   int
		rejected    int
		resolutions []int64
	}
	byDriver := make(map[string]*acc)

	for _, r := range valid {
		if r.AssignedDriverID == nil || *r.AssignedDriverID == "" {
			continue
		}
		a, ok := byDriver[*r.AssignedDriverID]
		if !ok {
			a = &acc{}
			byDriver[*r.AssignedDriverID] = a
		}
		a.assigned++

		switch r.CurrentStatus {
		case models.StatusResolved:
			a.completed++
		case models.StatusRejected:
			a.rejected++
		}
		if models.IsTerminalStatus(r.CurrentStatus) && len(r.StatusHistory) > 1 {
			history := r.StatusHistory
			a.resolutions = append(a.resolutions,
				history[len(history)-1].Timestamp.Sub(history[0].Timestamp).Milliseconds())
		}
	}

	metrics := make([]models.DriverMetrics, 0, len(byDriver))
	for driverID, a := range byDriver {
		m := models.DriverMetrics{
			DriverID:       driverID,
			TotalAssigned:  a.assigned,
			Completed:      a.completed,
			Rejected:       a.rejected,
			CompletionRate: roundRate(a.completed, a.assigned),
		}
		if len(a.resolutions) > 0 {
			avg := meanMs(a.resolutions)
			m.AvgResolutionMs = &avg
		}
		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].TotalAssigned != metrics[j].TotalAssigned {
			return metrics[i].TotalAssigned > metrics[j].TotalAssigned
		}
		return metrics[i].DriverID < metrics[j].DriverID
	})

	return models.DriverPerformance{
		DriverCount: len(metrics),
		Metrics:     metrics,
	}
}
