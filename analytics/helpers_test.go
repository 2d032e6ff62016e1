package analytics

import (
	"testing"
	"time"

	"report-analytics/models"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed.UTC()
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

// makeReport builds a report whose history walks the given statuses at
// the given timestamps. The first event is the creation event.
func makeReport(t *testing.T, id, category string, driverID *string, statuses []string, times []string) models.Report {
	t.Helper()
	if len(statuses) != len(times) {
		t.Fatalf("statuses/times mismatch for %s", id)
	}

	report := models.Report{
		ID:               id,
		Category:         category,
		AssignedDriverID: driverID,
	}
	for i, status := range statuses {
		event := models.StatusEvent{
			ToStatus:  status,
			Timestamp: ts(t, times[i]),
			ActorID:   "actor-1",
			ActorRole: models.RoleAdmin,
		}
		if i > 0 {
			event.FromStatus = strPtr(statuses[i-1])
		}
		if status == models.StatusRejected {
			event.RejectionMessage = strPtr("not a waste incident")
		}
		report.StatusHistory = append(report.StatusHistory, event)
	}
	report.CreatedAt = report.StatusHistory[0].Timestamp
	report.CurrentStatus = statuses[len(statuses)-1]
	return report
}

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := ParseWindow(start, end)
	if err != nil {
		t.Fatalf("ParseWindow(%s, %s): %v", start, end, err)
	}
	return w
}
