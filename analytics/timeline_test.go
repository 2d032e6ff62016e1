package analytics

import (
	"testing"

	"report-analytics/models"
)

func TestBuildTimelinesClosedReport(t *testing.T) {
	// pending@10:00 -> assigned@11:00 -> resolved@13:00
	r := makeReport(t, "r1", models.CategoryRecyclable, nil,
		[]string{models.StatusPending, models.StatusAssigned, models.StatusResolved},
		[]string{"2026-01-19T10:00:00", "2026-01-19T11:00:00", "2026-01-19T13:00:00"})

	timelines, metrics := BuildTimelines([]models.Report{r})

	if len(timelines) != 1 {
		t.Fatalf("len(timelines) = %d, want 1", len(timelines))
	}
	stages := timelines[0].Stages
	if len(stages) != 3 {
		t.Fatalf("len(stages) = %d, want 3", len(stages))
	}

	hour := int64(3600000)
	if stages[0].DurationMs == nil || *stages[0].DurationMs != hour {
		t.Errorf("pending duration = %v, want 1h", stages[0].DurationMs)
	}
	if stages[1].DurationMs == nil || *stages[1].DurationMs != 2*hour {
		t.Errorf("assigned duration = %v, want 2h", stages[1].DurationMs)
	}
	if stages[2].DurationMs != nil {
		t.Errorf("final stage duration = %v, want nil (still open)", *stages[2].DurationMs)
	}

	if metrics.AvgResolutionMs == nil || *metrics.AvgResolutionMs != float64(3*hour) {
		t.Errorf("AvgResolutionMs = %v, want 3h", metrics.AvgResolutionMs)
	}
	if metrics.MedianResolutionMs == nil || *metrics.MedianResolutionMs != float64(3*hour) {
		t.Errorf("MedianResolutionMs = %v, want 3h", metrics.MedianResolutionMs)
	}
}

func TestBuildTimelinesStuckReportExcludedFromMetrics(t *testing.T) {
	stuck := makeReport(t, "r1", models.CategoryHazardous, nil,
		[]string{models.StatusPending, models.StatusAssigned},
		[]string{"2026-01-19T10:00:00", "2026-01-19T11:00:00"})

	timelines, metrics := BuildTimelines([]models.Report{stuck})

	if len(timelines) != 1 {
		t.Fatalf("stuck report missing from timelines")
	}
	last := timelines[0].Stages[len(timelines[0].Stages)-1]
	if last.DurationMs != nil {
		t.Errorf("open final stage duration = %v, want nil", *last.DurationMs)
	}
	if metrics.AvgResolutionMs != nil || metrics.MedianResolutionMs != nil {
		t.Errorf("metrics = %+v, want nil for set with no closed reports", metrics)
	}
}

func TestBuildTimelinesMedianEvenCount(t *testing.T) {
	hour := float64(3600000)
	reports := []models.Report{
		// 2h to resolve.
		makeReport(t, "r1", models.CategoryOther, nil,
			[]string{models.StatusPending, models.StatusResolved},
			[]string{"2026-01-19T10:00:00", "2026-01-19T12:00:00"}),
		// 4h to resolve.
		makeReport(t, "r2", models.CategoryOther, nil,
			[]string{models.StatusPending, models.StatusResolved},
			[]string{"2026-01-19T10:00:00", "2026-01-19T14:00:00"}),
	}

	_, metrics := BuildTimelines(reports)

	if metrics.MedianResolutionMs == nil || *metrics.MedianResolutionMs != 3*hour {
		t.Errorf("MedianResolutionMs = %v, want 3h (mean of middle pair)", metrics.MedianResolutionMs)
	}
	if metrics.AvgResolutionMs == nil || *metrics.AvgResolutionMs != 3*hour {
		t.Errorf("AvgResolutionMs = %v, want 3h", metrics.AvgResolutionMs)
	}
}

func TestFindBottlenecks(t *testing.T) {
	// Assigned dwells 2h, pending dwells 1h; assigned must rank first.
	r := makeReport(t, "r1", models.CategoryRecyclable, nil,
		[]string{models.StatusPending, models.StatusAssigned, models.StatusResolved},
		[]string{"2026-01-19T10:00:00", "2026-01-19T11:00:00", "2026-01-19T13:00:00"})

	timelines, _ := BuildTimelines([]models.Report{r})
	bottlenecks := FindBottlenecks(timelines)

	if len(bottlenecks) != 2 {
		t.Fatalf("len(bottlenecks) = %d, want 2 (resolved has no closed dwell)", len(bottlenecks))
	}

	hour := float64(3600000)
	if bottlenecks[0].Status != models.StatusAssigned || bottlenecks[0].AvgDurationMs != 2*hour {
		t.Errorf("bottlenecks[0] = %+v, want assigned at 2h", bottlenecks[0])
	}
	if bottlenecks[1].Status != models.StatusPending || bottlenecks[1].AvgDurationMs != hour {
		t.Errorf("bottlenecks[1] = %+v, want pending at 1h", bottlenecks[1])
	}
	if bottlenecks[0].ReportCount != 1 {
		t.Errorf("ReportCount = %d, want 1", bottlenecks[0].ReportCount)
	}
}

func TestFindBottlenecksAveragesAcrossReports(t *testing.T) {
	reports := []models.Report{
		// pending dwells 1h.
		makeReport(t, "r1", models.CategoryOther, nil,
			[]string{models.StatusPending, models.StatusAssigned},
			[]string{"2026-01-19T10:00:00", "2026-01-19T11:00:00"}),
		// pending dwells 3h.
		makeReport(t, "r2", models.CategoryOther, nil,
			[]string{models.StatusPending, models.StatusAssigned},
			[]string{"2026-01-19T10:00:00", "2026-01-19T13:00:00"}),
	}

	timelines, _ := BuildTimelines(reports)
	bottlenecks := FindBottlenecks(timelines)

	if len(bottlenecks) != 1 {
		t.Fatalf("len(bottlenecks) = %d, want 1 (assigned stages all open)", len(bottlenecks))
	}
	hour := float64(3600000)
	if bottlenecks[0].Status != models.StatusPending ||
		bottlenecks[0].AvgDurationMs != 2*hour ||
		bottlenecks[0].ReportCount != 2 {
		t.Errorf("bottleneck = %+v, want pending avg 2h over 2 observations", bottlenecks[0])
	}
}

func TestGroupTimelinesByDriver(t *testing.T) {
	reports := []models.Report{
		makeReport(t, "r1", models.CategoryOther, strPtr("driver-1"),
			[]string{models.StatusPending, models.StatusAssigned},
			[]string{"2026-01-19T10:00:00", "2026-01-19T11:00:00"}),
		makeReport(t, "r2", models.CategoryOther, strPtr("driver-1"),
			[]string{models.StatusPending}, []string{"2026-01-19T12:00:00"}),
		makeReport(t, "r3", models.CategoryOther, nil,
			[]string{models.StatusPending}, []string{"2026-01-19T13:00:00"}),
	}

	timelines, _ := BuildTimelines(reports)
	grouped := GroupTimelinesByDriver(reports, timelines)

	if len(grouped) != 1 {
		t.Fatalf("len(grouped) = %d, want 1 driver", len(grouped))
	}
	if len(grouped["driver-1"]) != 2 {
		t.Errorf("driver-1 has %d timelines, want 2", len(grouped["driver-1"]))
	}
}
