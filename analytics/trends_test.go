package analytics

import (
	"reflect"
	"testing"

	"report-analytics/models"
)

func TestAggregateTrends(t *testing.T) {
	w := mustWindow(t, "2026-01-19", "2026-01-20")

	r1 := makeReport(t, "r1", models.CategoryRecyclable, nil,
		[]string{models.StatusPending, models.StatusAssigned, models.StatusResolved},
		[]string{"2026-01-19T10:00:00", "2026-01-19T11:00:00", "2026-01-19T13:00:00"})

	summary := AggregateTrends([]models.Report{r1}, w)

	if summary.TotalIncidents != 1 {
		t.Errorf("TotalIncidents = %d, want 1", summary.TotalIncidents)
	}
	expectDaily := []models.DailyTrend{
		{Date: "2026-01-19", Count: 1},
		{Date: "2026-01-20", Count: 0},
	}
	if !reflect.DeepEqual(summary.DailyTrends, expectDaily) {
		t.Errorf("DailyTrends = %v, want %v", summary.DailyTrends, expectDaily)
	}
	if summary.CategoryTotals[models.CategoryRecyclable] != 1 {
		t.Errorf("CategoryTotals[recyclable] = %d, want 1", summary.CategoryTotals[models.CategoryRecyclable])
	}
	if len(summary.CategoryTotals) != 1 {
		t.Errorf("CategoryTotals has %d keys, want sparse map with 1", len(summary.CategoryTotals))
	}
}

func TestAggregateTrendsDenseSeriesAndSums(t *testing.T) {
	w := mustWindow(t, "2026-03-01", "2026-03-10")

	reports := []models.Report{
		makeReport(t, "r1", models.CategoryRecyclable, nil,
			[]string{models.StatusPending}, []string{"2026-03-01T08:00:00"}),
		makeReport(t, "r2", models.CategoryRecyclable, nil,
			[]string{models.StatusPending}, []string{"2026-03-01T09:00:00"}),
		makeReport(t, "r3", models.CategoryHazardous, nil,
			[]string{models.StatusPending}, []string{"2026-03-05T23:30:00"}),
	}

	summary := AggregateTrends(reports, w)

	// Dense series: one entry per window day, no gaps.
	if len(summary.DailyTrends) != w.Days() {
		t.Fatalf("len(DailyTrends) = %d, want %d", len(summary.DailyTrends), w.Days())
	}
	prev := ""
	dailySum := 0
	for _, d := range summary.DailyTrends {
		if prev != "" && d.Date <= prev {
			t.Errorf("DailyTrends not strictly ascending: %s after %s", d.Date, prev)
		}
		prev = d.Date
		dailySum += d.Count
	}

	categorySum := 0
	for _, c := range summary.CategoryTotals {
		categorySum += c
	}

	if dailySum != summary.TotalIncidents || categorySum != summary.TotalIncidents {
		t.Errorf("sums disagree: daily=%d categories=%d total=%d",
			dailySum, categorySum, summary.TotalIncidents)
	}
	if summary.TotalIncidents != 3 {
		t.Errorf("TotalIncidents = %d, want 3", summary.TotalIncidents)
	}
}

func TestAggregateTrendsSkipsReportsCreatedOutsideWindow(t *testing.T) {
	w := mustWindow(t, "2026-01-19", "2026-01-20")

	// Created before the window but transitioned inside it: valid for
	// the window, but not an incident of it.
	r := makeReport(t, "r1", models.CategoryOrganic, nil,
		[]string{models.StatusPending, models.StatusAssigned},
		[]string{"2026-01-10T09:00:00", "2026-01-19T10:00:00"})

	summary := AggregateTrends([]models.Report{r}, w)

	if summary.TotalIncidents != 0 {
		t.Errorf("TotalIncidents = %d, want 0", summary.TotalIncidents)
	}
	for _, d := range summary.DailyTrends {
		if d.Count != 0 {
			t.Errorf("day %s count = %d, want 0", d.Date, d.Count)
		}
	}
}

func TestDownsampleTrends(t *testing.T) {
	tests := []struct {
		name  string
		daily []models.DailyTrend
		limit int

		expectLen   int
		expectTotal int
	}{
		{
			name: "below limit untouched",
			daily: []models.DailyTrend{
				{Date: "2026-01-01", Count: 1},
				{Date: "2026-01-02", Count: 2},
			},
			limit:       10,
			expectLen:   2,
			expectTotal: 3,
		},
		{
			name: "chunked with total preserved",
			daily: []models.DailyTrend{
				{Date: "2026-01-01", Count: 1},
				{Date: "2026-01-02", Count: 2},
				{Date: "2026-01-03", Count: 3},
				{Date: "2026-01-04", Count: 4},
				{Date: "2026-01-05", Count: 5},
			},
			limit:       2,
			expectLen:   2,
			expectTotal: 15,
		},
		{
			name:        "zero limit untouched",
			daily:       []models.DailyTrend{{Date: "2026-01-01", Count: 1}},
			limit:       0,
			expectLen:   1,
			expectTotal: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := DownsampleTrends(tt.daily, tt.limit)

			if len(out) != tt.expectLen {
				t.Errorf("len = %d, want %d", len(out), tt.expectLen)
			}
			total := 0
			for _, d := range out {
				total += d.Count
			}
			if total != tt.expectTotal {
				t.Errorf("total = %d, want %d", total, tt.expectTotal)
			}
		})
	}
}
