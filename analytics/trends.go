package analytics

import (
	"report-analytics/models"
)

// AggregateTrends buckets incident counts by the UTC calendar date of
// each report's creation. The daily series is dense: every day in the
// window appears, zero-filled, so charts never see gaps. Category totals
// are sparse and only carry observed categories.
func AggregateTrends(valid []models.Report, w Window) models.TrendSummary {
	days := w.Days()
	byDay := make(map[string]int, days)
	categories := make(map[string]int)

	// Each incident lands in exactly one day bucket and one category
	// bucket, keyed by creation date. Reports selected only by an
	// in-window event were created outside the window and are not
	// incidents of it, so the day/category/total sums stay equal.
	total := 0
	for _, r := range valid {
		if !w.Contains(r.CreatedAt) {
			continue
		}
		byDay[r.CreatedAt.UTC().Format(dateLayout)]++
		categories[r.Category]++
		total++
	}

	daily := make([]models.DailyTrend, 0, days)
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		daily = append(daily, models.DailyTrend{Date: key, Count: byDay[key]})
	}

	return models.TrendSummary{
		TotalIncidents: total,
		DailyTrends:    daily,
		CategoryTotals: categories,
	}
}

// DownsampleTrends reduces a dense daily series to at most limit points by
// summing fixed-size chunks. Each output point keeps the date of its
// chunk's first day; the series total is preserved.
func DownsampleTrends(daily []models.DailyTrend, limit int) []models.DailyTrend {
	if limit <= 0 || len(daily) <= limit {
		return daily
	}

	chunk := (len(daily) + limit - 1) / limit
	out := make([]models.DailyTrend, 0, limit)
	for i := 0; i < len(daily); i += chunk {
		end := i + chunk
		if end > len(daily) {
			end = len(daily)
		}
		point := models.DailyTrend{Date: daily[i].Date}
		for _, d := range daily[i:end] {
			point.Count += d.Count
		}
		out = append(out, point)
	}
	return out
}
