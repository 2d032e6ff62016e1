package analytics

import (
	"report-analytics/models"

	"github.com/shopspring/decimal"
)

// Distribution computes current-status counts and percentages over the
// filtered set. The summary is sparse: only statuses with at least one
// report appear. A zero-report set yields an empty summary, never a
// division by zero.
func Distribution(valid []models.Report) models.Distribution {
	dist := models.Distribution{
		TotalReports: len(valid),
		Summary:      make(map[string]models.StatusCount),
	}
	if len(valid) == 0 {
		return dist
	}

	counts := make(map[string]int)
	for _, r := range valid {
		counts[r.CurrentStatus]++
	}

	total := decimal.NewFromInt(int64(len(valid)))
	for status, count := range counts {
		pct := decimal.NewFromInt(int64(count)).
			Div(total).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		dist.Summary[status] = models.StatusCount{
			Count:      count,
			Percentage: pct.InexactFloat64(),
		}
	}

	return dist
}

// roundRate rounds a count ratio to a 1-decimal percentage. Shared by the
// driver scorecards.
func roundRate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		InexactFloat64()
}
