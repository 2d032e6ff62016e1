package analytics

import (
	"report-analytics/models"

	"github.com/apex/log"
)

// FilterResult classifies a fetched snapshot against a window. Excluded
// counts both malformed reports and well-formed reports with no activity
// in the window.
type FilterResult struct {
	Valid    []models.Report
	Excluded int
	Total    int
}

// FilterReports selects the reports relevant to the window. A report is
// relevant when it was created in the window or has at least one
// transition event in it. Malformed reports are dropped and counted,
// never surfaced as errors.
func FilterReports(reports []models.Report, w Window) FilterResult {
	result := FilterResult{Total: len(reports)}

	for _, r := range reports {
		if !wellFormed(r) {
			log.WithField("report_id", r.ID).Warn("excluding malformed report")
			result.Excluded++
			continue
		}
		if !inWindow(r, w) {
			result.Excluded++
			continue
		}
		result.Valid = append(result.Valid, r)
	}

	return result
}

// wellFormed checks the data-model invariants the aggregators rely on:
// a category, a non-empty history, and non-decreasing event timestamps.
func wellFormed(r models.Report) bool {
	if r.Category == "" || len(r.StatusHistory) == 0 {
		return false
	}
	for i := 1; i < len(r.StatusHistory); i++ {
		if r.StatusHistory[i].Timestamp.Before(r.StatusHistory[i-1].Timestamp) {
			return false
		}
	}
	return true
}

func inWindow(r models.Report, w Window) bool {
	if w.Contains(r.CreatedAt) {
		return true
	}
	for _, ev := range r.StatusHistory {
		if w.Contains(ev.Timestamp) {
			return true
		}
	}
	return false
}
