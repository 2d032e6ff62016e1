package models

import (
	"time"
)

// Report statuses. A report always starts as pending; resolved and
// rejected are terminal.
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Report categories.
const (
	CategoryGeneralWaste = "general_waste"
	CategoryRecyclable   = "recyclable"
	CategoryHazardous    = "hazardous"
	CategoryOrganic      = "organic"
	CategoryBulky        = "bulky"
	CategoryOther        = "other"
)

// Actor roles on a status transition.
const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
	RoleSystem = "system"
)

// IsTerminalStatus reports whether a status closes a report.
func IsTerminalStatus(status string) bool {
	return status == StatusResolved || status == StatusRejected
}

// StatusEvent is one immutable entry in a report's status history.
// FromStatus is nil for the synthetic creation event.
type StatusEvent struct {
	FromStatus       *string   `json:"fromStatus" db:"from_status"`
	ToStatus         string    `json:"toStatus" db:"to_status"`
	Timestamp        time.Time `json:"timestamp" db:"ts"`
	ActorID          string    `json:"actorId" db:"actor_id"`
	ActorRole        string    `json:"actorRole" db:"actor_role"`
	RejectionMessage *string   `json:"rejectionMessage,omitempty" db:"rejection_message"`
}

// Report is one citizen-submitted waste incident with its append-only
// transition log. Coordinates are only present when geocoding succeeded.
type Report struct {
	ID               string        `json:"id" db:"id"`
	Category         string        `json:"category" db:"category"`
	Address          string        `json:"address" db:"address"`
	Description      string        `json:"description" db:"description"`
	Latitude         *float64      `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64      `json:"longitude,omitempty" db:"longitude"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_ts"`
	CurrentStatus    string        `json:"currentStatus" db:"current_status"`
	AssignedDriverID *string       `json:"assignedDriverId,omitempty" db:"assigned_driver_id"`
	StatusHistory    []StatusEvent `json:"statusHistory"`
}

// ViewPort is a map viewport used to pick the hotspot cell level.
type ViewPort struct {
	LatMin float64 `json:"sw_lat"`
	LonMin float64 `json:"sw_lon"`
	LatMax float64 `json:"ne_lat"`
	LonMax float64 `json:"ne_lon"`
}

// MutationEvent is the message published by the report workflow whenever
// a report is created or transitioned. The analytics service consumes it
// to invalidate cached results covering the mutation timestamp.
type MutationEvent struct {
	Type      string    `json:"type"`
	ReportID  string    `json:"report_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Mutation event types.
const (
	MutationReportCreated = "report.created"
	MutationStatusChanged = "report.status_changed"
)

// DataQuality is the side-channel reporting how many fetched records were
// dropped by the window filter.
type DataQuality struct {
	TotalRecords    int `json:"totalRecords"`
	ExcludedReports int `json:"excludedReports"`
}

// DailyTrend is one bucket of the dense daily incident series.
type DailyTrend struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TrendSummary aggregates incident counts by day and category.
type TrendSummary struct {
	TotalIncidents int            `json:"totalIncidents"`
	DailyTrends    []DailyTrend   `json:"dailyTrends"`
	CategoryTotals map[string]int `json:"categoryTotals"`
}

// StatusCount is the per-status slice of the distribution summary.
type StatusCount struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution holds current-status counts and percentages. Summary is
// sparse: only observed statuses appear.
type Distribution struct {
	TotalReports int                    `json:"totalReports"`
	Summary      map[string]StatusCount `json:"summary"`
}

// TransitionStat is one edge of the transition frequency graph.
type TransitionStat struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// CommonPath is a recurring end-to-end status sequence.
type CommonPath struct {
	Path  []string `json:"path"`
	Count int      `json:"count"`
}

// TransitionAnalytics is the transition graph plus path rankings.
type TransitionAnalytics struct {
	TransitionStats  []TransitionStat `json:"transitionStats"`
	CommonPaths      []CommonPath     `json:"commonPaths"`
	TotalTransitions int              `json:"totalTransitions"`
}

// TimelineStage is one dwell period in a report's workflow. DurationMs is
// nil for the still-open final stage.
type TimelineStage struct {
	Status     string    `json:"status"`
	EnteredAt  time.Time `json:"enteredAt"`
	DurationMs *int64    `json:"durationMs"`
}

// ReportTimeline is the reconstructed stage sequence for one report.
type ReportTimeline struct {
	ReportID string          `json:"reportId"`
	Stages   []TimelineStage `json:"stages"`
}

// EfficiencyMetrics are resolution-time aggregates over closed reports.
// Both fields are nil when no report in the set has closed.
type EfficiencyMetrics struct {
	AvgResolutionMs    *float64 `json:"avgResolutionMs"`
	MedianResolutionMs *float64 `json:"medianResolutionMs"`
}

// Bottleneck ranks one workflow status by mean dwell time over closed
// stage observations.
type Bottleneck struct {
	Status        string  `json:"status"`
	AvgDurationMs float64 `json:"avgDurationMs"`
	ReportCount   int     `json:"reportCount"`
}

// DriverMetrics is the per-driver scorecard.
type DriverMetrics struct {
	DriverID        string   `json:"driverId"`
	TotalAssigned   int      `json:"totalAssigned"`
	Completed       int      `json:"completed"`
	Rejected        int      `json:"rejected"`
	CompletionRate  float64  `json:"completionRate"`
	AvgResolutionMs *float64 `json:"avgResolutionMs"`
}

// DriverPerformance aggregates scorecards for all assigned drivers.
type DriverPerformance struct {
	DriverCount int             `json:"driverCount"`
	Metrics     []DriverMetrics `json:"metrics"`
}

// ResolutionStats are duration statistics over closed reports.
type ResolutionStats struct {
	Count    int      `json:"count"`
	AvgMs    *float64 `json:"avgMs"`
	MedianMs *float64 `json:"medianMs"`
	P90Ms    *float64 `json:"p90Ms"`
	MaxMs    *int64   `json:"maxMs"`
}

// ResolutionReport holds overall and per-category resolution statistics.
type ResolutionReport struct {
	Overall    ResolutionStats            `json:"overall"`
	ByCategory map[string]ResolutionStats `json:"byCategory"`
}

// Hotspot is one S2 cell with its incident count.
type Hotspot struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}
