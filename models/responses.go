package models

// ErrorResponse is the uniform failure envelope. Retryable is set for
// transient failures (store unreachable, computation timeout).
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// TrendsResponse is the /trends payload.
type TrendsResponse struct {
	Success        bool           `json:"success"`
	TotalIncidents int            `json:"totalIncidents"`
	DailyTrends    []DailyTrend   `json:"dailyTrends"`
	CategoryTotals map[string]int `json:"categoryTotals"`
	DataQuality    DataQuality    `json:"dataQuality"`
}

// DistributionResponse is the /status-distribution payload.
type DistributionResponse struct {
	Success      bool                   `json:"success"`
	TotalReports int                    `json:"totalReports"`
	Summary      map[string]StatusCount `json:"summary"`
}

// TransitionsResponse is the /status-transitions payload.
type TransitionsResponse struct {
	Success             bool                `json:"success"`
	TotalReports        int                 `json:"totalReports"`
	ValidReports        int                 `json:"validReports"`
	ExcludedReports     int                 `json:"excludedReports"`
	TransitionAnalytics TransitionAnalytics `json:"transitionAnalytics"`
}

// TimelineResponse is the /workflow-timeline payload. ByDriver is only
// present when group_by=driver was requested.
type TimelineResponse struct {
	Success           bool                        `json:"success"`
	ReportTimelines   []ReportTimeline            `json:"reportTimelines,omitempty"`
	ByDriver          map[string][]ReportTimeline `json:"byDriver,omitempty"`
	EfficiencyMetrics EfficiencyMetrics           `json:"efficiencyMetrics"`
}

// BottlenecksResponse is the /workflow-bottlenecks payload.
type BottlenecksResponse struct {
	Success           bool              `json:"success"`
	Bottlenecks       []Bottleneck      `json:"bottlenecks"`
	EfficiencyMetrics EfficiencyMetrics `json:"efficiencyMetrics"`
}

// DriversResponse is the /drivers payload.
type DriversResponse struct {
	Success     bool            `json:"success"`
	DriverCount int             `json:"driverCount"`
	Metrics     []DriverMetrics `json:"metrics"`
}

// ResolutionTimesResponse is the /resolution-times payload.
type ResolutionTimesResponse struct {
	Success    bool                       `json:"success"`
	Overall    ResolutionStats            `json:"overall"`
	ByCategory map[string]ResolutionStats `json:"byCategory"`
}

// HotspotsResponse is the /hotspots payload.
type HotspotsResponse struct {
	Success  bool      `json:"success"`
	Hotspots []Hotspot `json:"hotspots"`
}

// CacheStatus is the cache slice of the health response.
type CacheStatus struct {
	Status   string  `json:"status"`
	Size     int     `json:"size"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hitRatio"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Success      bool        `json:"success"`
	Database     string      `json:"database"`
	Cache        CacheStatus `json:"cache"`
	SystemHealth string      `json:"systemHealth"`
	Service      string      `json:"service"`
	Timestamp    string      `json:"timestamp"`
}
