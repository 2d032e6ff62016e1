package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/apex/log"

	"report-analytics/analytics"
	"report-analytics/cache"
	"report-analytics/models"
)

// ErrDataSourceUnavailable marks a failed fetch from the transition log
// store. Retryable; never retried silently inside the engine.
var ErrDataSourceUnavailable = errors.New("report store unavailable")

// ErrComputationTimeout marks a query cancelled or timed out
// mid-aggregation. No partial result is ever returned alongside it.
var ErrComputationTimeout = errors.New("analytics computation timed out")

// ReportSource is the boundary with the transition log store.
type ReportSource interface {
	GetReportsInWindow(ctx context.Context, start, end time.Time) ([]models.Report, error)
	CountReports(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// AnalyticsService runs window-scoped aggregations over the report
// transition log, memoizing results in the cache. Every query is a pure
// read; the cache is the only shared mutable state.
type AnalyticsService struct {
	source         ReportSource
	cache          *cache.ResultCache
	queryTimeout   time.Duration
	maxPaths       int
	maxTrendPoints int
}

// NewAnalyticsService creates the analytics service. maxTrendPoints is
// the downsampling cap applied when optimize is requested without an
// explicit limit.
func NewAnalyticsService(source ReportSource, resultCache *cache.ResultCache, queryTimeout time.Duration, maxPaths, maxTrendPoints int) *AnalyticsService {
	return &AnalyticsService{
		source:         source,
		cache:          resultCache,
		queryTimeout:   queryTimeout,
		maxPaths:       maxPaths,
		maxTrendPoints: maxTrendPoints,
	}
}

// fetchFiltered pulls the window snapshot from the store and classifies
// it. All endpoint methods go through here after their cache lookup.
func (s *AnalyticsService) fetchFiltered(ctx context.Context, w analytics.Window) (analytics.FilterResult, error) {
	reports, err := s.source.GetReportsInWindow(ctx, w.Start, w.End)
	if err != nil {
		if ctx.Err() != nil {
			return analytics.FilterResult{}, fmt.Errorf("%w: %v", ErrComputationTimeout, ctx.Err())
		}
		return analytics.FilterResult{}, fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
	}
	if err := checkDeadline(ctx); err != nil {
		return analytics.FilterResult{}, err
	}
	return analytics.FilterReports(reports, w), nil
}

// checkDeadline maps context expiry to the timeout error. Aggregation
// math never blocks, so checks happen at phase boundaries only.
func checkDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrComputationTimeout, err)
	}
	return nil
}

func (s *AnalyticsService) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Trends returns the dense daily incident series and category totals for
// the window. With optimize set, the series is downsampled to at most
// limit points.
func (s *AnalyticsService) Trends(ctx context.Context, w analytics.Window, optimize bool, limit int) (*models.TrendsResponse, error) {
	key := cache.Key("trends", w.StartDate(), w.EndDate(), map[string]string{
		"optimize": strconv.FormatBool(optimize),
		"limit":    strconv.Itoa(limit),
	})
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.TrendsResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	summary := analytics.AggregateTrends(filtered.Valid, w)
	if optimize {
		if limit <= 0 {
			limit = s.maxTrendPoints
		}
		summary.DailyTrends = analytics.DownsampleTrends(summary.DailyTrends, limit)
	}
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.TrendsResponse{
		Success:        true,
		TotalIncidents: summary.TotalIncidents,
		DailyTrends:    summary.DailyTrends,
		CategoryTotals: summary.CategoryTotals,
		DataQuality: models.DataQuality{
			TotalRecords:    filtered.Total,
			ExcludedReports: filtered.Excluded,
		},
	}
	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// StatusDistribution returns current-status counts and percentages.
func (s *AnalyticsService) StatusDistribution(ctx context.Context, w analytics.Window) (*models.DistributionResponse, error) {
	key := cache.Key("status-distribution", w.StartDate(), w.EndDate(), nil)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.DistributionResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	dist := analytics.Distribution(filtered.Valid)
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.DistributionResponse{
		Success:      true,
		TotalReports: dist.TotalReports,
		Summary:      dist.Summary,
	}
	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// StatusTransitions returns the transition frequency graph and the most
// common end-to-end paths.
func (s *AnalyticsService) StatusTransitions(ctx context.Context, w analytics.Window) (*models.TransitionsResponse, error) {
	key := cache.Key("status-transitions", w.StartDate(), w.EndDate(), nil)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.TransitionsResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	transitions := analytics.AnalyzeTransitions(filtered.Valid, s.maxPaths)
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.TransitionsResponse{
		Success:             true,
		TotalReports:        filtered.Total,
		ValidReports:        len(filtered.Valid),
		ExcludedReports:     filtered.Excluded,
		TransitionAnalytics: transitions,
	}
	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// WorkflowTimeline reconstructs per-report stage timelines. With
// groupByDriver set, timelines are partitioned per assigned driver;
// maxReports caps the flat timeline list.
func (s *AnalyticsService) WorkflowTimeline(ctx context.Context, w analytics.Window, groupByDriver bool, maxReports int) (*models.TimelineResponse, error) {
	key := cache.Key("workflow-timeline", w.StartDate(), w.EndDate(), map[string]string{
		"group_by":    strconv.FormatBool(groupByDriver),
		"max_reports": strconv.Itoa(maxReports),
	})
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.TimelineResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	timelines, metrics := analytics.BuildTimelines(filtered.Valid)
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.TimelineResponse{
		Success:           true,
		EfficiencyMetrics: metrics,
	}
	if groupByDriver {
		resp.ByDriver = analytics.GroupTimelinesByDriver(filtered.Valid, timelines)
	} else {
		if maxReports > 0 && len(timelines) > maxReports {
			timelines = timelines[:maxReports]
		}
		resp.ReportTimelines = timelines
	}

	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// WorkflowBottlenecks ranks workflow statuses by mean dwell time over
// closed stage observations.
func (s *AnalyticsService) WorkflowBottlenecks(ctx context.Context, w analytics.Window) (*models.BottlenecksResponse, error) {
	key := cache.Key("workflow-bottlenecks", w.StartDate(), w.EndDate(), nil)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.BottlenecksResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	timelines, metrics := analytics.BuildTimelines(filtered.Valid)
	bottlenecks := analytics.FindBottlenecks(timelines)
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.BottlenecksResponse{
		Success:           true,
		Bottlenecks:       bottlenecks,
		EfficiencyMetrics: metrics,
	}
	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// Drivers returns the per-driver scorecards.
func (s *AnalyticsService) Drivers(ctx context.Context, w analytics.Window) (*models.DriversResponse, error) {
	key := cache.Key("drivers", w.StartDate(), w.EndDate(), nil)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.DriversResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	perf := analytics.DriverPerformance(filtered.Valid)
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.DriversResponse{
		Success:     true,
		DriverCount: perf.DriverCount,
		Metrics:     perf.Metrics,
	}
	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// ResolutionTimes returns resolution duration statistics for closed
// reports, overall and per category.
func (s *AnalyticsService) ResolutionTimes(ctx context.Context, w analytics.Window) (*models.ResolutionTimesResponse, error) {
	key := cache.Key("resolution-times", w.StartDate(), w.EndDate(), nil)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.ResolutionTimesResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	report := analytics.ResolutionTimes(filtered.Valid)
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.ResolutionTimesResponse{
		Success:    true,
		Overall:    report.Overall,
		ByCategory: report.ByCategory,
	}
	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// Hotspots aggregates geocoded incidents into S2 cells, sized by the
// optional viewport.
func (s *AnalyticsService) Hotspots(ctx context.Context, w analytics.Window, vp *models.ViewPort) (*models.HotspotsResponse, error) {
	params := map[string]string{}
	if vp != nil {
		params["viewport"] = fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", vp.LatMin, vp.LonMin, vp.LatMax, vp.LonMax)
	}
	key := cache.Key("hotspots", w.StartDate(), w.EndDate(), params)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.HotspotsResponse), nil
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filtered, err := s.fetchFiltered(ctx, w)
	if err != nil {
		return nil, err
	}

	hotspots := analytics.AggregateHotspots(filtered.Valid, vp)
	if err := checkDeadline(ctx); err != nil {
		return nil, err
	}

	resp := &models.HotspotsResponse{
		Success:  true,
		Hotspots: hotspots,
	}
	s.cache.Put(key, resp, w.Start, w.End)
	return resp, nil
}

// HandleMutation reacts to a report creation or status transition by
// dropping every cached result whose window could cover it. A zero
// timestamp cannot be attributed, so everything goes.
func (s *AnalyticsService) HandleMutation(event models.MutationEvent) {
	if event.Timestamp.IsZero() {
		dropped := s.cache.InvalidateAll()
		log.WithFields(log.Fields{
			"report_id": event.ReportID,
			"dropped":   dropped,
		}).Warn("mutation event without timestamp, cache fully invalidated")
		return
	}
	dropped := s.cache.InvalidateTimestamp(event.Timestamp)
	log.WithFields(log.Fields{
		"report_id": event.ReportID,
		"type":      event.Type,
		"dropped":   dropped,
	}).Info("cache invalidated for report mutation")
}

// Health reports store reachability and cache effectiveness without
// mutating any state.
func (s *AnalyticsService) Health(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{
		Success:      true,
		Database:     "healthy",
		SystemHealth: "healthy",
		Service:      "report-analytics",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.source.Ping(ctx); err != nil {
		log.Errorf("Health check: store unreachable: %v", err)
		resp.Database = "unreachable"
		resp.SystemHealth = "degraded"
	}

	stats := s.cache.Stats()
	resp.Cache = models.CacheStatus{
		Status:   "healthy",
		Size:     stats.Size,
		Hits:     stats.Hits,
		Misses:   stats.Misses,
		HitRatio: stats.HitRatio,
	}
	return resp
}
