package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"report-analytics/cache"
	"report-analytics/models"
	"report-analytics/service"
)

type fakeSource struct {
	reports []models.Report
	fetches int
	err     error
	pingErr error
}

func (f *fakeSource) GetReportsInWindow(ctx context.Context, start, end time.Time) ([]models.Report, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.reports, nil
}

func (f *fakeSource) CountReports(ctx context.Context) (int, error) {
	return len(f.reports), nil
}

func (f *fakeSource) Ping(ctx context.Context) error {
	return f.pingErr
}

func newTestRouter(source *fakeSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAnalyticsService(source, cache.New(time.Minute), time.Second, 10, 366)
	h := NewAnalyticsHandler(svc)

	router := gin.New()
	router.GET("/health", h.Health)
	api := router.Group("/api/v3")
	{
		api.GET("/trends", h.Trends)
		api.GET("/status-distribution", h.StatusDistribution)
		api.GET("/status-transitions", h.StatusTransitions)
		api.GET("/workflow-timeline", h.WorkflowTimeline)
		api.GET("/workflow-bottlenecks", h.WorkflowBottlenecks)
		api.GET("/drivers", h.Drivers)
		api.GET("/resolution-times", h.ResolutionTimes)
		api.GET("/hotspots", h.Hotspots)
	}
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func sampleReports(t *testing.T) []models.Report {
	t.Helper()
	created, err := time.Parse(time.RFC3339, "2026-01-19T10:00:00Z")
	if err != nil {
		t.Fatalf("parsing time: %v", err)
	}
	from := models.StatusPending
	return []models.Report{
		{
			ID:            "r1",
			Category:      models.CategoryRecyclable,
			CreatedAt:     created,
			CurrentStatus: models.StatusAssigned,
			StatusHistory: []models.StatusEvent{
				{ToStatus: models.StatusPending, Timestamp: created, ActorID: "sys", ActorRole: models.RoleSystem},
				{FromStatus: &from, ToStatus: models.StatusAssigned, Timestamp: created.Add(time.Hour), ActorID: "a1", ActorRole: models.RoleAdmin},
			},
		},
	}
}

func TestTrendsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeSource{reports: sampleReports(t)})

	w := get(router, "/api/v3/trends?start_date=2026-01-19&end_date=2026-01-20")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp models.TrendsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.TotalIncidents != 1 {
		t.Errorf("resp = %+v, want success with 1 incident", resp)
	}
	if len(resp.DailyTrends) != 2 {
		t.Errorf("DailyTrends length = %d, want dense 2-day series", len(resp.DailyTrends))
	}
}

func TestInvalidWindowRejectedBeforeFetch(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing params", ""},
		{"start after end", "?start_date=2026-01-20&end_date=2026-01-19"},
		{"malformed date", "?start_date=19-01-2026&end_date=2026-01-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{}
			router := newTestRouter(source)

			w := get(router, "/api/v3/trends"+tt.query)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if source.fetches != 0 {
				t.Errorf("fetches = %d, validation must fail before data access", source.fetches)
			}

			var resp models.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error envelope: %v", err)
			}
			if resp.Success || resp.Message == "" {
				t.Errorf("error envelope = %+v, want success=false with message", resp)
			}
		})
	}
}

func TestStoreFailureEnvelope(t *testing.T) {
	router := newTestRouter(&fakeSource{err: errors.New("dial tcp: connection refused")})

	w := get(router, "/api/v3/status-distribution?start_date=2026-01-19&end_date=2026-01-20")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if resp.Success || !resp.Retryable {
		t.Errorf("envelope = %+v, want failure marked retryable", resp)
	}
}

func TestTimelineGroupByValidation(t *testing.T) {
	router := newTestRouter(&fakeSource{reports: sampleReports(t)})

	w := get(router, "/api/v3/workflow-timeline?start_date=2026-01-19&end_date=2026-01-20&group_by=category")
	if w.Code != http.StatusBadRequest {
		t.Errorf("group_by=category status = %d, want 400", w.Code)
	}

	w = get(router, "/api/v3/workflow-timeline?start_date=2026-01-19&end_date=2026-01-20&group_by=driver")
	if w.Code != http.StatusOK {
		t.Errorf("group_by=driver status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
}

func TestTrendsLimitValidation(t *testing.T) {
	router := newTestRouter(&fakeSource{reports: sampleReports(t)})

	for _, limit := range []string{"0", "-5", "abc"} {
		w := get(router, "/api/v3/trends?start_date=2026-01-19&end_date=2026-01-20&limit="+limit)
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", limit, w.Code)
		}
	}
}

func TestHotspotsViewportValidation(t *testing.T) {
	router := newTestRouter(&fakeSource{reports: sampleReports(t)})
	base := "/api/v3/hotspots?start_date=2026-01-19&end_date=2026-01-20"

	w := get(router, base+"&sw_lat=42.40&sw_lon=19.20")
	if w.Code != http.StatusBadRequest {
		t.Errorf("partial viewport status = %d, want 400", w.Code)
	}

	w = get(router, base+"&sw_lat=42.40&sw_lon=19.20&ne_lat=42.48&ne_lon=not-a-number")
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric viewport status = %d, want 400", w.Code)
	}

	w = get(router, base+"&sw_lat=42.40&sw_lon=19.20&ne_lat=42.48&ne_lon=19.30")
	if w.Code != http.StatusOK {
		t.Errorf("full viewport status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantHealth string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeSource{pingErr: tt.pingErr})

			w := get(router, "/health")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp models.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding health response: %v", err)
			}
			if resp.SystemHealth != tt.wantHealth {
				t.Errorf("SystemHealth = %s, want %s", resp.SystemHealth, tt.wantHealth)
			}
		})
	}
}
