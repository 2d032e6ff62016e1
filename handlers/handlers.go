package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"report-analytics/analytics"
	"report-analytics/models"
	"report-analytics/service"
)

// AnalyticsHandler exposes the analytics engine over HTTP. Every failure
// path returns the same envelope shape as success so clients never have
// to inspect error internals.
type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// parseWindow reads and validates the window query params. Invalid input
// fails here, before any data source access.
func parseWindow(c *gin.Context) (analytics.Window, bool) {
	w, err := analytics.ParseWindow(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "invalid date range: start_date and end_date must be YYYY-MM-DD with start_date <= end_date",
		})
		return analytics.Window{}, false
	}
	return w, true
}

// fail maps engine errors onto the uniform failure envelope. Transient
// failures carry a retryable hint; nothing internal leaks to callers.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "invalid date range",
		})
	case errors.Is(err, service.ErrComputationTimeout):
		log.Warnf("Analytics query timed out: %v", err)
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Success:   false,
			Message:   "analytics query timed out",
			Retryable: true,
		})
	case errors.Is(err, service.ErrDataSourceUnavailable):
		log.Errorf("Report store unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success:   false,
			Message:   "report store unavailable",
			Retryable: true,
		})
	default:
		log.Errorf("Analytics query failed: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "internal error",
		})
	}
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	optimize := c.Query("optimize") == "true"
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	resp, err := h.svc.Trends(c.Request.Context(), w, optimize, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) StatusDistribution(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	resp, err := h.svc.StatusDistribution(c.Request.Context(), w)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) StatusTransitions(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	resp, err := h.svc.StatusTransitions(c.Request.Context(), w)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) WorkflowTimeline(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	groupBy := c.Query("group_by")
	if groupBy != "" && groupBy != "driver" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "group_by supports only 'driver'",
		})
		return
	}

	maxReports := 0
	if maxStr := c.Query("max_reports"); maxStr != "" {
		parsed, err := strconv.Atoi(maxStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Message: "max_reports must be a positive integer",
			})
			return
		}
		maxReports = parsed
	}

	resp, err := h.svc.WorkflowTimeline(c.Request.Context(), w, groupBy == "driver", maxReports)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) WorkflowBottlenecks(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	resp, err := h.svc.WorkflowBottlenecks(c.Request.Context(), w)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) Drivers(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	resp, err := h.svc.Drivers(c.Request.Context(), w)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) ResolutionTimes(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	resp, err := h.svc.ResolutionTimes(c.Request.Context(), w)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) Hotspots(c *gin.Context) {
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	vp, ok := parseViewport(c)
	if !ok {
		return
	}

	resp, err := h.svc.Hotspots(c.Request.Context(), w, vp)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseViewport reads the optional sw/ne viewport corner params. Either
// all four are present or none.
func parseViewport(c *gin.Context) (*models.ViewPort, bool) {
	swLat, hasSwLat := c.GetQuery("sw_lat")
	swLon, hasSwLon := c.GetQuery("sw_lon")
	neLat, hasNeLat := c.GetQuery("ne_lat")
	neLon, hasNeLon := c.GetQuery("ne_lon")

	if !hasSwLat && !hasSwLon && !hasNeLat && !hasNeLon {
		return nil, true
	}
	if !(hasSwLat && hasSwLon && hasNeLat && hasNeLon) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "viewport requires sw_lat, sw_lon, ne_lat and ne_lon together",
		})
		return nil, false
	}

	vp := &models.ViewPort{}
	for _, p := range []struct {
		name  string
		value string
		dest  *float64
	}{
		{"sw_lat", swLat, &vp.LatMin},
		{"sw_lon", swLon, &vp.LonMin},
		{"ne_lat", neLat, &vp.LatMax},
		{"ne_lon", neLon, &vp.LonMax},
	} {
		parsed, err := strconv.ParseFloat(p.value, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Message: "viewport parameter " + p.name + " must be a number",
			})
			return nil, false
		}
		*p.dest = parsed
	}
	return vp, true
}

// Health reports database and cache status. Public, never mutates state.
func (h *AnalyticsHandler) Health(c *gin.Context) {
	resp := h.svc.Health(c.Request.Context())
	status := http.StatusOK
	if resp.SystemHealth != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
