package api

import (
	"strconv"

	"office-attendance/internal/config"
	"office-attendance/internal/report"
	"office-attendance/internal/service"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler handles HTTP requests for attendance reports.
type AttendanceHandler struct {
	cfg *config.AppConfig
	svc *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(cfg *config.AppConfig, svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{cfg: cfg, svc: svc}
}

func bindQuery(c *gin.Context) (service.Query, bool) {
	q := service.Query{
		Start:   c.Query("start"),
		End:     c.Query("end"),
		Segment: c.Query("segment"),
	}
	if s := c.Query("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil || days < 1 {
			BadRequest(c, "Invalid days parameter")
			return q, false
		}
		q.Days = days
	}
	return q, true
}

// windowed adapts a window query of the service into a handler.
func windowed(fn func(*gin.Context, service.Query) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindQuery(c)
		if !ok {
			return
		}
		data, err := fn(c, q)
		if err != nil {
			Fail(c, err)
			return
		}
		Success(c, data)
	}
}

// GetSession handles GET /api/v1/attendance/session
func (h *AttendanceHandler) GetSession(c *gin.Context) {
	info, err := h.svc.Session(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, info)
}

// GetQuality handles GET /api/v1/attendance/quality
func (h *AttendanceHandler) GetQuality(c *gin.Context) {
	res, err := h.svc.Quality(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, res)
}

// GetExplanation handles GET /api/v1/attendance/explain
func (h *AttendanceHandler) GetExplanation(c *gin.Context) {
	employee, date := c.Query("employee"), c.Query("date")
	if employee == "" || date == "" {
		BadRequest(c, "employee and date are required")
		return
	}
	ex, err := h.svc.Explain(c.Request.Context(), employee, date, c.Query("segment"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, ex)
}

// Reload handles POST /api/v1/attendance/reload
func (h *AttendanceHandler) Reload(c *gin.Context) {
	info, err := h.svc.Reload(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, info)
}

// Export handles POST /api/v1/attendance/export
func (h *AttendanceHandler) Export(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	formats, err := report.ParseFormats(c.Query("formats"))
	if err != nil {
		Fail(c, err)
		return
	}
	ctx := c.Request.Context()
	r, err := h.svc.Report(ctx, q, c.Query("facts") == "true")
	if err != nil {
		Fail(c, err)
		return
	}
	paths, err := report.Export(ctx, h.cfg.ExportDir, r, formats)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"files": paths, "window": r.Window})
}
