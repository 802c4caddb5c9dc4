package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/middleware"
	"github.com/noah-isme/sma-planner/internal/planning"
	"github.com/noah-isme/sma-planner/internal/service"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
	"github.com/noah-isme/sma-planner/pkg/response"
)

type specializationResolver interface {
	ResolveSpecialization(ctx context.Context, classID int64) (*dto.SpecializationResolution, error)
}

type calendarProvider interface {
	Build(ctx context.Context, q service.CalendarQuery) (*service.CalendarView, bool, error)
}

type calendarExporter interface {
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
}

// PlanningHandler exposes the stateless planning helpers and calendar windows.
type PlanningHandler struct {
	catalog  specializationResolver
	calendar calendarProvider
	exports  calendarExporter
}

// NewPlanningHandler constructs handler.
func NewPlanningHandler(catalog specializationResolver, calendar calendarProvider, exports calendarExporter) *PlanningHandler {
	return &PlanningHandler{catalog: catalog, calendar: calendar, exports: exports}
}

// TimeOptions godoc
// @Summary Selectable times of day
// @Description Without start, every option from 06:00 to 23:45 plus 00:00 (end of day). With start, only the options strictly after it.
// @Tags Planning
// @Produce json
// @Param start query string false "Chosen start time (HH:mm)"
// @Success 200 {object} response.Envelope
// @Router /planning/time-options [get]
func (h *PlanningHandler) TimeOptions(c *gin.Context) {
	start := planning.Normalize(c.Query("start"))
	options := planning.GenerateTimeOptions()
	if start != "" {
		options = planning.EndTimeOptions(start)
	}
	response.JSON(c, http.StatusOK, dto.TimeOptionsResponse{Start: start, Options: options}, nil)
}

// ValidateInterval godoc
// @Summary Validate a start/end pair
// @Tags Planning
// @Accept json
// @Produce json
// @Param payload body dto.IntervalRequest true "Interval"
// @Success 200 {object} response.Envelope
// @Router /planning/validate-interval [post]
func (h *PlanningHandler) ValidateInterval(c *gin.Context) {
	var req dto.IntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result := dto.IntervalResponse{
		Valid:     true,
		StartTime: planning.Normalize(req.StartTime),
		EndTime:   planning.Normalize(req.EndTime),
	}
	if err := planning.ValidateInterval(req.StartTime, req.EndTime); err != nil {
		result.Valid = false
		result.Reason = strings.TrimPrefix(err.Error(), planning.ErrInvalidInterval.Error()+": ")
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Specialization godoc
// @Summary Specialization implied by a class
// @Tags Planning
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /planning/classes/{id}/specialization [get]
func (h *PlanningHandler) Specialization(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	resolution, err := h.catalog.ResolveSpecialization(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resolution, nil)
}

// Week godoc
// @Summary Week calendar (Monday to Friday)
// @Tags Planning
// @Produce json
// @Param anchor query string false "Any date in the week (YYYY-MM-DD), default today"
// @Success 200 {object} response.Envelope
// @Router /planning/calendar/week [get]
func (h *PlanningHandler) Week(c *gin.Context) {
	h.calendarView(c, planning.ViewWeek)
}

// Month godoc
// @Summary Month calendar (42 days from the Monday on or before the 1st)
// @Tags Planning
// @Produce json
// @Param anchor query string false "Any date in the month (YYYY-MM-DD), default today"
// @Success 200 {object} response.Envelope
// @Router /planning/calendar/month [get]
func (h *PlanningHandler) Month(c *gin.Context) {
	h.calendarView(c, planning.ViewMonth)
}

func (h *PlanningHandler) calendarView(c *gin.Context, view planning.ViewMode) {
	query, err := calendarQuery(c, view)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, hit, err := h.calendar.Build(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetWindow(c, result.From, result.To)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export a calendar window
// @Description Renders the week or month as PDF (default) or CSV. The optional conflict_* parameters highlight one slot.
// @Tags Planning
// @Produce application/pdf
// @Produce text/csv
// @Param view query string false "week or month"
// @Param anchor query string false "YYYY-MM-DD"
// @Param format query string false "pdf or csv"
// @Param conflict_date query string false "Highlighted slot date"
// @Param conflict_start query string false "Highlighted slot start"
// @Param conflict_end query string false "Highlighted slot end"
// @Success 200 {file} file
// @Router /planning/calendar/export [get]
func (h *PlanningHandler) Export(c *gin.Context) {
	view, err := planning.ParseViewMode(c.Query("view"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "view must be week or month"))
		return
	}
	query, err := calendarQuery(c, view)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.ExportRequest{Query: query, Format: strings.ToLower(strings.TrimSpace(c.Query("format")))}
	if date := strings.TrimSpace(c.Query("conflict_date")); date != "" {
		req.Conflict = &planning.ConflictSlot{Date: date, StartTime: c.Query("conflict_start"), EndTime: c.Query("conflict_end")}
	}
	result, err := h.exports.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.ContentType, result.Filename, result.Body)
}

func calendarQuery(c *gin.Context, view planning.ViewMode) (service.CalendarQuery, error) {
	filter, err := sessionFilterFromQuery(c)
	if err != nil {
		return service.CalendarQuery{}, err
	}
	anchor := strings.TrimSpace(c.Query("anchor"))
	if anchor != "" {
		if _, err := planning.ParseDate(anchor); err != nil {
			return service.CalendarQuery{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "anchor must be a YYYY-MM-DD date")
		}
	}
	filter.Page, filter.PageSize = 0, 0
	return service.CalendarQuery{View: view, Anchor: anchor, Filter: filter}, nil
}
