package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-planner/internal/models"
	"github.com/noah-isme/sma-planner/pkg/response"
)

type catalogService interface {
	SchoolYears(ctx context.Context) ([]models.SchoolYear, error)
	Periods(ctx context.Context, schoolYearID int64) ([]models.Period, error)
	Classes(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	Teachers(ctx context.Context) ([]models.Teacher, error)
	ClassRooms(ctx context.Context) ([]models.ClassRoom, error)
	Specializations(ctx context.Context) ([]models.Specialization, error)
	SessionTypes(ctx context.Context, status string) ([]models.SessionType, error)
	Courses(ctx context.Context) ([]models.Course, error)
}

// CatalogHandler serves the form selector lookups.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

func respondList[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// SchoolYears godoc
// @Summary List school years
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school-years [get]
func (h *CatalogHandler) SchoolYears(c *gin.Context) {
	items, err := h.service.SchoolYears(c.Request.Context())
	respondList(c, items, err)
}

// Periods godoc
// @Summary List periods of a school year
// @Tags Catalog
// @Produce json
// @Param id path int true "School year ID"
// @Success 200 {object} response.Envelope
// @Router /school-years/{id}/periods [get]
func (h *CatalogHandler) Periods(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.Periods(c.Request.Context(), id)
	respondList(c, items, err)
}

// Classes godoc
// @Summary List classes of a school year and period
// @Tags Catalog
// @Produce json
// @Param school_year_id query int false "School year ID"
// @Param period_id query string false "Period code"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *CatalogHandler) Classes(c *gin.Context) {
	schoolYearID, err := queryID(c, "school_year_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	period := strings.TrimSpace(c.Query("period_id"))
	if period == "" {
		period = strings.TrimSpace(c.Query("period"))
	}
	items, err := h.service.Classes(c.Request.Context(), models.ClassFilter{SchoolYearID: schoolYearID, Period: period})
	respondList(c, items, err)
}

// Teachers godoc
// @Summary List teachers
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *CatalogHandler) Teachers(c *gin.Context) {
	items, err := h.service.Teachers(c.Request.Context())
	respondList(c, items, err)
}

// ClassRooms godoc
// @Summary List classrooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *CatalogHandler) ClassRooms(c *gin.Context) {
	items, err := h.service.ClassRooms(c.Request.Context())
	respondList(c, items, err)
}

// Specializations godoc
// @Summary List specializations
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /specializations [get]
func (h *CatalogHandler) Specializations(c *gin.Context) {
	items, err := h.service.Specializations(c.Request.Context())
	respondList(c, items, err)
}

// SessionTypes godoc
// @Summary List session types
// @Tags Catalog
// @Produce json
// @Param status query string false "active (default), inactive or all"
// @Success 200 {object} response.Envelope
// @Router /session-types [get]
func (h *CatalogHandler) SessionTypes(c *gin.Context) {
	items, err := h.service.SessionTypes(c.Request.Context(), strings.TrimSpace(c.Query("status")))
	respondList(c, items, err)
}

// Courses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	items, err := h.service.Courses(c.Request.Context())
	respondList(c, items, err)
}
