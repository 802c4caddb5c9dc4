package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-planner/internal/models"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

func invalidParam(name string) error {
	return appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+name)
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name)
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter; absent means 0.
func queryID(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, invalidParam(name)
	}
	return id, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, invalidParam(name)
	}
	return value, nil
}

// sessionFilterFromQuery reads the session list filters. Status "all" is the same
// as no status.
func sessionFilterFromQuery(c *gin.Context) (models.SessionFilter, error) {
	filter := models.SessionFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
	}
	if filter.Status == "all" {
		filter.Status = ""
	}
	ids := []struct {
		name   string
		target *int64
	}{
		{"class_id", &filter.ClassID},
		{"teacher_id", &filter.TeacherID},
		{"classroom_id", &filter.ClassRoomID},
		{"specialization_id", &filter.SpecializationID},
		{"session_type_id", &filter.SessionTypeID},
		{"course_id", &filter.CourseID},
	}
	for _, id := range ids {
		value, err := queryID(c, id.name)
		if err != nil {
			return filter, err
		}
		*id.target = value
	}
	var err error
	if filter.Page, err = queryInt(c, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = queryInt(c, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}
