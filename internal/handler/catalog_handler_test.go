package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-planner/internal/models"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

type catalogServiceMock struct {
	classFilter  models.ClassFilter
	periodsFor   int64
	typesStatus  string
	sessionTypes []models.SessionType
	typesErr     error
}

func (m *catalogServiceMock) SchoolYears(ctx context.Context) ([]models.SchoolYear, error) {
	return []models.SchoolYear{{ID: 1}}, nil
}

func (m *catalogServiceMock) Periods(ctx context.Context, schoolYearID int64) ([]models.Period, error) {
	m.periodsFor = schoolYearID
	return []models.Period{}, nil
}

func (m *catalogServiceMock) Classes(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	m.classFilter = filter
	return []models.Class{{ID: 42}}, nil
}

func (m *catalogServiceMock) Teachers(ctx context.Context) ([]models.Teacher, error) {
	return []models.Teacher{}, nil
}

func (m *catalogServiceMock) ClassRooms(ctx context.Context) ([]models.ClassRoom, error) {
	return []models.ClassRoom{}, nil
}

func (m *catalogServiceMock) Specializations(ctx context.Context) ([]models.Specialization, error) {
	return []models.Specialization{}, nil
}

func (m *catalogServiceMock) SessionTypes(ctx context.Context, status string) ([]models.SessionType, error) {
	m.typesStatus = status
	return m.sessionTypes, m.typesErr
}

func (m *catalogServiceMock) Courses(ctx context.Context) ([]models.Course, error) {
	return []models.Course{}, nil
}

func TestCatalogHandlerClassesAcceptsBothPeriodParams(t *testing.T) {
	svc := &catalogServiceMock{}
	h := NewCatalogHandler(svc)

	c, w := newJSONContext(http.MethodGet, "/classes?school_year_id=3&period_id=2024-1", nil)
	h.Classes(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ClassFilter{SchoolYearID: 3, Period: "2024-1"}, svc.classFilter)

	c, w = newJSONContext(http.MethodGet, "/classes?school_year_id=3&period=2024-2", nil)
	h.Classes(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-2", svc.classFilter.Period)

	var classes []models.Class
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &classes))
	assert.Len(t, classes, 1)
}

func TestCatalogHandlerPeriodsRequiresValidID(t *testing.T) {
	svc := &catalogServiceMock{}
	h := NewCatalogHandler(svc)

	c, w := newJSONContext(http.MethodGet, "/school-years/x/periods", nil)
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.Periods(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newJSONContext(http.MethodGet, "/school-years/5/periods", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	h.Periods(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, svc.periodsFor)
}

func TestCatalogHandlerSessionTypesPassesStatus(t *testing.T) {
	svc := &catalogServiceMock{sessionTypes: []models.SessionType{{ID: 1, Status: models.SessionTypeActive}}}
	h := NewCatalogHandler(svc)

	c, w := newJSONContext(http.MethodGet, "/session-types?status=all", nil)
	h.SessionTypes(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "all", svc.typesStatus)
}

func TestCatalogHandlerSessionTypesError(t *testing.T) {
	h := NewCatalogHandler(&catalogServiceMock{typesErr: appErrors.Clone(appErrors.ErrValidation, "unknown status")})

	c, w := newJSONContext(http.MethodGet, "/session-types?status=weird", nil)
	h.SessionTypes(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
