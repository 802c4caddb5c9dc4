package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-planner/internal/models"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

type mockCatalogRepo struct {
	classes     []models.Class
	classFilter *models.ClassFilter
	typeStatus  *string
}

func (m *mockCatalogRepo) ListSchoolYears(ctx context.Context) ([]models.SchoolYear, error) {
	return []models.SchoolYear{{ID: 1, Label: "2024/2025", Active: true}}, nil
}
func (m *mockCatalogRepo) ListPeriods(ctx context.Context, schoolYearID int64) ([]models.Period, error) {
	return nil, nil
}
func (m *mockCatalogRepo) ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	m.classFilter = &filter
	return m.classes, nil
}
func (m *mockCatalogRepo) FindClass(ctx context.Context, id int64) (*models.Class, error) {
	for _, c := range m.classes {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}
func (m *mockCatalogRepo) ListTeachers(ctx context.Context) ([]models.Teacher, error) { return nil, nil }
func (m *mockCatalogRepo) ListClassRooms(ctx context.Context) ([]models.ClassRoom, error) {
	return nil, nil
}
func (m *mockCatalogRepo) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	return nil, nil
}
func (m *mockCatalogRepo) ListSessionTypes(ctx context.Context, status string) ([]models.SessionType, error) {
	m.typeStatus = &status
	return nil, nil
}
func (m *mockCatalogRepo) ListCourses(ctx context.Context) ([]models.Course, error) { return nil, nil }

func TestCatalogServiceResolveSpecialization(t *testing.T) {
	spec := int64(7)
	repo := &mockCatalogRepo{classes: []models.Class{
		{ID: 42, SchoolYearID: 1, Period: "S1", SpecializationID: &spec},
		{ID: 43, SchoolYearID: 1, Period: "S1"},
	}}
	svc := NewCatalogService(repo, nil)

	res, err := svc.ResolveSpecialization(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, res.SpecializationID)
	assert.Equal(t, int64(7), *res.SpecializationID)

	res, err = svc.ResolveSpecialization(context.Background(), 43)
	require.NoError(t, err)
	assert.Nil(t, res.SpecializationID)

	_, err = svc.ResolveSpecialization(context.Background(), 99)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceClassesNeedYearAndPeriod(t *testing.T) {
	repo := &mockCatalogRepo{classes: []models.Class{{ID: 42}}}
	svc := NewCatalogService(repo, nil)

	classes, err := svc.Classes(context.Background(), models.ClassFilter{SchoolYearID: 1})
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.Nil(t, repo.classFilter, "partial filters never reach the repository")

	classes, err = svc.Classes(context.Background(), models.ClassFilter{SchoolYearID: 1, Period: "S1"})
	require.NoError(t, err)
	assert.Len(t, classes, 1)
}

func TestCatalogServiceSessionTypeStatus(t *testing.T) {
	repo := &mockCatalogRepo{}
	svc := NewCatalogService(repo, nil)

	types, err := svc.SessionTypes(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, types)
	assert.Equal(t, "active", *repo.typeStatus)

	_, err = svc.SessionTypes(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, "", *repo.typeStatus)

	_, err = svc.SessionTypes(context.Background(), "retired")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Periods(context.Background(), 0)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
