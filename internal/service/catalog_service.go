package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/models"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

type catalogRepository interface {
	ListSchoolYears(ctx context.Context) ([]models.SchoolYear, error)
	ListPeriods(ctx context.Context, schoolYearID int64) ([]models.Period, error)
	ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	FindClass(ctx context.Context, id int64) (*models.Class, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListClassRooms(ctx context.Context) ([]models.ClassRoom, error)
	ListSpecializations(ctx context.Context) ([]models.Specialization, error)
	ListSessionTypes(ctx context.Context, status string) ([]models.SessionType, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// CatalogService serves the lookup lists behind the session form.
type CatalogService struct {
	repo   catalogRepository
	logger *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(repo catalogRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, logger: logger}
}

func internalErr(err error, what string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to list %s", what))
}

// SchoolYears lists school years.
func (s *CatalogService) SchoolYears(ctx context.Context) ([]models.SchoolYear, error) {
	years, err := s.repo.ListSchoolYears(ctx)
	if err != nil {
		return nil, internalErr(err, "school years")
	}
	return nonNil(years), nil
}

// Periods lists the periods of a school year.
func (s *CatalogService) Periods(ctx context.Context, schoolYearID int64) ([]models.Period, error) {
	if schoolYearID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school year id is required")
	}
	periods, err := s.repo.ListPeriods(ctx, schoolYearID)
	if err != nil {
		return nil, internalErr(err, "periods")
	}
	return nonNil(periods), nil
}

// Classes lists classes. The class selector stays empty until both school year
// and period are chosen, so a partial filter returns nothing.
func (s *CatalogService) Classes(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	if (filter.SchoolYearID > 0) != (filter.Period != "") {
		return []models.Class{}, nil
	}
	classes, err := s.repo.ListClasses(ctx, filter)
	if err != nil {
		return nil, internalErr(err, "classes")
	}
	return nonNil(classes), nil
}

// ResolveSpecialization returns the specialization a class implies, if any.
func (s *CatalogService) ResolveSpecialization(ctx context.Context, classID int64) (*dto.SpecializationResolution, error) {
	class, err := s.repo.FindClass(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	resolution := &dto.SpecializationResolution{ClassID: class.ID}
	if class.SpecializationID != nil && *class.SpecializationID > 0 {
		spec := *class.SpecializationID
		resolution.SpecializationID = &spec
	}
	return resolution, nil
}

// Teachers lists teachers.
func (s *CatalogService) Teachers(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.ListTeachers(ctx)
	if err != nil {
		return nil, internalErr(err, "teachers")
	}
	return nonNil(teachers), nil
}

// ClassRooms lists classrooms.
func (s *CatalogService) ClassRooms(ctx context.Context) ([]models.ClassRoom, error) {
	rooms, err := s.repo.ListClassRooms(ctx)
	if err != nil {
		return nil, internalErr(err, "classrooms")
	}
	return nonNil(rooms), nil
}

// Specializations lists specializations.
func (s *CatalogService) Specializations(ctx context.Context) ([]models.Specialization, error) {
	specs, err := s.repo.ListSpecializations(ctx)
	if err != nil {
		return nil, internalErr(err, "specializations")
	}
	return nonNil(specs), nil
}

// SessionTypes lists session types. Status is active (default), inactive or all.
func (s *CatalogService) SessionTypes(ctx context.Context, status string) ([]models.SessionType, error) {
	switch status {
	case "":
		status = string(models.SessionTypeActive)
	case "all":
		status = ""
	case string(models.SessionTypeActive), string(models.SessionTypeInactive):
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown session type status %q", status))
	}
	types, err := s.repo.ListSessionTypes(ctx, status)
	if err != nil {
		return nil, internalErr(err, "session types")
	}
	return nonNil(types), nil
}

// Courses lists courses.
func (s *CatalogService) Courses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, internalErr(err, "courses")
	}
	return nonNil(courses), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
