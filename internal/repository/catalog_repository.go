package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-planner/internal/models"
)

// CatalogRepository reads the reference data behind the session form selectors.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListSchoolYears returns school years, most recent first.
func (r *CatalogRepository) ListSchoolYears(ctx context.Context) ([]models.SchoolYear, error) {
	const query = `SELECT id, label, active FROM school_years ORDER BY label DESC`
	var years []models.SchoolYear
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list school years: %w", err)
	}
	return years, nil
}

// ListPeriods returns the periods of a school year.
func (r *CatalogRepository) ListPeriods(ctx context.Context, schoolYearID int64) ([]models.Period, error) {
	const query = `SELECT code, label, school_year_id FROM periods WHERE school_year_id = $1 ORDER BY code ASC`
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// ListClasses returns classes, optionally narrowed to a school year and period.
func (r *CatalogRepository) ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	base := "FROM classes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SchoolYearID > 0 {
		conditions = append(conditions, fmt.Sprintf("school_year_id = $%d", len(args)+1))
		args = append(args, filter.SchoolYearID)
	}
	if filter.Period != "" {
		conditions = append(conditions, fmt.Sprintf("period = $%d", len(args)+1))
		args = append(args, filter.Period)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT id, name, school_year_id, period, specialization_id %s ORDER BY name ASC", base)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindClass loads a class by id.
func (r *CatalogRepository) FindClass(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT id, name, school_year_id, period, specialization_id FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListTeachers returns all teachers ordered by name.
func (r *CatalogRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, full_name, email FROM teachers ORDER BY full_name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// ListClassRooms returns all classrooms ordered by name.
func (r *CatalogRepository) ListClassRooms(ctx context.Context) ([]models.ClassRoom, error) {
	const query = `SELECT id, name, capacity FROM classrooms ORDER BY name ASC`
	var rooms []models.ClassRoom
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}

// ListSpecializations returns all specializations ordered by name.
func (r *CatalogRepository) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	const query = `SELECT id, name FROM specializations ORDER BY name ASC`
	var specs []models.Specialization
	if err := r.db.SelectContext(ctx, &specs, query); err != nil {
		return nil, fmt.Errorf("list specializations: %w", err)
	}
	return specs, nil
}

// ListSessionTypes returns session types, optionally only those with the given status.
func (r *CatalogRepository) ListSessionTypes(ctx context.Context, status string) ([]models.SessionType, error) {
	query := `SELECT id, title, code, coefficient, status FROM session_types`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY title ASC`
	var types []models.SessionType
	if err := r.db.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, fmt.Errorf("list session types: %w", err)
	}
	return types, nil
}

// FindSessionType loads a session type by id.
func (r *CatalogRepository) FindSessionType(ctx context.Context, id int64) (*models.SessionType, error) {
	const query = `SELECT id, title, code, coefficient, status FROM session_types WHERE id = $1`
	var sessionType models.SessionType
	if err := r.db.GetContext(ctx, &sessionType, query, id); err != nil {
		return nil, err
	}
	return &sessionType, nil
}

// ListCourses returns all courses ordered by code.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, code, title FROM courses ORDER BY code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
