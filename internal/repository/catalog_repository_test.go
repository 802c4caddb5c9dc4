package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-planner/internal/models"
)

func TestCatalogRepositoryListClassesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, school_year_id, period, specialization_id FROM classes WHERE 1=1 AND school_year_id = $1 AND period = $2 ORDER BY name ASC")).
		WithArgs(int64(1), "S1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "school_year_id", "period", "specialization_id"}).
			AddRow(42, "XI IPA 1", 1, "S1", 7).
			AddRow(43, "XI Umum", 1, "S1", nil))

	classes, err := repo.ListClasses(context.Background(), models.ClassFilter{SchoolYearID: 1, Period: "S1"})
	require.NoError(t, err)
	require.Len(t, classes, 2)
	require.NotNil(t, classes[0].SpecializationID)
	assert.Equal(t, int64(7), *classes[0].SpecializationID)
	assert.Nil(t, classes[1].SpecializationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListSessionTypesByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, code, coefficient, status FROM session_types WHERE status = $1 ORDER BY title ASC")).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "code", "coefficient", "status"}).AddRow(2, "Lecture", "LEC", 1.5, "active"))

	types, err := repo.ListSessionTypes(context.Background(), "active")
	require.NoError(t, err)
	require.Len(t, types, 1)
	require.NotNil(t, types[0].Coefficient)
	assert.InDelta(t, 1.5, *types[0].Coefficient, 0.0001)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, code, coefficient, status FROM session_types ORDER BY title ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "code", "coefficient", "status"}))
	_, err = repo.ListSessionTypes(context.Background(), "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListPeriods(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM periods WHERE school_year_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"code", "label", "school_year_id"}).AddRow("S1", "Semester 1", 1))

	periods, err := repo.ListPeriods(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Period{{Code: "S1", Label: "Semester 1", SchoolYearID: 1}}, periods)
	assert.NoError(t, mock.ExpectationsWereMet())
}
