package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-planner/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var sessionRowColumns = []string{"id", "period", "session_date", "start_time", "end_time", "teacher_id", "specialization_id", "class_id", "classroom_id", "session_type_id", "course_id", "school_year_id", "status", "created_at", "updated_at"}

func TestSessionRepositoryListExcludesDeletedByDefault(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow(1, "S1", "2024-05-14", "09:00", "10:00", 5, nil, 42, 3, 2, 11, 1, "active", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE 1=1 AND status <> 'deleted' AND class_id = $1 AND session_date >= $2 AND session_date <= $3 ORDER BY session_date ASC, start_time ASC, id ASC LIMIT 50 OFFSET 0")).
		WithArgs(int64(42), "2024-05-13", "2024-05-17").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions WHERE 1=1 AND status <> 'deleted' AND class_id = $1")).
		WithArgs(int64(42), "2024-05-13", "2024-05-17").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.SessionFilter{ClassID: 42, DateFrom: "2024-05-13", DateTo: "2024-05-17"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-05-14", list[0].Date)
	assert.Nil(t, list[0].SpecializationID)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListExplicitStatusAndPaging(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND status = $1 ORDER BY session_date ASC, start_time ASC, id ASC LIMIT 500 OFFSET 1000")).
		WithArgs("deleted").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions WHERE 1=1 AND status = $1")).
		WithArgs("deleted").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.List(context.Background(), models.SessionFilter{Status: "deleted", Page: 3, PageSize: 9000})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryFindOverlapsMapsMidnight(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("start_time < $3::time AND (CASE WHEN end_time = TIME '00:00' THEN TIME '24:00' ELSE end_time END) > $2::time")).
		WithArgs("2024-05-14", "23:00", "24:00", int64(42), int64(5), int64(3), int64(0)).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow(9, "S1", "2024-05-14", "23:30", "00:00", 6, nil, 42, 4, 2, 11, 1, "active", now, now))

	overlaps, err := repo.FindOverlaps(context.Background(), models.SessionOverlapQuery{
		Date: "2024-05-14", StartTime: "23:00:00", EndTime: "00:00", ClassID: 42, TeacherID: 5, ClassRoomID: 3,
	})
	require.NoError(t, err)
	require.Len(t, overlaps, 1)
	assert.Equal(t, int64(9), overlaps[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("INSERT INTO sessions").
		WithArgs("S1", "2024-05-14", "09:00", "10:00", int64(5), sqlmock.AnyArg(), int64(42), int64(3), int64(2), int64(11), int64(1), models.SessionStatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))

	session := &models.Session{Period: "S1", Date: "2024-05-14", StartTime: "09:00", EndTime: "10:00", TeacherID: 5,
		ClassID: 42, ClassRoomID: 3, SessionTypeID: 2, CourseID: 11, SchoolYearID: 1, Status: models.SessionStatusActive}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.Equal(t, int64(77), session.ID)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateAndSoftDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("UPDATE sessions SET period").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &models.Session{ID: 404})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET status = 'deleted', updated_at = $2 WHERE id = $1 AND status <> 'deleted'")).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
