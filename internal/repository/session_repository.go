package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-planner/internal/models"
	"github.com/noah-isme/sma-planner/internal/planning"
)

const (
	defaultSessionPageSize = 50
	maxSessionPageSize     = 500
)

// sessionColumns renders dates and times in the wire formats (YYYY-MM-DD, HH:MM).
const sessionColumns = `id, period, to_char(session_date, 'YYYY-MM-DD') AS session_date, to_char(start_time, 'HH24:MI') AS start_time, to_char(end_time, 'HH24:MI') AS end_time, teacher_id, specialization_id, class_id, classroom_id, session_type_id, course_id, school_year_id, status, created_at, updated_at`

// sessionEndExpr treats a stored 00:00 end as the end of the day.
const sessionEndExpr = `(CASE WHEN end_time = TIME '00:00' THEN TIME '24:00' ELSE end_time END)`

// SessionRepository provides persistence for planned sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func sessionConditions(filter models.SessionFilter) (string, []interface{}) {
	base := "FROM sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	} else {
		conditions = append(conditions, fmt.Sprintf("status <> '%s'", models.SessionStatusDeleted))
	}
	ids := []struct {
		column string
		value  int64
	}{
		{"class_id", filter.ClassID},
		{"teacher_id", filter.TeacherID},
		{"classroom_id", filter.ClassRoomID},
		{"specialization_id", filter.SpecializationID},
		{"session_type_id", filter.SessionTypeID},
		{"course_id", filter.CourseID},
	}
	for _, id := range ids {
		if id.value > 0 {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", id.column, len(args)+1))
			args = append(args, id.value)
		}
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("session_date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("session_date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}

	return base + " AND " + strings.Join(conditions, " AND "), args
}

// List returns sessions with optional filtering and pagination.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	base, args := sessionConditions(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultSessionPageSize
	}
	if size > maxSessionPageSize {
		size = maxSessionPageSize
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY session_date ASC, start_time ASC, id ASC LIMIT %d OFFSET %d", sessionColumns, base, size, offset)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// ListInRange returns every non-paginated session between from and to inclusive.
func (r *SessionRepository) ListInRange(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	base, args := sessionConditions(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY session_date ASC, start_time ASC, id ASC", sessionColumns, base)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions in range: %w", err)
	}
	return sessions, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindOverlaps returns live sessions on the same date whose interval intersects
// [start, end) and that share the class, teacher or classroom.
func (r *SessionRepository) FindOverlaps(ctx context.Context, q models.SessionOverlapQuery) ([]models.Session, error) {
	end := planning.Normalize(q.EndTime)
	if end == planning.EndOfDay {
		end = "24:00"
	}
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE session_date = $1 AND status <> '%s' AND start_time < $3::time AND %s > $2::time AND (class_id = $4 OR teacher_id = $5 OR classroom_id = $6) AND id <> $7 ORDER BY start_time ASC, id ASC`,
		sessionColumns, models.SessionStatusDeleted, sessionEndExpr)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, q.Date, planning.Normalize(q.StartTime), end, q.ClassID, q.TeacherID, q.ClassRoomID, q.ExcludeID); err != nil {
		return nil, fmt.Errorf("find session overlaps: %w", err)
	}
	return sessions, nil
}

// Create stores a new session and fills its generated id and timestamps.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `INSERT INTO sessions (period, session_date, start_time, end_time, teacher_id, specialization_id, class_id, classroom_id, session_type_id, course_id, school_year_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query,
		session.Period, session.Date, session.StartTime, session.EndTime, session.TeacherID, session.SpecializationID,
		session.ClassID, session.ClassRoomID, session.SessionTypeID, session.CourseID, session.SchoolYearID,
		session.Status, session.CreatedAt, session.UpdatedAt)
	if err := row.Scan(&session.ID); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies a session record.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sessions SET period = $1, session_date = $2, start_time = $3, end_time = $4, teacher_id = $5, specialization_id = $6, class_id = $7, classroom_id = $8, session_type_id = $9, course_id = $10, school_year_id = $11, status = $12, updated_at = $13 WHERE id = $14`
	res, err := r.db.ExecContext(ctx, query,
		session.Period, session.Date, session.StartTime, session.EndTime, session.TeacherID, session.SpecializationID,
		session.ClassID, session.ClassRoomID, session.SessionTypeID, session.CourseID, session.SchoolYearID,
		session.Status, session.UpdatedAt, session.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireAffected(res)
}

// SoftDelete marks a session deleted. Deleted sessions stay in the table.
func (r *SessionRepository) SoftDelete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE sessions SET status = '%s', updated_at = $2 WHERE id = $1 AND status <> '%s'`, models.SessionStatusDeleted, models.SessionStatusDeleted)
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
