package models

import "time"

// SessionStatus is the lifecycle state of a planned session.
type SessionStatus string

const (
	SessionStatusDisabled SessionStatus = "disabled"
	SessionStatusActive   SessionStatus = "active"
	SessionStatusPending  SessionStatus = "pending"
	SessionStatusArchived SessionStatus = "archived"
	// SessionStatusDeleted marks a soft-deleted session. It never appears on a calendar.
	SessionStatusDeleted SessionStatus = "deleted"
)

// Valid reports whether the status is one of the known codes.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusDisabled, SessionStatusActive, SessionStatusPending, SessionStatusArchived, SessionStatusDeleted:
		return true
	default:
		return false
	}
}

// Session is a single scheduled teaching slot.
type Session struct {
	ID               int64         `db:"id" json:"id"`
	Period           string        `db:"period" json:"period"`
	Date             string        `db:"session_date" json:"date"`
	StartTime        string        `db:"start_time" json:"start_time"`
	EndTime          string        `db:"end_time" json:"end_time"`
	TeacherID        int64         `db:"teacher_id" json:"teacher_id"`
	SpecializationID *int64        `db:"specialization_id" json:"specialization_id,omitempty"`
	ClassID          int64         `db:"class_id" json:"class_id"`
	ClassRoomID      int64         `db:"classroom_id" json:"classroom_id"`
	SessionTypeID    int64         `db:"session_type_id" json:"session_type_id"`
	CourseID         int64         `db:"course_id" json:"course_id"`
	SchoolYearID     int64         `db:"school_year_id" json:"school_year_id"`
	Status           SessionStatus `db:"status" json:"status"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter describes query params for listing sessions.
type SessionFilter struct {
	Status           string `json:"status,omitempty"`
	ClassID          int64  `json:"class_id,omitempty"`
	TeacherID        int64  `json:"teacher_id,omitempty"`
	ClassRoomID      int64  `json:"classroom_id,omitempty"`
	SpecializationID int64  `json:"specialization_id,omitempty"`
	SessionTypeID    int64  `json:"session_type_id,omitempty"`
	CourseID         int64  `json:"course_id,omitempty"`
	DateFrom         string `json:"date_from,omitempty"`
	DateTo           string `json:"date_to,omitempty"`
	Page             int    `json:"page,omitempty"`
	PageSize         int    `json:"limit,omitempty"`
}

// SessionOverlapQuery narrows the candidates that may collide with a booking.
type SessionOverlapQuery struct {
	Date        string
	StartTime   string
	EndTime     string
	ClassID     int64
	TeacherID   int64
	ClassRoomID int64
	ExcludeID   int64
}

// SessionConflict describes an existing session that collides with a booking.
type SessionConflict struct {
	SessionID   int64  `json:"session_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	ClassID     int64  `json:"class_id"`
	TeacherID   int64  `json:"teacher_id"`
	ClassRoomID int64  `json:"classroom_id"`
	Dimension   string `json:"dimension"`
}

// SessionConflictError is returned when a booking overlaps an existing session.
type SessionConflictError struct {
	Dimension string          `json:"dimension"`
	Message   string          `json:"message"`
	Conflict  SessionConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
