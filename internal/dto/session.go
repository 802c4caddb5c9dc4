package dto

import "github.com/noah-isme/sma-planner/internal/models"

// SessionPayload is the create/update body for a session.
type SessionPayload struct {
	Period           string               `json:"period" validate:"required"`
	Date             string               `json:"date" validate:"required,isodate"`
	StartTime        string               `json:"start_time" validate:"required,hhmm"`
	EndTime          string               `json:"end_time" validate:"required,hhmm"`
	TeacherID        int64                `json:"teacher_id" validate:"required,gt=0"`
	SpecializationID *int64               `json:"specialization_id,omitempty" validate:"omitempty,gt=0"`
	ClassID          int64                `json:"class_id" validate:"required,gt=0"`
	ClassRoomID      int64                `json:"classroom_id" validate:"required,gt=0"`
	SessionTypeID    int64                `json:"session_type_id" validate:"required,gt=0"`
	CourseID         int64                `json:"course_id" validate:"required,gt=0"`
	SchoolYearID     int64                `json:"school_year_id" validate:"required,gt=0"`
	Status           models.SessionStatus `json:"status,omitempty" validate:"omitempty,session_status"`
}

// SessionList is the decoded list response consumed by planning clients.
type SessionList struct {
	Data []models.Session `json:"data"`
	Meta models.Pagination `json:"pagination"`
}
