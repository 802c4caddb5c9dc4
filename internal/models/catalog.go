package models

// SchoolYear scopes periods and classes.
type SchoolYear struct {
	ID     int64  `db:"id" json:"id"`
	Label  string `db:"label" json:"label"`
	Active bool   `db:"active" json:"active"`
}

// Period is a teaching period inside a school year, identified by its code.
type Period struct {
	Code         string `db:"code" json:"code"`
	Label        string `db:"label" json:"label"`
	SchoolYearID int64  `db:"school_year_id" json:"school_year_id"`
}

// Class is a student group bound to a school year and period.
type Class struct {
	ID               int64  `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	SchoolYearID     int64  `db:"school_year_id" json:"school_year_id"`
	Period           string `db:"period" json:"period"`
	SpecializationID *int64 `db:"specialization_id" json:"specialization_id,omitempty"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	SchoolYearID int64
	Period       string
}

type Teacher struct {
	ID       int64  `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}

type ClassRoom struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}

type Specialization struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Course struct {
	ID    int64  `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	Title string `db:"title" json:"title"`
}

// SessionTypeStatus gates whether a type may be used for new sessions.
type SessionTypeStatus string

const (
	SessionTypeActive   SessionTypeStatus = "active"
	SessionTypeInactive SessionTypeStatus = "inactive"
)

// SessionType classifies sessions (lecture, lab, exam...).
type SessionType struct {
	ID          int64             `db:"id" json:"id"`
	Title       string            `db:"title" json:"title"`
	Code        string            `db:"code" json:"code"`
	Coefficient *float64          `db:"coefficient" json:"coefficient,omitempty"`
	Status      SessionTypeStatus `db:"status" json:"status"`
}
