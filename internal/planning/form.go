package planning

import (
	"strconv"
	"strings"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/models"
)

// Field names an editable (or derived) form input.
type Field string

const (
	FieldSchoolYear     Field = "school_year"
	FieldPeriod         Field = "period"
	FieldClass          Field = "class"
	FieldSpecialization Field = "specialization"
	FieldTeacher        Field = "teacher"
	FieldClassRoom      Field = "classroom"
	FieldSessionType    Field = "session_type"
	FieldCourse         Field = "course"
	FieldDate           Field = "date"
	FieldStartTime      Field = "start_time"
	FieldEndTime        Field = "end_time"
	FieldStatus         Field = "status"
)

var knownFields = map[Field]bool{
	FieldSchoolYear: true, FieldPeriod: true, FieldClass: true, FieldSpecialization: true,
	FieldTeacher: true, FieldClassRoom: true, FieldSessionType: true, FieldCourse: true,
	FieldDate: true, FieldStartTime: true, FieldEndTime: true, FieldStatus: true,
}

var requiredFields = []Field{
	FieldSchoolYear, FieldPeriod, FieldClass, FieldTeacher, FieldClassRoom,
	FieldSessionType, FieldCourse, FieldDate, FieldStartTime, FieldEndTime,
}

var idFields = map[Field]bool{
	FieldSchoolYear: true, FieldClass: true, FieldSpecialization: true, FieldTeacher: true,
	FieldClassRoom: true, FieldSessionType: true, FieldCourse: true,
}

// FormState is the session being created (SessionID 0) or edited.
type FormState struct {
	SessionID int64
	Values    map[Field]string
	Errors    map[Field]string
}

// NewFormState returns an empty form for a new session.
func NewFormState() FormState {
	return FormState{
		Values: map[Field]string{FieldStatus: string(models.SessionStatusActive)},
		Errors: map[Field]string{},
	}
}

// FormFromSession loads an existing session for editing.
func FormFromSession(session models.Session) FormState {
	form := NewFormState()
	form.SessionID = session.ID
	form.Values[FieldSchoolYear] = formatID(session.SchoolYearID)
	form.Values[FieldPeriod] = session.Period
	form.Values[FieldClass] = formatID(session.ClassID)
	if session.SpecializationID != nil {
		form.Values[FieldSpecialization] = formatID(*session.SpecializationID)
	}
	form.Values[FieldTeacher] = formatID(session.TeacherID)
	form.Values[FieldClassRoom] = formatID(session.ClassRoomID)
	form.Values[FieldSessionType] = formatID(session.SessionTypeID)
	form.Values[FieldCourse] = formatID(session.CourseID)
	form.Values[FieldDate] = session.Date
	form.Values[FieldStartTime] = Normalize(session.StartTime)
	form.Values[FieldEndTime] = Normalize(session.EndTime)
	if session.Status != "" {
		form.Values[FieldStatus] = string(session.Status)
	}
	return form
}

// Value returns the raw value of a field, empty when unset.
func (f FormState) Value(field Field) string {
	return f.Values[field]
}

// ID returns the numeric id held by an id field, 0 when unset or malformed.
func (f FormState) ID(field Field) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(f.Values[field]), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// IsNew reports whether the form creates rather than updates.
func (f FormState) IsNew() bool { return f.SessionID == 0 }

// Clone returns a deep copy so reducers never mutate their input.
func (f FormState) Clone() FormState {
	clone := FormState{SessionID: f.SessionID, Values: make(map[Field]string, len(f.Values)), Errors: make(map[Field]string, len(f.Errors))}
	for k, v := range f.Values {
		clone.Values[k] = v
	}
	for k, v := range f.Errors {
		clone.Errors[k] = v
	}
	return clone
}

// Validate runs the local pre-submit checks. It never calls the remote side.
func (f FormState) Validate() *ValidationError {
	fields := map[Field]string{}
	for _, field := range requiredFields {
		if strings.TrimSpace(f.Values[field]) == "" {
			fields[field] = "required"
		}
	}
	for field := range idFields {
		if raw := strings.TrimSpace(f.Values[field]); raw != "" && f.ID(field) == 0 {
			fields[field] = "must be a valid id"
		}
	}
	if raw := f.Values[FieldDate]; raw != "" {
		if _, err := ParseDate(raw); err != nil {
			fields[FieldDate] = "must be a YYYY-MM-DD date"
		}
	}
	start, end := f.Values[FieldStartTime], f.Values[FieldEndTime]
	if start != "" && end != "" {
		if err := ValidateInterval(start, end); err != nil {
			fields[FieldEndTime] = "end time must be after start time"
		}
	}
	if status := f.Values[FieldStatus]; status != "" && !models.SessionStatus(status).Valid() {
		fields[FieldStatus] = "unknown status"
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Payload converts a validated form into the remote create/update body.
func (f FormState) Payload() dto.SessionPayload {
	payload := dto.SessionPayload{
		Period:        strings.TrimSpace(f.Values[FieldPeriod]),
		Date:          strings.TrimSpace(f.Values[FieldDate]),
		StartTime:     Normalize(f.Values[FieldStartTime]),
		EndTime:       Normalize(f.Values[FieldEndTime]),
		TeacherID:     f.ID(FieldTeacher),
		ClassID:       f.ID(FieldClass),
		ClassRoomID:   f.ID(FieldClassRoom),
		SessionTypeID: f.ID(FieldSessionType),
		CourseID:      f.ID(FieldCourse),
		SchoolYearID:  f.ID(FieldSchoolYear),
		Status:        models.SessionStatus(f.Values[FieldStatus]),
	}
	if id := f.ID(FieldSpecialization); id > 0 {
		payload.SpecializationID = &id
	}
	if payload.Status == "" {
		payload.Status = models.SessionStatusActive
	}
	return payload
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
