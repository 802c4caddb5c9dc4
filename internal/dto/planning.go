package dto

// IntervalRequest carries a start/end pair to validate.
type IntervalRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// IntervalResponse reports the outcome of an interval validation.
type IntervalResponse struct {
	Valid     bool   `json:"valid"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason,omitempty"`
}

// TimeOptionsResponse lists selectable times of day.
type TimeOptionsResponse struct {
	Start   string   `json:"start,omitempty"`
	Options []string `json:"options"`
}

// SpecializationResolution is the derived specialization of a class.
type SpecializationResolution struct {
	ClassID          int64  `json:"class_id"`
	SpecializationID *int64 `json:"specialization_id"`
}

// ExportJobRequest queues an asynchronous calendar export.
type ExportJobRequest struct {
	View             string `json:"view"`
	Anchor           string `json:"anchor"`
	Format           string `json:"format"`
	Status           string `json:"status"`
	ClassID          int64  `json:"class_id"`
	TeacherID        int64  `json:"teacher_id"`
	ClassRoomID      int64  `json:"classroom_id"`
	SpecializationID int64  `json:"specialization_id"`
	SessionTypeID    int64  `json:"session_type_id"`
	CourseID         int64  `json:"course_id"`
	ConflictDate     string `json:"conflict_date"`
	ConflictStart    string `json:"conflict_start"`
	ConflictEnd      string `json:"conflict_end"`
}

// ExportJobResponse is returned when a job is accepted.
type ExportJobResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// ExportJobStatusResponse reports job progress and, once finished, the download link.
type ExportJobStatusResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	Progress  int     `json:"progress"`
	ResultURL *string `json:"result_url,omitempty"`
	Error     *string `json:"error,omitempty"`
}
