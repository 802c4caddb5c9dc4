package planning

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidInterval is returned when a start/end pair is empty or not strictly increasing.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrDerivedFieldNotEditable is returned when a derived form field is written directly.
	ErrDerivedFieldNotEditable = errors.New("derived field not editable")
	// ErrFieldDisabled is returned when a field is written before its upstream fields are set.
	ErrFieldDisabled = errors.New("field disabled")
	// ErrUnknownField is returned for writes to fields the form does not know.
	ErrUnknownField = errors.New("unknown field")
	// ErrSubmitInFlight is returned when a second submit starts before the first resolved.
	ErrSubmitInFlight = errors.New("a save is already in progress")
	// ErrInvalidDate is returned for anchors that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// ValidationError holds per-field messages from local form validation.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, string(field))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[Field(key)])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Failure classifies a rejected save.
type Failure string

const (
	FailureConflict Failure = "conflict"
	FailureGeneric  Failure = "generic"
)

// Classify maps a remote save failure onto the form-visible taxonomy.
// The remote contract is textual: any message mentioning "overlap" is a conflict.
func Classify(err error) Failure {
	if err == nil {
		return ""
	}
	if strings.Contains(strings.ToLower(err.Error()), "overlap") {
		return FailureConflict
	}
	return FailureGeneric
}

// FormAlert is the form-level message shown after a rejected save.
type FormAlert struct {
	Kind    Failure `json:"kind"`
	Message string  `json:"message"`
}

// SubmitError reports a remote rejection after it was turned into form state.
type SubmitError struct {
	Kind Failure
	Err  error
}

func (e *SubmitError) Error() string {
	if e == nil || e.Err == nil {
		return "save failed"
	}
	return e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
