package planning

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-planner/internal/models"
)

// cascadeClears lists the downstream fields reset when a field is written.
// Specialization follows class, so every reset of class also resets it.
var cascadeClears = map[Field][]Field{
	FieldSchoolYear: {FieldPeriod, FieldClass, FieldSpecialization},
	FieldPeriod:     {FieldClass, FieldSpecialization},
}

// derivedFields can only be written by the cascade itself.
var derivedFields = map[Field]bool{
	FieldSpecialization: true,
}

// CascadingSelection enforces school year -> period -> class -> specialization.
type CascadingSelection struct {
	classes map[int64]models.Class
}

// NewCascadingSelection builds a controller over the loaded class catalog.
func NewCascadingSelection(classes []models.Class) *CascadingSelection {
	c := &CascadingSelection{}
	c.SetClasses(classes)
	return c
}

// SetClasses replaces the class catalog used to derive specializations.
func (c *CascadingSelection) SetClasses(classes []models.Class) {
	c.classes = make(map[int64]models.Class, len(classes))
	for _, class := range classes {
		c.classes[class.ID] = class
	}
}

// Classes returns the loaded class catalog.
func (c *CascadingSelection) Classes() []models.Class {
	out := make([]models.Class, 0, len(c.classes))
	for _, class := range c.classes {
		out = append(out, class)
	}
	return out
}

// ResolveSpecialization returns the specialization of a loaded class.
func (c *CascadingSelection) ResolveSpecialization(classID int64) (int64, bool) {
	class, ok := c.classes[classID]
	if !ok || class.SpecializationID == nil || *class.SpecializationID <= 0 {
		return 0, false
	}
	return *class.SpecializationID, true
}

// ClassSelectable reports whether the class selector is enabled.
func ClassSelectable(state FormState) bool {
	return strings.TrimSpace(state.Values[FieldSchoolYear]) != "" && strings.TrimSpace(state.Values[FieldPeriod]) != ""
}

// Apply writes value into field and returns the next state. The input is not modified.
func (c *CascadingSelection) Apply(state FormState, field Field, value string) (FormState, error) {
	if !knownFields[field] {
		return state, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if derivedFields[field] {
		return state, fmt.Errorf("%w: %s is derived from class", ErrDerivedFieldNotEditable, field)
	}
	value = strings.TrimSpace(value)
	if field == FieldClass && value != "" && !ClassSelectable(state) {
		return state, fmt.Errorf("%w: select a school year and period first", ErrFieldDisabled)
	}

	next := state.Clone()
	if field == FieldStartTime || field == FieldEndTime {
		value = Normalize(value)
	}
	next.Values[field] = value
	delete(next.Errors, field)

	for _, downstream := range cascadeClears[field] {
		delete(next.Values, downstream)
	}

	switch field {
	case FieldClass:
		delete(next.Values, FieldSpecialization)
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			if spec, ok := c.ResolveSpecialization(id); ok {
				next.Values[FieldSpecialization] = strconv.FormatInt(spec, 10)
			}
		}
	case FieldStartTime:
		if !EndStillValid(value, next.Values[FieldEndTime]) {
			delete(next.Values, FieldEndTime)
		}
	}
	return next, nil
}
