package planning

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-planner/internal/models"
)

// StatusAll is the explicit "no status constraint" choice of the filter bar.
const StatusAll = "all"

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 50

// FilterField names an equality filter on the session list.
type FilterField string

const (
	FilterClass          FilterField = "class_id"
	FilterTeacher        FilterField = "teacher_id"
	FilterClassRoom      FilterField = "classroom_id"
	FilterSpecialization FilterField = "specialization_id"
	FilterSessionType    FilterField = "session_type_id"
	FilterCourse         FilterField = "course_id"
)

// filterOrder fixes the encoding order of id filters.
var filterOrder = []FilterField{FilterClass, FilterTeacher, FilterClassRoom, FilterSpecialization, FilterSessionType, FilterCourse}

// FilterState is the filter bar plus pagination. Status "" (unset) and StatusAll
// are distinct here but encode identically.
type FilterState struct {
	Status string
	IDs    map[FilterField]int64
	Page   int
	Limit  int
}

// QueryParams is the outbound list request. It is comparable so it can key caches.
type QueryParams struct {
	Status           string
	ClassID          int64
	TeacherID        int64
	ClassRoomID      int64
	SpecializationID int64
	SessionTypeID    int64
	CourseID         int64
	DateFrom         string
	DateTo           string
	Page             int
	Limit            int
}

// Values encodes the params as a query string, omitting every unset filter.
func (p QueryParams) Values() url.Values {
	values := url.Values{}
	if p.Status != "" {
		values.Set("status", p.Status)
	}
	ids := map[FilterField]int64{
		FilterClass:          p.ClassID,
		FilterTeacher:        p.TeacherID,
		FilterClassRoom:      p.ClassRoomID,
		FilterSpecialization: p.SpecializationID,
		FilterSessionType:    p.SessionTypeID,
		FilterCourse:         p.CourseID,
	}
	for _, field := range filterOrder {
		if id := ids[field]; id > 0 {
			values.Set(string(field), strconv.FormatInt(id, 10))
		}
	}
	if p.DateFrom != "" {
		values.Set("date_from", p.DateFrom)
	}
	if p.DateTo != "" {
		values.Set("date_to", p.DateTo)
	}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	return values
}

// PageMeta is pagination as shown to the operator, with every field resolved.
type PageMeta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// QueryState turns filter writes into remote query parameters.
type QueryState struct {
	filters FilterState
	meta    PageMeta
}

// NewQueryState starts on page 1 with no filters.
func NewQueryState(limit int) *QueryState {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &QueryState{filters: FilterState{IDs: map[FilterField]int64{}, Page: 1, Limit: limit}}
}

// Filters returns a copy of the current filter state.
func (q *QueryState) Filters() FilterState {
	ids := make(map[FilterField]int64, len(q.filters.IDs))
	for k, v := range q.filters.IDs {
		ids[k] = v
	}
	out := q.filters
	out.IDs = ids
	return out
}

// SetStatus sets the status filter ("" unset, StatusAll, or a status code).
func (q *QueryState) SetStatus(status string) error {
	status = strings.TrimSpace(status)
	if status != "" && status != StatusAll && !models.SessionStatus(status).Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	q.filters.Status = status
	q.filters.Page = 1
	return nil
}

// SetFilter sets an id filter; 0 clears it.
func (q *QueryState) SetFilter(field FilterField, id int64) error {
	if !isFilterField(field) {
		return fmt.Errorf("%w: filter %s", ErrUnknownField, field)
	}
	if id <= 0 {
		delete(q.filters.IDs, field)
	} else {
		q.filters.IDs[field] = id
	}
	q.filters.Page = 1
	return nil
}

// SetLimit changes the page size and returns to page 1.
func (q *QueryState) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q.filters.Limit = limit
	q.filters.Page = 1
}

// SetPage moves to a page, leaving everything else alone.
func (q *QueryState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	q.filters.Page = page
}

// Params builds the outbound request for the given date window.
func (q *QueryState) Params(dateFrom, dateTo string) QueryParams {
	params := QueryParams{
		ClassID:          q.filters.IDs[FilterClass],
		TeacherID:        q.filters.IDs[FilterTeacher],
		ClassRoomID:      q.filters.IDs[FilterClassRoom],
		SpecializationID: q.filters.IDs[FilterSpecialization],
		SessionTypeID:    q.filters.IDs[FilterSessionType],
		CourseID:         q.filters.IDs[FilterCourse],
		DateFrom:         dateFrom,
		DateTo:           dateTo,
		Page:             q.filters.Page,
		Limit:            q.filters.Limit,
	}
	if q.filters.Status != StatusAll {
		params.Status = q.filters.Status
	}
	return params
}

// ApplyResponse records the pagination of a list response.
func (q *QueryState) ApplyResponse(p models.Pagination) PageMeta {
	q.meta = DerivePageMeta(q.filters.Page, q.filters.Limit, p)
	return q.meta
}

// Meta returns the last recorded pagination.
func (q *QueryState) Meta() PageMeta { return q.meta }

// DerivePageMeta fills what the server left out: total pages as ceil(total/limit)
// with a floor of 1, and the has-next/previous flags from the page position.
func DerivePageMeta(page, limit int, p models.Pagination) PageMeta {
	if p.Page > 0 {
		page = p.Page
	}
	if p.Limit > 0 {
		limit = p.Limit
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	meta := PageMeta{Page: page, Limit: limit, Total: p.Total}
	if p.TotalPages != nil {
		meta.TotalPages = *p.TotalPages
	} else {
		meta.TotalPages = (p.Total + limit - 1) / limit
	}
	if meta.TotalPages < 1 {
		meta.TotalPages = 1
	}
	if p.HasNext != nil {
		meta.HasNext = *p.HasNext
	} else {
		meta.HasNext = page < meta.TotalPages
	}
	if p.HasPrevious != nil {
		meta.HasPrevious = *p.HasPrevious
	} else {
		meta.HasPrevious = page > 1
	}
	return meta
}

func isFilterField(field FilterField) bool {
	for _, known := range filterOrder {
		if known == field {
			return true
		}
	}
	return false
}
