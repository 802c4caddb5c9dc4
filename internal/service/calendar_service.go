package service

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/models"
	"github.com/noah-isme/sma-planner/internal/planning"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

type sessionRangeLister interface {
	ListInRange(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

// CalendarQuery selects a calendar window. An empty anchor means today.
type CalendarQuery struct {
	View   planning.ViewMode
	Anchor string
	Filter models.SessionFilter
}

// CalendarView is a week (5 buckets) or month (42 buckets) of sessions.
type CalendarView struct {
	View    planning.ViewMode         `json:"view"`
	Anchor  string                    `json:"anchor"`
	From    string                    `json:"from"`
	To      string                    `json:"to"`
	Buckets []planning.CalendarBucket `json:"buckets"`
}

// CalendarService builds calendar windows over persisted sessions.
type CalendarService struct {
	sessions sessionRangeLister
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewCalendarService constructs the service. A nil now uses the wall clock.
func NewCalendarService(sessions sessionRangeLister, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, now func() time.Time, logger *zap.Logger) *CalendarService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{sessions: sessions, cache: cache, metrics: metrics, cacheTTL: cacheTTL, now: now, logger: logger}
}

// Build returns the window around the anchor. The second result reports a cache hit.
func (s *CalendarService) Build(ctx context.Context, q CalendarQuery) (*CalendarView, bool, error) {
	anchor := s.now()
	if q.Anchor != "" {
		parsed, err := planning.ParseDate(q.Anchor)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "anchor must be a YYYY-MM-DD date")
		}
		anchor = parsed
	}
	if q.View == planning.ViewMonth {
		anchor = planning.FirstOfMonth(anchor)
	} else {
		q.View = planning.ViewWeek
		anchor = planning.MondayOf(anchor)
	}
	if q.Filter.Status != "" && !models.SessionStatus(q.Filter.Status).Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}

	anchorISO := anchor.Format(planning.DateLayout)
	key := CalendarKey(string(q.View), anchorISO, s.filterValues(q.Filter))
	var cached CalendarView
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	start := time.Now()
	from, to := planning.WindowRange(q.View, anchor)
	filter := q.Filter
	filter.DateFrom, filter.DateTo = from, to
	sessions, err := s.sessions.ListInRange(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar sessions")
	}

	builder := planning.NewCalendarBuilder(s.now)
	view := &CalendarView{View: q.View, Anchor: anchorISO, From: from, To: to}
	if q.View == planning.ViewMonth {
		view.Buckets = builder.Month(anchor, sessions)
	} else {
		view.Buckets = builder.Week(anchor, sessions)
	}
	s.metrics.ObserveCalendarBuild(string(q.View), time.Since(start))

	if err := s.cache.Set(ctx, key, view, s.cacheTTL); err != nil {
		s.logger.Debug("calendar cache write skipped", zap.String("key", key), zap.Error(err))
	}
	return view, false, nil
}

// filterValues encodes the filters that shape a window, plus today's date since
// buckets carry an is-today flag.
func (s *CalendarService) filterValues(filter models.SessionFilter) url.Values {
	values := url.Values{}
	values.Set("today", s.now().Format(planning.DateLayout))
	if filter.Status != "" {
		values.Set("status", filter.Status)
	}
	ids := map[string]int64{
		"class_id":          filter.ClassID,
		"teacher_id":        filter.TeacherID,
		"classroom_id":      filter.ClassRoomID,
		"specialization_id": filter.SpecializationID,
		"session_type_id":   filter.SessionTypeID,
		"course_id":         filter.CourseID,
	}
	for key, id := range ids {
		if id > 0 {
			values.Set(key, strconv.FormatInt(id, 10))
		}
	}
	return values
}
