package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/models"
	"github.com/noah-isme/sma-planner/internal/planning"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

type stubRangeLister struct {
	sessions []models.Session
	filters  []models.SessionFilter
}

func (s *stubRangeLister) ListInRange(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	s.filters = append(s.filters, filter)
	var out []models.Session
	for _, session := range s.sessions {
		if session.Date >= filter.DateFrom && session.Date <= filter.DateTo {
			out = append(out, session)
		}
	}
	return out, nil
}

type memoryCacheRepo struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string]interface{}{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	view, ok := value.(*CalendarView)
	target, okDest := dest.(*CalendarView)
	if !ok || !okDest {
		return appErrors.ErrCacheMiss
	}
	*target = *view
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = map[string]interface{}{}
	return nil
}

func clockAt(iso string) func() time.Time {
	return func() time.Time {
		parsed, _ := time.Parse(planning.DateLayout, iso)
		return parsed.Add(9 * time.Hour)
	}
}

func TestCalendarServiceWeekWindow(t *testing.T) {
	lister := &stubRangeLister{sessions: []models.Session{
		{ID: 1, Date: "2024-05-14", StartTime: "10:00", EndTime: "11:00", Status: models.SessionStatusActive},
		{ID: 2, Date: "2024-05-14", StartTime: "08:00", EndTime: "09:00", Status: models.SessionStatusActive},
		{ID: 3, Date: "2024-05-18", StartTime: "08:00", EndTime: "09:00", Status: models.SessionStatusActive},
	}}
	svc := NewCalendarService(lister, nil, nil, 0, clockAt("2024-05-15"), zap.NewNop())

	view, hit, err := svc.Build(context.Background(), CalendarQuery{View: planning.ViewWeek, Anchor: "2024-05-16", Filter: models.SessionFilter{ClassID: 42}})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2024-05-13", view.Anchor)
	assert.Equal(t, "2024-05-13", view.From)
	assert.Equal(t, "2024-05-17", view.To)
	require.Len(t, view.Buckets, planning.WeekBucketCount)
	require.Len(t, view.Buckets[1].Sessions, 2)
	assert.Equal(t, int64(2), view.Buckets[1].Sessions[0].ID)
	assert.True(t, view.Buckets[2].IsToday)
	assert.Equal(t, int64(42), lister.filters[0].ClassID)
	assert.Equal(t, "2024-05-13", lister.filters[0].DateFrom)
}

func TestCalendarServiceMonthDefaultsToToday(t *testing.T) {
	svc := NewCalendarService(&stubRangeLister{}, nil, nil, 0, clockAt("2024-06-19"), nil)

	view, _, err := svc.Build(context.Background(), CalendarQuery{View: planning.ViewMonth})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", view.Anchor)
	assert.Equal(t, "2024-05-27", view.From)
	assert.Equal(t, "2024-07-07", view.To)
	assert.Len(t, view.Buckets, planning.MonthBucketCount)
}

func TestCalendarServiceRejectsBadAnchor(t *testing.T) {
	svc := NewCalendarService(&stubRangeLister{}, nil, nil, 0, nil, nil)
	_, _, err := svc.Build(context.Background(), CalendarQuery{Anchor: "May 5"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceCachesUntilInvalidated(t *testing.T) {
	lister := &stubRangeLister{}
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, nil, true)
	svc := NewCalendarService(lister, cache, nil, time.Minute, clockAt("2024-05-15"), nil)
	q := CalendarQuery{View: planning.ViewWeek, Anchor: "2024-05-15"}

	_, hit, err := svc.Build(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = svc.Build(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, lister.filters, 1)

	q.Filter.TeacherID = 5
	_, hit, _ = svc.Build(context.Background(), q)
	assert.False(t, hit, "different filters use a different key")

	require.NoError(t, cache.InvalidateCalendars(context.Background()))
	q.Filter.TeacherID = 0
	_, hit, _ = svc.Build(context.Background(), q)
	assert.False(t, hit)
	assert.Len(t, lister.filters, 3)
}
