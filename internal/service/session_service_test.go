package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/models"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

type mockSessionRepo struct {
	items      map[int64]*models.Session
	nextID     int64
	listFilter models.SessionFilter
	listErr    error
	overlapQ   []models.SessionOverlapQuery
}

func newMockSessionRepo(sessions ...models.Session) *mockSessionRepo {
	repo := &mockSessionRepo{items: map[int64]*models.Session{}, nextID: 100}
	for i := range sessions {
		cp := sessions[i]
		repo.items[cp.ID] = &cp
	}
	return repo
}

func (m *mockSessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	m.listFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []models.Session
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

// FindOverlaps mimics the SQL prefilter: same date, live, sharing a dimension, not self.
// Interval intersection is left to the service.
func (m *mockSessionRepo) FindOverlaps(ctx context.Context, q models.SessionOverlapQuery) ([]models.Session, error) {
	m.overlapQ = append(m.overlapQ, q)
	var out []models.Session
	for _, s := range m.items {
		if s.Date != q.Date || s.Status == models.SessionStatusDeleted || s.ID == q.ExcludeID {
			continue
		}
		if s.ClassID == q.ClassID || s.TeacherID == q.TeacherID || s.ClassRoomID == q.ClassRoomID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	m.nextID++
	session.ID = m.nextID
	cp := *session
	m.items[session.ID] = &cp
	return nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	if _, ok := m.items[session.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *session
	m.items[session.ID] = &cp
	return nil
}

func (m *mockSessionRepo) SoftDelete(ctx context.Context, id int64) error {
	s, ok := m.items[id]
	if !ok || s.Status == models.SessionStatusDeleted {
		return sql.ErrNoRows
	}
	s.Status = models.SessionStatusDeleted
	return nil
}

type mockSessionTypes map[int64]models.SessionType

func (m mockSessionTypes) FindSessionType(ctx context.Context, id int64) (*models.SessionType, error) {
	if t, ok := m[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func defaultTypes() mockSessionTypes {
	return mockSessionTypes{
		2: {ID: 2, Title: "Lecture", Status: models.SessionTypeActive},
		3: {ID: 3, Title: "Retired", Status: models.SessionTypeInactive},
	}
}

func validPayload() dto.SessionPayload {
	return dto.SessionPayload{
		Period: "S1", Date: "2024-05-14", StartTime: "09:00", EndTime: "10:00",
		TeacherID: 5, ClassID: 42, ClassRoomID: 3, SessionTypeID: 2, CourseID: 11, SchoolYearID: 1,
	}
}

func newSessionSvc(repo *mockSessionRepo) *SessionService {
	return NewSessionService(repo, defaultTypes(), nil, NewMetricsService(), nil, zap.NewNop(), SessionServiceConfig{DefaultPageSize: 50, MaxPageSize: 500})
}

func TestSessionServiceCreateDefaultsStatus(t *testing.T) {
	repo := newMockSessionRepo()
	svc := newSessionSvc(repo)

	payload := validPayload()
	payload.StartTime = "09:00:00"
	session, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.Equal(t, "09:00", session.StartTime)
	assert.Contains(t, repo.items, session.ID)
}

func TestSessionServiceSanitizesPeriod(t *testing.T) {
	repo := newMockSessionRepo()
	svc := newSessionSvc(repo)

	payload := validPayload()
	payload.Period = " <b>S1 & S2</b><script>alert(1)</script> "
	session, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "S1 & S2", session.Period)

	payload.Period = "<img src=x onerror=alert(1)>"
	_, err = svc.Create(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSessionServiceRejectsInvalidPayloads(t *testing.T) {
	svc := newSessionSvc(newMockSessionRepo())

	tests := []struct {
		name   string
		mutate func(p *dto.SessionPayload)
		code   string
	}{
		{"missing teacher", func(p *dto.SessionPayload) { p.TeacherID = 0 }, appErrors.ErrValidation.Code},
		{"bad date", func(p *dto.SessionPayload) { p.Date = "14/05/2024" }, appErrors.ErrValidation.Code},
		{"bad clock", func(p *dto.SessionPayload) { p.StartTime = "9am" }, appErrors.ErrValidation.Code},
		{"unknown status", func(p *dto.SessionPayload) { p.Status = "sleeping" }, appErrors.ErrValidation.Code},
		{"end before start", func(p *dto.SessionPayload) { p.EndTime = "08:00" }, appErrors.ErrInvalidInterval.Code},
		{"zero length", func(p *dto.SessionPayload) { p.EndTime = "09:00" }, appErrors.ErrInvalidInterval.Code},
		{"inactive type", func(p *dto.SessionPayload) { p.SessionTypeID = 3 }, appErrors.ErrValidation.Code},
		{"unknown type", func(p *dto.SessionPayload) { p.SessionTypeID = 99 }, appErrors.ErrValidation.Code},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload := validPayload()
			tc.mutate(&payload)
			_, err := svc.Create(context.Background(), payload)
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
		})
	}
}

func TestSessionServiceAcceptsMidnightEnd(t *testing.T) {
	svc := newSessionSvc(newMockSessionRepo())
	payload := validPayload()
	payload.StartTime, payload.EndTime = "23:00", "00:00"
	_, err := svc.Create(context.Background(), payload)
	assert.NoError(t, err)
}

func TestSessionServiceRejectsOverlaps(t *testing.T) {
	existing := models.Session{ID: 1, Date: "2024-05-14", StartTime: "09:00", EndTime: "10:00", TeacherID: 6, ClassID: 43, ClassRoomID: 3, Status: models.SessionStatusActive}
	repo := newMockSessionRepo(existing)
	svc := newSessionSvc(repo)

	payload := validPayload()
	payload.StartTime, payload.EndTime = "09:30", "10:30"
	_, err := svc.Create(context.Background(), payload)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, strings.ToLower(appErr.Message), "overlap")
	var conflictErr *models.SessionConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "classroom", conflictErr.Dimension)
	assert.Equal(t, int64(1), conflictErr.Conflict.SessionID)
}

func TestSessionServiceAllowsTouchingAndSelf(t *testing.T) {
	existing := models.Session{ID: 1, Date: "2024-05-14", StartTime: "09:00", EndTime: "10:00", TeacherID: 5, ClassID: 42, ClassRoomID: 3, SessionTypeID: 2, Status: models.SessionStatusActive}
	deleted := models.Session{ID: 2, Date: "2024-05-14", StartTime: "10:00", EndTime: "11:00", TeacherID: 5, ClassID: 42, ClassRoomID: 3, Status: models.SessionStatusDeleted}
	repo := newMockSessionRepo(existing, deleted)
	svc := newSessionSvc(repo)

	payload := validPayload()
	payload.StartTime, payload.EndTime = "10:00", "11:00"
	_, err := svc.Create(context.Background(), payload)
	require.NoError(t, err, "back-to-back sessions and deleted sessions do not collide")

	payload = validPayload()
	payload.EndTime = "09:45"
	updated, err := svc.Update(context.Background(), 1, payload)
	require.NoError(t, err, "a session never collides with itself")
	assert.Equal(t, "09:45", updated.EndTime)
	assert.Equal(t, int64(1), repo.overlapQ[len(repo.overlapQ)-1].ExcludeID)
}

func TestSessionServiceUpdateAndDeleteMissing(t *testing.T) {
	svc := newSessionSvc(newMockSessionRepo())

	_, err := svc.Update(context.Background(), 404, validPayload())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), 404)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceDeleteIsSoft(t *testing.T) {
	repo := newMockSessionRepo(models.Session{ID: 1, Date: "2024-05-14", StartTime: "09:00", EndTime: "10:00", Status: models.SessionStatusActive})
	svc := newSessionSvc(repo)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, models.SessionStatusDeleted, repo.items[1].Status)

	_, err := svc.Update(context.Background(), 1, validPayload())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceListClampsPaging(t *testing.T) {
	repo := newMockSessionRepo(models.Session{ID: 1})
	svc := newSessionSvc(repo)

	_, pagination, err := svc.List(context.Background(), models.SessionFilter{Page: 0, PageSize: 10000})
	require.NoError(t, err)
	assert.Equal(t, 500, repo.listFilter.PageSize)
	assert.Equal(t, 1, pagination.Page)
	require.NotNil(t, pagination.TotalPages)
	assert.Equal(t, 1, *pagination.TotalPages)

	_, _, err = svc.List(context.Background(), models.SessionFilter{Status: "sleeping"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	repo.listErr = errors.New("db down")
	_, _, err = svc.List(context.Background(), models.SessionFilter{})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		expected                   bool
	}{
		{"contained", "09:00", "12:00", "10:00", "11:00", true},
		{"partial", "09:00", "10:30", "10:00", "11:00", true},
		{"touching", "09:00", "10:00", "10:00", "11:00", false},
		{"midnight end overlaps late start", "23:00", "00:00", "23:30", "00:00", true},
		{"midnight end after earlier slot", "22:00", "23:00", "23:00", "00:00", false},
		{"malformed", "nine", "10:00", "09:00", "10:00", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
		})
	}
}
