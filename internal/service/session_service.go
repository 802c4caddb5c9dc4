package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/models"
	"github.com/noah-isme/sma-planner/internal/planning"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	FindOverlaps(ctx context.Context, q models.SessionOverlapQuery) ([]models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	SoftDelete(ctx context.Context, id int64) error
}

// periodLabels strips markup from the free-text period label; it is rendered in calendar cells and PDF grids.
var periodLabels = bluemonday.StrictPolicy()

type sessionTypeFinder interface {
	FindSessionType(ctx context.Context, id int64) (*models.SessionType, error)
}

// SessionServiceConfig bounds list page sizes.
type SessionServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// SessionService validates and persists sessions and rejects overlapping bookings.
type SessionService struct {
	repo      sessionRepository
	types     sessionTypeFinder
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SessionServiceConfig
}

// NewSessionService instantiates SessionService.
func NewSessionService(repo sessionRepository, types sessionTypeFinder, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SessionServiceConfig) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = planning.DefaultLimit
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	svc := &SessionService{repo: repo, types: types, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
	svc.validator.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, ok := planning.EndMinutes(fl.Field().String())
		return ok
	})
	svc.validator.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := planning.ParseDate(fl.Field().String())
		return err == nil
	})
	svc.validator.RegisterValidation("session_status", func(fl validator.FieldLevel) bool {
		return models.SessionStatus(fl.Field().String()).Valid()
	})
	return svc
}

// List returns sessions with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, *models.Pagination, error) {
	if filter.Status != "" && !models.SessionStatus(filter.Status).Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", filter.Status))
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.cfg.DefaultPageSize
	}
	if filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}

	start := time.Now()
	sessions, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("sessions_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get loads a single session.
func (s *SessionService) Get(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Create validates and stores a new session.
func (s *SessionService) Create(ctx context.Context, payload dto.SessionPayload) (*models.Session, error) {
	session, err := s.prepare(ctx, payload, 0)
	if err != nil {
		s.recordRejection("create", err)
		return nil, err
	}
	if err := s.repo.Create(ctx, session); err != nil {
		s.metrics.RecordSessionMutation("create", "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.metrics.RecordSessionMutation("create", "ok")
	s.invalidate(ctx)
	s.logger.Info("session created",
		zap.Int64("session_id", session.ID),
		zap.String("date", session.Date),
		zap.String("start_time", session.StartTime),
		zap.String("end_time", session.EndTime))
	return session, nil
}

// Update validates and replaces an existing session.
func (s *SessionService) Update(ctx context.Context, id int64, payload dto.SessionPayload) (*models.Session, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.SessionStatusDeleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	session, err := s.prepare(ctx, payload, id)
	if err != nil {
		s.recordRejection("update", err)
		return nil, err
	}
	session.ID = id
	session.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, session); err != nil {
		s.metrics.RecordSessionMutation("update", "error")
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	s.metrics.RecordSessionMutation("update", "ok")
	s.invalidate(ctx)
	s.logger.Info("session updated",
		zap.Int64("session_id", id),
		zap.String("date", session.Date),
		zap.String("start_time", session.StartTime),
		zap.String("end_time", session.EndTime))
	return session, nil
}

// Delete soft-deletes a session.
func (s *SessionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		s.metrics.RecordSessionMutation("delete", "error")
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.metrics.RecordSessionMutation("delete", "ok")
	s.invalidate(ctx)
	s.logger.Info("session deleted", zap.Int64("session_id", id))
	return nil
}

func (s *SessionService) prepare(ctx context.Context, payload dto.SessionPayload, excludeID int64) (*models.Session, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if err := planning.ValidateInterval(payload.StartTime, payload.EndTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInterval.Code, appErrors.ErrInvalidInterval.Status, appErrors.ErrInvalidInterval.Message)
	}

	sessionType, err := s.types.FindSessionType(ctx, payload.SessionTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "session type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session type")
	}
	if sessionType.Status != models.SessionTypeActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session type is inactive")
	}

	period := cleanPeriod(payload.Period)
	if period == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period is required")
	}

	status := payload.Status
	if status == "" {
		status = models.SessionStatusActive
	}
	session := &models.Session{
		Period:           period,
		Date:             payload.Date,
		StartTime:        planning.Normalize(payload.StartTime),
		EndTime:          planning.Normalize(payload.EndTime),
		TeacherID:        payload.TeacherID,
		SpecializationID: payload.SpecializationID,
		ClassID:          payload.ClassID,
		ClassRoomID:      payload.ClassRoomID,
		SessionTypeID:    payload.SessionTypeID,
		CourseID:         payload.CourseID,
		SchoolYearID:     payload.SchoolYearID,
		Status:           status,
	}
	if status == models.SessionStatusDeleted {
		return session, nil
	}
	if err := s.ensureNoOverlap(ctx, session, excludeID); err != nil {
		return nil, err
	}
	return session, nil
}

func cleanPeriod(raw string) string {
	return strings.TrimSpace(html.UnescapeString(periodLabels.Sanitize(raw)))
}

func (s *SessionService) ensureNoOverlap(ctx context.Context, session *models.Session, excludeID int64) error {
	start := time.Now()
	candidates, err := s.repo.FindOverlaps(ctx, models.SessionOverlapQuery{
		Date:        session.Date,
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		ClassID:     session.ClassID,
		TeacherID:   session.TeacherID,
		ClassRoomID: session.ClassRoomID,
		ExcludeID:   excludeID,
	})
	s.metrics.ObserveDBQuery("sessions_overlap", time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session overlaps")
	}
	for _, other := range candidates {
		if !Overlaps(session.StartTime, session.EndTime, other.StartTime, other.EndTime) {
			continue
		}
		dimension := overlapDimension(*session, other)
		if dimension == "" {
			continue
		}
		conflictErr := &models.SessionConflictError{
			Dimension: dimension,
			Message:   fmt.Sprintf("session overlaps with an existing booking (%s)", dimension),
			Conflict: models.SessionConflict{
				SessionID:   other.ID,
				Date:        other.Date,
				StartTime:   other.StartTime,
				EndTime:     other.EndTime,
				ClassID:     other.ClassID,
				TeacherID:   other.TeacherID,
				ClassRoomID: other.ClassRoomID,
				Dimension:   dimension,
			},
		}
		return appErrors.Wrap(conflictErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflictErr.Message)
	}
	return nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect. A 00:00 end
// is the end of the day.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	as, ok1 := planning.StartMinutes(aStart)
	ae, ok2 := planning.EndMinutes(aEnd)
	bs, ok3 := planning.StartMinutes(bStart)
	be, ok4 := planning.EndMinutes(bEnd)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return as < be && bs < ae
}

func overlapDimension(session, other models.Session) string {
	switch {
	case session.ClassID == other.ClassID:
		return "class"
	case session.TeacherID == other.TeacherID:
		return "teacher"
	case session.ClassRoomID == other.ClassRoomID:
		return "classroom"
	default:
		return ""
	}
}

func (s *SessionService) recordRejection(operation string, err error) {
	switch {
	case appErrors.Is(err, appErrors.ErrConflict):
		s.metrics.RecordSessionMutation(operation, "conflict")
		var conflictErr *models.SessionConflictError
		if errors.As(err, &conflictErr) {
			s.metrics.RecordSessionConflict(conflictErr.Dimension)
			s.logger.Info("session rejected as overlapping",
				zap.String("operation", operation),
				zap.String("dimension", conflictErr.Dimension),
				zap.Int64("conflicting_session_id", conflictErr.Conflict.SessionID),
				zap.String("date", conflictErr.Conflict.Date))
		}
	case appErrors.Is(err, appErrors.ErrValidation), appErrors.Is(err, appErrors.ErrInvalidInterval):
		s.metrics.RecordSessionMutation(operation, "invalid")
	default:
		s.metrics.RecordSessionMutation(operation, "error")
		s.logger.Warn("session mutation failed", zap.String("operation", operation), zap.Error(err))
	}
}

func (s *SessionService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateCalendars(ctx); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}
