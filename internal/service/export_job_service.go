package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/models"
	"github.com/noah-isme/sma-planner/internal/planning"
	"github.com/noah-isme/sma-planner/internal/repository"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
	"github.com/noah-isme/sma-planner/pkg/jobs"
)

// ExportJobType labels calendar export jobs on the queue.
const ExportJobType = "calendar_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

type calendarRenderer interface {
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

// ExportJobConfig governs recovery, retention and the public download path.
type ExportJobConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
	DownloadPath    string
}

// ExportDownload is an opened export file ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportJobService manages the lifecycle of asynchronous calendar exports.
type ExportJobService struct {
	repo    exportJobStore
	queue   jobDispatcher
	files   fileStore
	signer  tokenSigner
	enabled bool
	logger  *zap.Logger
	cfg     ExportJobConfig
}

// NewExportJobService constructs the service. A nil queue rejects new jobs.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, files fileStore, signer tokenSigner, enabled bool, logger *zap.Logger, cfg ExportJobConfig) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &ExportJobService{repo: repo, queue: queue, files: files, signer: signer, enabled: enabled, logger: logger, cfg: cfg}
}

func (c ExportJobConfig) withDefaults() ExportJobConfig {
	if c.ResultTTL <= 0 {
		c.ResultTTL = 24 * time.Hour
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DownloadPath == "" {
		c.DownloadPath = "/api/v1/planning/calendar/downloads"
	}
	c.DownloadPath = strings.TrimRight(c.DownloadPath, "/")
	return c
}

// CreateJob validates the request, persists a job and enqueues it.
func (s *ExportJobService) CreateJob(ctx context.Context, req dto.ExportJobRequest) (*dto.ExportJobResponse, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "calendar exports are disabled")
	}
	params, err := exportParams(req)
	if err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "export queue unavailable")
	}

	job := &models.ExportJob{Params: params, Status: models.ExportStatusQueued}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		failed := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		if updateErr := s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &failed,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		}); updateErr != nil {
			s.logger.Warn("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to enqueue export job")
	}
	s.logger.Info("export job queued",
		zap.String("job_id", job.ID),
		zap.String("view", params.View),
		zap.String("format", params.Format))
	return &dto.ExportJobResponse{ID: job.ID, Status: string(job.Status), Progress: job.Progress}, nil
}

// GetStatus reports job progress.
func (s *ExportJobService) GetStatus(ctx context.Context, id string) (*dto.ExportJobStatusResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ExportJobStatusResponse{
		ID:        job.ID,
		Status:    string(job.Status),
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload checks a download token and opens the stored file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	if job.ResultURL == nil || lastSegment(*job.ResultURL) != token {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(relPath),
		ContentType: contentTypeFor(job.Params.Format),
		ExpiresAt:   expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ExportJobService) RecoverPendingJobs(ctx context.Context) {
	if s.queue == nil {
		return
	}
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued export jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
			s.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("recovered export jobs", zap.Int("count", len(pending)))
	}
}

// StartCleanup purges expired export files every CleanupInterval until ctx ends.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired(ctx context.Context) {
	const batch = 100
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	var lastSeen string
	for {
		finished, err := s.repo.ListFinishedBefore(ctx, cutoff, batch)
		if err != nil {
			s.logger.Warn("export cleanup list failed", zap.Error(err))
			return
		}
		if len(finished) == 0 || finished[len(finished)-1].ID == lastSeen {
			break
		}
		lastSeen = finished[len(finished)-1].ID
		for _, job := range finished {
			if job.ResultURL == nil {
				continue
			}
			_, relPath, _, err := s.signer.Parse(lastSegment(*job.ResultURL), true)
			if err != nil {
				continue
			}
			if err := s.files.Delete(relPath); err != nil {
				s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
		if len(finished) < batch {
			break
		}
	}
	removed, err := s.files.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export filesystem cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
}

func (s *ExportJobService) load(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

func exportParams(req dto.ExportJobRequest) (models.ExportJobParams, error) {
	view, err := planning.ParseViewMode(req.View)
	if err != nil {
		return models.ExportJobParams{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "view must be week or month")
	}
	anchor := strings.TrimSpace(req.Anchor)
	if anchor != "" {
		if _, err := planning.ParseDate(anchor); err != nil {
			return models.ExportJobParams{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "anchor must be a YYYY-MM-DD date")
		}
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = ExportFormatPDF
	}
	if format != ExportFormatPDF && format != ExportFormatCSV {
		return models.ExportJobParams{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	params := models.ExportJobParams{
		View:   string(view),
		Anchor: anchor,
		Format: format,
		Filter: models.SessionFilter{
			Status:           req.Status,
			ClassID:          req.ClassID,
			TeacherID:        req.TeacherID,
			ClassRoomID:      req.ClassRoomID,
			SpecializationID: req.SpecializationID,
			SessionTypeID:    req.SessionTypeID,
			CourseID:         req.CourseID,
		},
	}
	if date := strings.TrimSpace(req.ConflictDate); date != "" {
		if _, err := planning.ParseDate(date); err != nil {
			return models.ExportJobParams{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "conflict_date must be a YYYY-MM-DD date")
		}
		params.ConflictDate = date
		params.ConflictStart = req.ConflictStart
		params.ConflictEnd = req.ConflictEnd
	}
	return params, nil
}

func contentTypeFor(format string) string {
	if format == ExportFormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}

func lastSegment(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// ExportJobWorker renders queued export jobs and stores the result.
type ExportJobWorker struct {
	repo         exportJobStore
	renderer     calendarRenderer
	files        fileStore
	signer       tokenSigner
	maxRetries   int
	downloadPath string
	logger       *zap.Logger
}

// NewExportJobWorker constructs a worker sharing the service's retry and download settings.
func NewExportJobWorker(repo exportJobStore, renderer calendarRenderer, files fileStore, signer tokenSigner, cfg ExportJobConfig, logger *zap.Logger) *ExportJobWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &ExportJobWorker{
		repo:         repo,
		renderer:     renderer,
		files:        files,
		signer:       signer,
		maxRetries:   cfg.MaxRetries,
		downloadPath: cfg.DownloadPath,
		logger:       logger,
	}
}

// Handle processes one queue job. Client errors fail the job at once; other
// errors are returned so the queue retries until maxRetries.
func (w *ExportJobWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.logger.Warn("export job vanished", zap.String("job_id", job.ID))
			return nil
		}
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	url, err := w.produce(ctx, record)
	if err != nil {
		permanent := appErrors.FromError(err).Status < http.StatusInternalServerError
		if permanent || job.Attempt >= w.maxRetries {
			w.fail(ctx, job.ID, err)
			if permanent {
				return nil
			}
			return err
		}
		queued := models.ExportStatusQueued
		reset := 0
		msg := err.Error()
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &queued,
			Progress:     &reset,
			ErrorMessage: &msg,
		}); updateErr != nil {
			w.logger.Warn("failed to requeue export job", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return err
	}

	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	noError := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark export job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	return nil
}

func (w *ExportJobWorker) produce(ctx context.Context, record *models.ExportJob) (string, error) {
	params := record.Params
	req := ExportRequest{
		Query: CalendarQuery{
			View:   planning.ViewMode(params.View),
			Anchor: params.Anchor,
			Filter: params.Filter,
		},
		Format: params.Format,
	}
	if params.ConflictDate != "" {
		req.Conflict = &planning.ConflictSlot{Date: params.ConflictDate, StartTime: params.ConflictStart, EndTime: params.ConflictEnd}
	}
	result, err := w.renderer.Export(ctx, req)
	if err != nil {
		return "", err
	}
	relPath, err := w.files.Save(record.ID+"/"+result.Filename, result.Body)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, _, err := w.signer.Generate(record.ID, relPath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	return w.downloadPath + "/" + token, nil
}

func (w *ExportJobWorker) fail(ctx context.Context, id string, cause error) {
	failed := models.ExportStatusFailed
	progress := 100
	now := time.Now().UTC()
	msg := cause.Error()
	if err := w.repo.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark export job failed", zap.String("job_id", id), zap.Error(err))
	}
}
