package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/planning"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
	"github.com/noah-isme/sma-planner/pkg/export"
)

// Export formats.
const (
	ExportFormatPDF = "pdf"
	ExportFormatCSV = "csv"
)

var exportHeaders = []string{"date", "start", "end", "class", "teacher", "classroom", "course", "session_type", "status"}

type calendarBuilder interface {
	Build(ctx context.Context, q CalendarQuery) (*CalendarView, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportRequest selects a calendar window, a format and an optional slot to highlight.
type ExportRequest struct {
	Query    CalendarQuery
	Format   string
	Conflict *planning.ConflictSlot
}

// ExportResult is a rendered calendar file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders calendar windows as PDF or CSV grids.
type ExportService struct {
	calendar calendarBuilder
	csv      csvRenderer
	pdf      pdfRenderer
	enabled  bool
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(calendar calendarBuilder, enabled bool, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{calendar: calendar, csv: csv, pdf: pdf, enabled: enabled, logger: logger}
}

// Export renders the requested window.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "calendar exports are disabled")
	}
	format := req.Format
	if format == "" {
		format = ExportFormatPDF
	}
	if format != ExportFormatPDF && format != ExportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	view, _, err := s.calendar.Build(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	surface := &planning.ConflictSurface{}
	if req.Conflict != nil {
		surface.Mark(req.Conflict.Date, req.Conflict.StartTime, req.Conflict.EndTime)
	}
	dataset := calendarDataset(planning.RenderCells(view.Buckets, surface))

	result := &ExportResult{Filename: fmt.Sprintf("sessions-%s-%s.%s", view.View, view.Anchor, format)}
	switch format {
	case ExportFormatCSV:
		result.ContentType = "text/csv"
		result.Body, err = s.csv.Render(dataset)
	default:
		result.ContentType = "application/pdf"
		title := fmt.Sprintf("Sessions %s to %s", view.From, view.To)
		result.Body, err = s.pdf.Render(dataset, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar export")
	}
	s.logger.Info("calendar exported",
		zap.String("view", string(view.View)),
		zap.String("anchor", view.Anchor),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)))
	return result, nil
}

func calendarDataset(cells []planning.CalendarCell) export.Dataset {
	data := export.Dataset{Headers: exportHeaders, Highlighted: map[int]bool{}}
	for _, cell := range cells {
		for _, entry := range cell.Entries {
			session := entry.Session
			if entry.Conflicting {
				data.Highlighted[len(data.Rows)] = true
			}
			data.Rows = append(data.Rows, map[string]string{
				"date":         cell.Date,
				"start":        planning.Normalize(session.StartTime),
				"end":          planning.Normalize(session.EndTime),
				"class":        strconv.FormatInt(session.ClassID, 10),
				"teacher":      strconv.FormatInt(session.TeacherID, 10),
				"classroom":    strconv.FormatInt(session.ClassRoomID, 10),
				"course":       strconv.FormatInt(session.CourseID, 10),
				"session_type": strconv.FormatInt(session.SessionTypeID, 10),
				"status":       string(session.Status),
			})
		}
	}
	return data
}
