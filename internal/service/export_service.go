package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/export"
)

type exportSectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type exportAttendanceRepository interface {
	ListForSection(ctx context.Context, sectionID string) ([]models.AttendanceDetail, error)
}

// ExportResult is a rendered attendance report.
type ExportResult struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ExportService renders section attendance reports as CSV or PDF.
type ExportService struct {
	sections   exportSectionRepository
	attendance exportAttendanceRepository
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(sections exportSectionRepository, attendance exportAttendanceRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sections:   sections,
		attendance: attendance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// SectionReport renders the full attendance history of one section.
func (s *ExportService) SectionReport(ctx context.Context, sectionID, format string) (*ExportResult, error) {
	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	rows, err := s.attendance.ListForSection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Subject", "Group", "Date", "Status"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student": row.StudentName,
			"Subject": row.SubjectName,
			"Group":   row.GroupLabel,
			"Date":    row.Date.Format("2006-01-02"),
			"Status":  string(row.Status),
		})
	}

	title := fmt.Sprintf("Attendance %s %s", section.GroupLabel, section.Timeslot)

	switch format {
	case "pdf":
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("attendance-%s.pdf", sectionID),
			ContentType: "application/pdf",
		}, nil
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("attendance-%s.csv", sectionID),
			ContentType: "text/csv",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
