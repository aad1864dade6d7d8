package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Report is a rendered export ready to stream to the client.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders attendance and grade exports.
type ReportService struct {
	attendance attendanceRepository
	grades     gradeRepository
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(attendance attendanceRepository, grades gradeRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		attendance: attendance,
		grades:     grades,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// exportPageSize bounds report queries. Reports always render the first page
// of up to this many rows.
const exportPageSize = 200

// AttendanceReport renders the attendance records matching the filter.
func (s *ReportService) AttendanceReport(ctx context.Context, filter models.AttendanceFilter, format ReportFormat) (*Report, error) {
	filter.Page = 1
	filter.PageSize = exportPageSize
	records, _, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance for report")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Student", "School ID", "Status", "Notes"},
	}
	for _, record := range records {
		notes := ""
		if record.Notes != nil {
			notes = *record.Notes
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":      record.Date.Format("2006-01-02"),
			"Student":   record.StudentName,
			"School ID": record.NationalSchoolID,
			"Status":    string(record.Status),
			"Notes":     notes,
		})
	}
	return s.render(dataset, "Attendance Report", "attendance", format)
}

// GradeReport renders the grades matching the filter.
func (s *ReportService) GradeReport(ctx context.Context, filter models.GradeFilter, format ReportFormat) (*Report, error) {
	filter.Page = 1
	filter.PageSize = exportPageSize
	grades, _, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades for report")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Student ID", "Subject", "Type", "Score"},
	}
	for _, grade := range grades {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":       grade.Date.Format("2006-01-02"),
			"Student ID": grade.StudentID,
			"Subject":    grade.Subject,
			"Type":       grade.GradeType,
			"Score":      fmt.Sprintf("%.2f / %.2f", grade.GradeValue, grade.MaxGrade),
		})
	}
	return s.render(dataset, "Grade Report", "grades", format)
}

// ParseFormat normalises a query parameter into a ReportFormat.
func ParseFormat(raw string) (ReportFormat, error) {
	switch strings.ToLower(raw) {
	case "", "csv":
		return ReportFormatCSV, nil
	case "pdf":
		return ReportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
}

func (s *ReportService) render(dataset export.Dataset, title, baseName string, format ReportFormat) (*Report, error) {
	switch format {
	case ReportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV report")
		}
		return &Report{FileName: baseName + ".csv", ContentType: "text/csv; charset=utf-8", Content: content}, nil
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF report")
		}
		return &Report{FileName: baseName + ".pdf", ContentType: "application/pdf", Content: content}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
}
