package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/internal/service"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// ReportHandler streams attendance and grade exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Attendance godoc
// @Summary Export attendance report
// @Description Export attendance as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Param student_id query string false "Student ID"
// @Param grade_level query string false "Grade level"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := models.AttendanceFilter{
		StudentID:    c.Query("student_id"),
		GradeLevel:   c.Query("grade_level"),
		ClassSection: c.Query("class_section"),
	}
	if raw := c.Query("from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = &from
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			filter.To = &to
		}
	}

	report, err := h.service.AttendanceReport(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

// Grades godoc
// @Summary Export grade report
// @Description Export grades as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Param student_id query string false "Student ID"
// @Param subject query string false "Subject"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/grades [get]
func (h *ReportHandler) Grades(c *gin.Context) {
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := models.GradeFilter{
		StudentID: c.Query("student_id"),
		Subject:   c.Query("subject"),
		GradeType: c.Query("grade_type"),
	}

	report, err := h.service.GradeReport(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

func serveReport(c *gin.Context, report *service.Report) {
	c.Header("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
