package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// maxRosterImageBytes caps extraction uploads.
const maxRosterImageBytes = 8 << 20

// ExtractionHandler stages students from roster photos.
type ExtractionHandler struct {
	service   *service.ExtractionService
	students  *service.StudentService
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewExtractionHandler creates a new handler.
func NewExtractionHandler(svc *service.ExtractionService, students *service.StudentService, dashboard *service.DashboardService, metrics *service.MetricsService) *ExtractionHandler {
	return &ExtractionHandler{service: svc, students: students, dashboard: dashboard, metrics: metrics}
}

// Extract godoc
// @Summary Extract students from roster image
// @Description Stage candidate students from a roster photo; nothing is written until confirmed via import
// @Tags Extraction
// @Accept mpfd
// @Produce json
// @Param image formData file true "Roster image"
// @Param grade_level formData string true "Target grade level"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/extraction [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roster image is required"))
		return
	}
	defer file.Close()

	if header.Size > maxRosterImageBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roster image exceeds the size limit"))
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, maxRosterImageBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read roster image"))
		return
	}

	result, err := h.service.ExtractFromImage(c.Request.Context(), image, header.Header.Get("Content-Type"), c.PostForm("grade_level"))
	if err != nil {
		h.metrics.CountExtraction("error")
		response.Error(c, err)
		return
	}
	h.metrics.CountExtraction("ok")
	response.JSON(c, http.StatusOK, result, nil)
}

type confirmCandidatesRequest struct {
	GradeLevel string                    `json:"grade_level" binding:"required"`
	Students   []models.CandidateStudent `json:"students" binding:"required"`
}

// Confirm godoc
// @Summary Confirm staged extraction candidates
// @Description Insert reviewed candidates into the student roster
// @Tags Extraction
// @Accept json
// @Produce json
// @Param payload body confirmCandidatesRequest true "Reviewed candidates"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/extraction/confirm [post]
func (h *ExtractionHandler) Confirm(c *gin.Context) {
	var req confirmCandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload"))
		return
	}

	result, err := h.students.ConfirmCandidates(c.Request.Context(), req.GradeLevel, req.Students)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateAdminStats(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}
