package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// LinkHandler manages parent-student and teacher assignment links.
type LinkHandler struct {
	service *service.LinkService
}

// NewLinkHandler creates a new handler.
func NewLinkHandler(svc *service.LinkService) *LinkHandler {
	return &LinkHandler{service: svc}
}

// LinkChild godoc
// @Summary Link child to parent
// @Description Link the authenticated parent to a student by national school ID
// @Tags Links
// @Accept json
// @Produce json
// @Param payload body object true "national_school_id and relationship"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /links/children [post]
func (h *LinkHandler) LinkChild(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		NationalSchoolID string `json:"national_school_id" binding:"required"`
		Relationship     string `json:"relationship"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "national school ID required"))
		return
	}

	if err := h.service.LinkParentToStudent(c.Request.Context(), claims.UserID, payload.NationalSchoolID, payload.Relationship); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListChildren godoc
// @Summary List linked children
// @Description List the students linked to the authenticated parent
// @Tags Links
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /links/children [get]
func (h *LinkHandler) ListChildren(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	children, err := h.service.ListChildren(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, nil)
}

// AssignTeacherStudent godoc
// @Summary Assign student to teacher
// @Tags Links
// @Accept json
// @Produce json
// @Param payload body object true "teacher_id and student_id"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/links/teacher-students [post]
func (h *LinkHandler) AssignTeacherStudent(c *gin.Context) {
	var payload struct {
		TeacherID string `json:"teacher_id" binding:"required"`
		StudentID string `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "teacher and student IDs required"))
		return
	}

	if err := h.service.AssignTeacherStudent(c.Request.Context(), payload.TeacherID, payload.StudentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignTeacherGradeLevel godoc
// @Summary Assign grade level to teacher
// @Tags Links
// @Accept json
// @Produce json
// @Param payload body object true "teacher_id and grade_level"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/links/teacher-grades [post]
func (h *LinkHandler) AssignTeacherGradeLevel(c *gin.Context) {
	var payload struct {
		TeacherID  string `json:"teacher_id" binding:"required"`
		GradeLevel string `json:"grade_level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "teacher ID and grade level required"))
		return
	}

	if err := h.service.AssignTeacherGradeLevel(c.Request.Context(), payload.TeacherID, payload.GradeLevel); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
