package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// AttendanceHandler exposes attendance recording and listing.
type AttendanceHandler struct {
	service *service.AttendanceService
	links   *service.LinkService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService, links *service.LinkService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, links: links}
}

// Record godoc
// @Summary Record attendance
// @Description Record a student's attendance for a day; re-recording overwrites the previous status
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	record, err := h.service.Record(c.Request.Context(), claims.UserID, isAdmin(claims), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List attendance
// @Description List attendance records; parents see only their linked children
// @Tags Attendance
// @Produce json
// @Param student_id query string false "Student ID"
// @Param grade_level query string false "Grade level"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.AttendanceFilter{
		StudentID:    c.Query("student_id"),
		GradeLevel:   c.Query("grade_level"),
		ClassSection: c.Query("class_section"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 50),
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

	if claims.Role == models.RoleParent {
		if ok, err := h.parentMaySee(c, claims.UserID, filter.StudentID); err != nil {
			response.Error(c, err)
			return
		} else if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student is not linked to parent"))
			return
		}
	}

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// parentMaySee requires parents to scope listings to one of their linked
// children.
func (h *AttendanceHandler) parentMaySee(c *gin.Context, parentID, studentID string) (bool, error) {
	if studentID == "" {
		return false, nil
	}
	return h.links.ParentHasChild(c.Request.Context(), parentID, studentID)
}
