package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
	"github.com/madrasati-app/madrasati-api/pkg/storage"
)

// HomeworkHandler exposes homework publishing and listing.
type HomeworkHandler struct {
	service *service.HomeworkService
	storage *storage.LocalStorage
	maxSize int64
}

// NewHomeworkHandler creates a new handler.
func NewHomeworkHandler(svc *service.HomeworkService, store *storage.LocalStorage, maxSize int64) *HomeworkHandler {
	return &HomeworkHandler{service: svc, storage: store, maxSize: maxSize}
}

// Publish godoc
// @Summary Publish homework
// @Description Publish an assignment for a grade level
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body service.PublishHomeworkRequest true "Homework payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Publish(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PublishHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid homework payload"))
		return
	}

	hw, err := h.service.Publish(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hw)
}

// Update godoc
// @Summary Update homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework ID"
// @Param payload body service.PublishHomeworkRequest true "Homework payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /homework/{id} [put]
func (h *HomeworkHandler) Update(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.PublishHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid homework payload"))
		return
	}

	hw, err := h.service.Update(c.Request.Context(), claims.UserID, isAdmin(claims), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hw, nil)
}

// Delete godoc
// @Summary Delete homework
// @Tags Homework
// @Produce json
// @Param id path string true "Homework ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, isAdmin(claims), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List homework
// @Description List assignments with derived due badges, soonest deadline first
// @Tags Homework
// @Produce json
// @Param grade_level query string false "Grade level"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	filter := models.HomeworkFilter{
		GradeLevel: c.Query("grade_level"),
		TeacherID:  c.Query("teacher_id"),
		Subject:    c.Query("subject"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 20),
	}

	views, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// UploadAttachment godoc
// @Summary Upload homework attachment
// @Description Store an attachment and return its public URL for the homework payload
// @Tags Homework
// @Accept mpfd
// @Produce json
// @Param file formData file true "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /homework/attachments [post]
func (h *HomeworkHandler) UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment file is required"))
		return
	}
	defer file.Close()

	if h.maxSize > 0 && header.Size > h.maxSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the size limit"))
		return
	}

	name := filepath.Base(header.Filename)
	stored, err := h.storage.UploadStream(storage.BucketHomework, name, file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment"))
		return
	}

	response.Created(c, gin.H{
		"path": stored,
		"url":  h.storage.PublicURL(stored),
	})
}
