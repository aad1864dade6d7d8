package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
	"github.com/madrasati-app/madrasati-api/pkg/storage"
)

// FileHandler serves stored attachments and issues signed download links.
type FileHandler struct {
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	metrics *service.MetricsService
}

// NewFileHandler creates a new handler.
func NewFileHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner, metrics *service.MetricsService) *FileHandler {
	return &FileHandler{storage: store, signer: signer, metrics: metrics}
}

// Sign godoc
// @Summary Issue signed download link
// @Description Create a time-limited token for downloading a stored attachment
// @Tags Files
// @Accept json
// @Produce json
// @Param payload body object true "path"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /files/sign [post]
func (h *FileHandler) Sign(c *gin.Context) {
	var payload struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "object path required"))
		return
	}

	token, expiresAt, err := h.signer.Generate(payload.Path)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"url":        "/files/download?token=" + token,
	}, nil)
}

// Download godoc
// @Summary Download attachment
// @Description Stream a stored attachment given a valid signed token
// @Tags Files
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	relPath, _, err := h.signer.Parse(token)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link"))
		return
	}

	file, err := h.storage.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "attachment not found"))
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(relPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(relPath)+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
