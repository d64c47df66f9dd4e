package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/housing-check-api/pkg/errors"
	"github.com/noah-isme/housing-check-api/pkg/response"
	"github.com/noah-isme/housing-check-api/pkg/storage"
)

// UploadConfig restricts accepted evidence photos.
type UploadConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// UploadHandler stores evidence photos and serves signed downloads.
type UploadHandler struct {
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	config  UploadConfig
	logger  *zap.Logger
}

// NewUploadHandler builds a new handler.
func NewUploadHandler(store *storage.LocalStorage, signer *storage.SignedURLSigner, config UploadConfig, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{storage: store, signer: signer, config: config, logger: logger}
}

// Upload godoc
// @Summary Upload an evidence photo
// @Description Stores the file and returns the relative URL to reference in a disclosure
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Photo"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file field required"))
		return
	}
	if h.config.MaxFileSizeBytes > 0 && fileHeader.Size > h.config.MaxFileSizeBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds maximum size"))
		return
	}
	if !h.mimeAllowed(fileHeader.Header.Get("Content-Type")) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported file type"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, err := h.storage.SaveStream(name, src); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
		return
	}

	token, expiresAt, err := h.signer.Generate(claims.UserID, name)
	if err != nil {
		h.logger.Warn("failed to sign download url", zap.Error(err))
	}

	payload := gin.H{"url": "/files/" + name}
	if token != "" {
		payload["signed_url"] = "/files/" + name + "?token=" + token
		payload["expires_at"] = expiresAt.UTC()
	}
	response.Created(c, payload)
}

// Download godoc
// @Summary Download a stored evidence photo
// @Description Requires a valid signed token issued at upload time
// @Tags Uploads
// @Produce octet-stream
// @Param name path string true "File name"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{name} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "signed token required"))
		return
	}

	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token"))
		return
	}
	if relPath != name {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token does not match file"))
		return
	}

	file, err := h.storage.Open(name)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	file.Close()

	c.File(h.storage.Path(name))
}

func (h *UploadHandler) mimeAllowed(contentType string) bool {
	if len(h.config.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range h.config.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}
