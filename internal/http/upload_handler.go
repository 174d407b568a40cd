package http

import (
	"mime/multipart"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutor-hub/internal/storage"
)

// UploadHandler expone subida generica de imagenes y documentos.
type UploadHandler struct {
	logger   *zap.Logger
	uploader storage.Uploader
}

func NewUploadHandler(logger *zap.Logger, uploader storage.Uploader) *UploadHandler {
	return &UploadHandler{logger: logger, uploader: uploader}
}

// UploadImage maneja POST /upload/image.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	h.upload(c, "images", imageTypes, "Only JPEG, PNG files are allowed")
}

// UploadDocument maneja POST /upload/document.
func (h *UploadHandler) UploadDocument(c *gin.Context) {
	h.upload(c, "documents", documentTypes, "Only PDF, JPEG, PNG files are allowed")
}

func (h *UploadHandler) upload(c *gin.Context, folder string, allowed map[string]bool, typeMsg string) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Uploads unavailable"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowed[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"message": typeMsg})
		return
	}

	url, err := h.store(c, folder, fileHeader, contentType)
	if err != nil {
		h.logger.Error("file upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *UploadHandler) store(c *gin.Context, folder string, fileHeader *multipart.FileHeader, contentType string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	name := uuid.NewString() + path.Ext(fileHeader.Filename)
	return h.uploader.Upload(c.Request.Context(), folder, name, contentType, file, fileHeader.Size)
}
