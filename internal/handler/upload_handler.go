package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/storage"
)

// maxUploadBytes caps product images at 10 MiB.
const maxUploadBytes = 10 << 20

type UploadHandler struct {
	uploader *storage.Uploader
	logger   *zap.Logger
}

func NewUploadHandler(uploader *storage.Uploader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger,
	}
}

// Upload stores a product image and returns its public URL for the admin
// to attach to a product.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.uploader.Upload(c.Request.Context(), file, contentType)
	if err != nil {
		h.logger.Error("Failed to upload image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
