package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utsavrajji/FixMyArea-sub000/services"

	"github.com/gin-gonic/gin"
)

// multipart overhead allowed on top of the image itself
const uploadFormSlack = 64 << 10

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type UploadController struct {
	images services.ImageStore
}

func NewUploadController(images services.ImageStore) *UploadController {
	return &UploadController{images: images}
}

// Upload stores the multipart "image" field under the "folder" prefix and
// returns its public URL and id.
func (h *UploadController) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+uploadFormSlack)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image must be smaller than 1MB"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please choose an image to upload"})
		return
	}
	defer file.Close()

	if header.Size >= services.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image must be smaller than 1MB"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read image"})
		return
	}

	// the declared Content-Type is client controlled, sniff the bytes instead
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed"})
		return
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = ".img"
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.images.Upload(ctx, c.PostForm("folder"), ext, contentType, data)
	if err != nil {
		slog.Error("Image upload failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed, please try again"})
		return
	}

	c.JSON(http.StatusCreated, result)
}
