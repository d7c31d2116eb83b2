package controller

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadController stores a multipart file under the uploads dir and returns
// the URL a message's fileUrl field should carry.
type UploadController struct {
	uploadDir string
}

func NewUploadController(uploadDir string) *UploadController {
	return &UploadController{uploadDir: uploadDir}
}

func (h *UploadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
			return
		}

		// Random prefix keeps colliding client filenames apart.
		name := uuid.NewString() + "-" + sanitizeFilename(file.Filename)
		if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
			return
		}

		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		c.JSON(http.StatusOK, gin.H{
			"fileUrl": fmt.Sprintf("%s://%s/uploads/%s", scheme, c.Request.Host, name),
		})
	}
}

// sanitizeFilename strips path separators so the stored name cannot escape
// the uploads dir.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
}
