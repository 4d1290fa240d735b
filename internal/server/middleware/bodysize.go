package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audio-ai-api/internal/util"
)

const defaultMaxBodySize = 25 * 1024 * 1024 // 25MB, enough for a few minutes of audio

// BodySizeLimit returns middleware that restricts the request body to the
// given size string (e.g. "25MB", "512KB").
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, size)
		c.Next()
	}
}
