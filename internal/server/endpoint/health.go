package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audio-ai-api/internal/transcription"
)

// ComponentHealth reports one dependency's status.
type ComponentHealth struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Health returns a handler that reports service health including the speech
// backend and the inference handle. A missing inference handle is a valid,
// permanent condition, so it degrades rather than fails the check.
func Health(serviceName string, speech transcription.Provider, svc PipelineService) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		components := make([]ComponentHealth, 0, 2)

		speechStatus := "healthy"
		if !speech.IsAvailable(c.Request.Context()) {
			speechStatus = "unhealthy"
			status = "unhealthy"
		}
		components = append(components, ComponentHealth{Name: "transcription", Status: speechStatus})

		inferenceStatus := "healthy"
		if !svc.InferenceAvailable() {
			inferenceStatus = "degraded"
			if status == "healthy" {
				status = "degraded"
			}
		}
		components = append(components, ComponentHealth{Name: "inference", Status: inferenceStatus})

		httpStatus := http.StatusOK
		if status == "unhealthy" {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": components,
		})
	}
}
