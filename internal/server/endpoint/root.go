// Package endpoint contains the Gin handlers for the service's HTTP surface.
package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audio-ai-api/internal/server"
)

// RootStatus is the health payload served at GET /.
type RootStatus struct {
	Status             string `json:"status"`
	Service            string `json:"service"`
	Version            string `json:"version"`
	SageMakerAvailable bool   `json:"sagemaker_available"`
}

// Root returns the basic service status handler.
func Root(serviceName, version string, svc PipelineService) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.RespondOK(c, RootStatus{
			Status:             "online",
			Service:            serviceName,
			Version:            version,
			SageMakerAvailable: svc.InferenceAvailable(),
		})
	}
}
