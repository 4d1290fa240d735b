package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audio-ai-api/internal/transcription"
)

// Register wires the full route table onto the engine.
func Register(engine *gin.Engine, serviceName, version string, svc PipelineService, speech transcription.Provider) {
	engine.GET("/", Root(serviceName, version, svc))
	engine.GET("/health", Health(serviceName, speech, svc))

	api := engine.Group("/api")
	api.POST("/audio-to-text", AudioToText(svc))
	api.POST("/text-to-model", TextToModel(svc))
	api.POST("/audio-to-model", AudioToModel(svc))
}
