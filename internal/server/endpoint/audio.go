package endpoint

import (
	"context"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/pipeline"
	"github.com/skillsenselab/audio-ai-api/internal/server"
)

// uploadFieldName is the multipart field carrying the audio file.
const uploadFieldName = "audio_file"

// PipelineService is the slice of the orchestrator the handlers need.
type PipelineService interface {
	AudioToText(ctx context.Context, up pipeline.Upload) (string, error)
	TextToModel(ctx context.Context, text, endpointName string) (any, error)
	AudioToModel(ctx context.Context, up pipeline.Upload) (*pipeline.AudioToModelResult, error)
	InferenceAvailable() bool
}

// AudioToTextResponse is the Flow A response body.
type AudioToTextResponse struct {
	Text string `json:"text"`
}

// AudioToText handles POST /api/audio-to-text.
func AudioToText(svc PipelineService) gin.HandlerFunc {
	return func(c *gin.Context) {
		up, file, err := uploadFromRequest(c)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		defer file.Close()

		text, err := svc.AudioToText(c.Request.Context(), up)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, AudioToTextResponse{Text: text})
	}
}

// AudioToModel handles POST /api/audio-to-model.
func AudioToModel(svc PipelineService) gin.HandlerFunc {
	return func(c *gin.Context) {
		up, file, err := uploadFromRequest(c)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		defer file.Close()

		result, err := svc.AudioToModel(c.Request.Context(), up)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, result)
	}
}

// uploadFromRequest extracts the audio file from the multipart form.
func uploadFromRequest(c *gin.Context) (pipeline.Upload, multipart.File, error) {
	fileHeader, err := c.FormFile(uploadFieldName)
	if err != nil {
		return pipeline.Upload{}, nil, apperrors.MissingField(uploadFieldName).WithCause(err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return pipeline.Upload{}, nil, apperrors.Internal(err)
	}

	return pipeline.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Reader:      file,
	}, file, nil
}
