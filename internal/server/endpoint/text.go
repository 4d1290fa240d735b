package endpoint

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/server"
	"github.com/skillsenselab/audio-ai-api/internal/validation"
)

// TextInput is the request body for POST /api/text-to-model.
type TextInput struct {
	Text         string `json:"text" validate:"required"`
	EndpointName string `json:"endpoint_name"`
}

// TextToModelResponse is the Flow B response body.
type TextToModelResponse struct {
	ModelResponse any `json:"model_response"`
}

// TextToModel handles POST /api/text-to-model.
func TextToModel(svc PipelineService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input TextInput
		if err := c.ShouldBindJSON(&input); err != nil {
			server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
			return
		}
		if err := validation.Validate(input); err != nil {
			server.RespondWithError(c, err)
			return
		}

		result, err := svc.TextToModel(c.Request.Context(), input.Text, input.EndpointName)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, TextToModelResponse{ModelResponse: result})
	}
}
