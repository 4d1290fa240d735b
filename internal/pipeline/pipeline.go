// Package pipeline composes the audio-ingest-to-inference request flows:
// persist upload, normalize, transcribe, optionally infer, summarize. Every
// temp artifact acquired along the way is released on every exit path.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillsenselab/audio-ai-api/internal/artifact"
	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
	"github.com/skillsenselab/audio-ai-api/internal/observability"
	"github.com/skillsenselab/audio-ai-api/internal/summary"
	"github.com/skillsenselab/audio-ai-api/internal/transcription"
)

// NoInferenceNote explains transcription-only degradation when the inference
// backend is absent or has no resolvable endpoint.
const NoInferenceNote = "Inference backend not configured; returning transcription only."

// Upload is a client-submitted audio file. The content type is advisory.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Normalizer converts an uploaded file into canonical PCM in a new artifact.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath string) (*artifact.Artifact, error)
}

// Inference invokes the remote model endpoint. Nil means the backend was
// never configured, a valid and permanent condition.
type Inference interface {
	Invoke(ctx context.Context, text, endpointName string) (any, error)
	ResolveEndpoint(requested string) (string, error)
}

// AudioToModelResult is the Flow C response.
type AudioToModelResult struct {
	Success       bool   `json:"success"`
	Transcription string `json:"transcription"`
	ModelResponse any    `json:"model_response"`
	ShortResponse string `json:"short_response"`
	Filename      string `json:"filename"`
	Note          string `json:"note,omitempty"`
}

// Service orchestrates the three request flows over one shared pipeline.
type Service struct {
	artifacts  artifact.Manager
	normalizer Normalizer
	speech     transcription.Provider
	infer      Inference
	log        *logger.Logger
}

// New creates a Service. infer may be nil when the inference backend is not
// configured.
func New(artifacts artifact.Manager, normalizer Normalizer, speech transcription.Provider, infer Inference, log *logger.Logger) *Service {
	return &Service{
		artifacts:  artifacts,
		normalizer: normalizer,
		speech:     speech,
		infer:      infer,
		log:        log.WithComponent("pipeline"),
	}
}

// InferenceAvailable reports whether an inference handle was configured.
func (s *Service) InferenceAvailable() bool { return s.infer != nil }

// AudioToText is Flow A: persist, normalize, transcribe.
func (s *Service) AudioToText(ctx context.Context, up Upload) (string, error) {
	result, err := s.transcribeUpload(ctx, up)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// TextToModel is Flow B: resolve the endpoint, then invoke the model.
func (s *Service) TextToModel(ctx context.Context, text, endpointName string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.MissingField("text")
	}
	if s.infer == nil {
		return nil, apperrors.NotConfigured("inference backend")
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.infer")
	defer span.End()

	return s.infer.Invoke(ctx, text, endpointName)
}

// AudioToModel is Flow C: the full pipeline. When no inference backend or
// endpoint is available the transcription is still returned, with a note.
func (s *Service) AudioToModel(ctx context.Context, up Upload) (*AudioToModelResult, error) {
	transcribed, err := s.transcribeUpload(ctx, up)
	if err != nil {
		return nil, err
	}

	result := &AudioToModelResult{
		Success:       true,
		Transcription: transcribed.Text,
		Filename:      up.Filename,
	}

	if s.infer == nil {
		result.ShortResponse = summary.Excerpt(transcribed.Text)
		result.Note = NoInferenceNote
		return result, nil
	}
	if _, err := s.infer.ResolveEndpoint(""); err != nil {
		result.ShortResponse = summary.Excerpt(transcribed.Text)
		result.Note = NoInferenceNote
		return result, nil
	}

	inferCtx, span := observability.StartSpan(ctx, "pipeline.infer")
	modelResp, err := s.infer.Invoke(inferCtx, transcribed.Text, "")
	span.End()
	if err != nil {
		return nil, err
	}

	result.ModelResponse = modelResp
	result.ShortResponse = summary.Excerpt(modelResp)
	return result, nil
}

// transcribeUpload runs the shared front half of the pipeline. All artifacts
// are released before it returns, success or not.
func (s *Service) transcribeUpload(ctx context.Context, up Upload) (*transcription.Result, error) {
	if err := checkContentType(up.ContentType); err != nil {
		return nil, err
	}

	raw, err := s.persistUpload(up)
	if err != nil {
		return nil, err
	}
	defer s.artifacts.Release(raw)

	normCtx, span := observability.StartSpan(ctx, "pipeline.normalize")
	normalized, err := s.normalizer.Normalize(normCtx, raw.Path())
	span.End()
	if err != nil {
		return nil, err
	}
	defer s.artifacts.Release(normalized)

	transcribeCtx, span := observability.StartSpan(ctx, "pipeline.transcribe")
	defer span.End()
	result, err := s.speech.Transcribe(transcribeCtx, transcription.Request{AudioPath: normalized.Path()})
	if err != nil {
		return nil, err
	}

	s.log.Info("audio transcribed", logger.Fields(
		"filename", up.Filename,
		"chars", len(result.Text),
		"provider", s.speech.Name(),
	))
	return result, nil
}

// persistUpload writes the upload's bytes into a fresh artifact.
func (s *Service) persistUpload(up Upload) (*artifact.Artifact, error) {
	suffix := filepath.Ext(up.Filename)
	if suffix == "" {
		suffix = ".bin"
	}

	art, err := s.artifacts.Acquire(suffix)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	f, err := os.OpenFile(art.Path(), os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		s.artifacts.Release(art)
		return nil, apperrors.Internal(err)
	}
	_, copyErr := io.Copy(f, up.Reader)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		s.artifacts.Release(art)
		return nil, apperrors.Internal(fmt.Errorf("persist upload: copy=%v close=%v", copyErr, closeErr))
	}
	return art, nil
}

// checkContentType applies the advisory content-type gate from the original
// deployment. Browsers commonly tag microphone captures as video/webm, and
// generic clients send octet-stream, so both pass; the decoder has the final
// word either way.
func checkContentType(ct string) error {
	if ct == "" ||
		strings.HasPrefix(ct, "audio/") ||
		strings.HasPrefix(ct, "video/") ||
		ct == "application/octet-stream" {
		return nil
	}
	return apperrors.InvalidInput("audio_file", "the file must be an audio upload")
}
