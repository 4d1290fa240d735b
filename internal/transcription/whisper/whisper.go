// Package whisper implements transcription.Provider using a faster-whisper
// HTTP sidecar.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
	"github.com/skillsenselab/audio-ai-api/internal/transcription"
)

const (
	// ProviderName is the registered name for the whisper provider.
	ProviderName = transcription.ProviderWhisper

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second

	serviceLabel = "speech recognition service"
)

func init() {
	transcription.RegisterFactory(ProviderName, func(cfg transcription.Config, log *logger.Logger) (transcription.Provider, error) {
		timeout := defaultTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		return NewProvider(Config{
			URL:      cfg.Whisper.URL,
			Model:    cfg.Whisper.Model,
			Language: cfg.Language,
			Timeout:  timeout,
		}, log), nil
	})
}

// Config holds configuration for the whisper provider.
type Config struct {
	URL      string
	Model    string
	Language string
	Timeout  time.Duration
}

// Provider implements transcription.Provider over the sidecar's HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewProvider creates a new whisper transcription provider.
func NewProvider(cfg Config, log *logger.Logger) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.WithComponent("transcription.whisper"),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Transcribe uploads the normalized WAV to the sidecar and returns the transcript.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.cfg.Language
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, apperrors.Internal(err)
	}
	_ = writer.WriteField("model", p.cfg.Model)
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, translateTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, translateStatus(resp.StatusCode, string(body))
	}

	var result sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.ServiceUnavailable(serviceLabel).WithCause(err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return nil, apperrors.NoSpeechDetected()
	}

	p.log.Debug("transcription completed", logger.Fields("chars", len(text), "lang", lang))
	return &transcription.Result{Text: text, Language: lang}, nil
}

// --- backend failure translation ---

var statusTable = map[int]func(detail string) *apperrors.AppError{
	http.StatusBadRequest: func(detail string) *apperrors.AppError {
		return apperrors.UnsupportedFormat("the backend rejected the audio")
	},
	http.StatusUnprocessableEntity: func(detail string) *apperrors.AppError {
		return apperrors.UnsupportedFormat("the backend rejected the audio")
	},
}

func translateStatus(status int, detail string) *apperrors.AppError {
	if build, ok := statusTable[status]; ok {
		return build(detail)
	}
	return apperrors.ServiceUnavailable(serviceLabel).WithDetail("status", status)
}

func translateTransportError(err error) *apperrors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("transcribe").WithCause(err)
	}
	return apperrors.ServiceUnavailable(serviceLabel).WithCause(err)
}

// --- internal sidecar API types ---

type sidecarResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
