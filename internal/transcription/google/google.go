// Package google implements transcription.Provider against the Google Web
// Speech API, the same backend the original deployment used.
package google

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skillsenselab/audio-ai-api/internal/audio"
	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
	"github.com/skillsenselab/audio-ai-api/internal/transcription"
)

const (
	// ProviderName is the registered name for the Google provider.
	ProviderName = transcription.ProviderGoogle

	defaultURL     = "http://www.google.com/speech-api/v2/recognize"
	defaultTimeout = 30 * time.Second

	serviceLabel = "speech recognition service"
)

func init() {
	transcription.RegisterFactory(ProviderName, func(cfg transcription.Config, log *logger.Logger) (transcription.Provider, error) {
		timeout := defaultTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		return NewProvider(Config{
			URL:      cfg.Google.URL,
			Key:      cfg.Google.Key,
			Language: cfg.Language,
			Timeout:  timeout,
		}, log)
	})
}

// Config holds configuration for the Google Web Speech provider.
type Config struct {
	URL      string
	Key      string
	Language string
	Timeout  time.Duration
}

// Provider implements transcription.Provider over the Web Speech API.
type Provider struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewProvider creates a new Google Web Speech provider.
func NewProvider(cfg Config, log *logger.Logger) (*Provider, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("google: api key is required")
	}
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Language == "" {
		cfg.Language = transcription.DefaultLanguage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.WithComponent("transcription.google"),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured. The Web Speech API
// has no health endpoint, so reachability is only known at call time.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.cfg.Key != ""
}

// Transcribe posts the normalized PCM to the recognition backend and returns
// the top transcript.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	pcm, rate, err := audio.PCMBytes(req.AudioPath)
	if err != nil {
		return nil, apperrors.UnsupportedFormat("the normalized audio could not be read").WithCause(err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.cfg.Language
	}

	query := url.Values{}
	query.Set("client", "chromium")
	query.Set("lang", lang)
	query.Set("key", p.cfg.Key)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"?"+query.Encode(), bytes.NewReader(pcm))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	httpReq.Header.Set("Content-Type", fmt.Sprintf("audio/l16; rate=%d", rate))

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, translateTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp.StatusCode)
	}

	text, err := parseRecognition(resp.Body)
	if err != nil {
		return nil, apperrors.ServiceUnavailable(serviceLabel).WithCause(err)
	}
	if text == "" {
		return nil, apperrors.NoSpeechDetected()
	}

	p.log.Debug("transcription completed", logger.Fields("chars", len(text), "lang", lang))
	return &transcription.Result{Text: text, Language: lang}, nil
}

// --- backend failure translation ---

// translateStatus is the single place backend HTTP statuses become domain
// errors. New backend cases go here, not into the call path.
var statusTable = map[int]func() *apperrors.AppError{
	http.StatusForbidden:       func() *apperrors.AppError { return apperrors.NotConfigured(serviceLabel) },
	http.StatusTooManyRequests: func() *apperrors.AppError { return apperrors.ServiceUnavailable(serviceLabel) },
}

func translateStatus(status int) *apperrors.AppError {
	if build, ok := statusTable[status]; ok {
		return build()
	}
	return apperrors.ServiceUnavailable(serviceLabel).WithDetail("status", status)
}

func translateTransportError(err error) *apperrors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("transcribe").WithCause(err)
	}
	return apperrors.ServiceUnavailable(serviceLabel).WithCause(err)
}

// --- response parsing ---

// recognitionLine is one line of the backend's line-delimited JSON response.
// The first line is typically an empty result set that must be skipped.
type recognitionLine struct {
	Result []struct {
		Alternative []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternative"`
		Final bool `json:"final"`
	} `json:"result"`
}

func parseRecognition(body io.Reader) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var parsed recognitionLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			return "", fmt.Errorf("decode recognition line: %w", err)
		}
		for _, res := range parsed.Result {
			if len(res.Alternative) > 0 {
				return strings.TrimSpace(res.Alternative[0].Transcript), nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read recognition response: %w", err)
	}
	return "", nil
}
