package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/pipeline"
	"github.com/skillsenselab/audio-ai-api/internal/transcription"
)

type fakeService struct {
	text           string
	textErr        error
	modelResponse  any
	modelErr       error
	audioModel     *pipeline.AudioToModelResult
	audioModelErr  error
	inferAvailable bool

	lastText     string
	lastEndpoint string
	lastUpload   pipeline.Upload
}

func (f *fakeService) AudioToText(_ context.Context, up pipeline.Upload) (string, error) {
	f.lastUpload = up
	return f.text, f.textErr
}

func (f *fakeService) TextToModel(_ context.Context, text, endpointName string) (any, error) {
	f.lastText = text
	f.lastEndpoint = endpointName
	return f.modelResponse, f.modelErr
}

func (f *fakeService) AudioToModel(_ context.Context, up pipeline.Upload) (*pipeline.AudioToModelResult, error) {
	f.lastUpload = up
	return f.audioModel, f.audioModelErr
}

func (f *fakeService) InferenceAvailable() bool { return f.inferAvailable }

type fakeSpeech struct {
	available bool
}

func (f *fakeSpeech) Name() string                       { return "fake" }
func (f *fakeSpeech) IsAvailable(_ context.Context) bool { return f.available }
func (f *fakeSpeech) Transcribe(_ context.Context, _ transcription.Request) (*transcription.Result, error) {
	return nil, nil
}

func newTestRouter(svc PipelineService, speech transcription.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Register(engine, "Audio AI API", "2.0.0", svc, speech)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func multipartAudio(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="audio_file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not the error envelope: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestRoot(t *testing.T) {
	engine := newTestRouter(&fakeService{inferAvailable: true}, &fakeSpeech{available: true})

	w := doRequest(t, engine, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var status RootStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "online" {
		t.Errorf("expected 'online', got %q", status.Status)
	}
	if status.Service != "Audio AI API" || status.Version != "2.0.0" {
		t.Errorf("unexpected identity: %+v", status)
	}
	if !status.SageMakerAvailable {
		t.Error("expected sagemaker_available=true")
	}
}

func TestHealthDegradedWithoutInference(t *testing.T) {
	engine := newTestRouter(&fakeService{inferAvailable: false}, &fakeSpeech{available: true})

	w := doRequest(t, engine, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("a degraded service still answers 200, got %d", w.Code)
	}

	var body struct {
		Status     string            `json:"status"`
		Components []ComponentHealth `json:"components"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("expected degraded, got %q", body.Status)
	}
}

func TestHealthUnhealthySpeech(t *testing.T) {
	engine := newTestRouter(&fakeService{inferAvailable: true}, &fakeSpeech{available: false})

	w := doRequest(t, engine, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestAudioToText(t *testing.T) {
	svc := &fakeService{text: "hola mundo"}
	engine := newTestRouter(svc, &fakeSpeech{available: true})

	body, contentType := multipartAudio(t, "clip.wav", "audio/wav", "riff bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/audio-to-text", body)
	req.Header.Set("Content-Type", contentType)

	w := doRequest(t, engine, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp AudioToTextResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "hola mundo" {
		t.Errorf("expected transcription, got %q", resp.Text)
	}
	if svc.lastUpload.Filename != "clip.wav" {
		t.Errorf("expected filename passthrough, got %q", svc.lastUpload.Filename)
	}
	if svc.lastUpload.ContentType != "audio/wav" {
		t.Errorf("expected content type passthrough, got %q", svc.lastUpload.ContentType)
	}
}

func TestAudioToTextMissingFile(t *testing.T) {
	engine := newTestRouter(&fakeService{}, &fakeSpeech{available: true})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("other_field", "x")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/audio-to-text", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := doRequest(t, engine, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != apperrors.ErrCodeMissingField {
		t.Errorf("expected MISSING_FIELD, got %s", resp.Error.Code)
	}
}

func TestAudioToTextPipelineError(t *testing.T) {
	svc := &fakeService{textErr: apperrors.NoSpeechDetected()}
	engine := newTestRouter(svc, &fakeSpeech{available: true})

	body, contentType := multipartAudio(t, "clip.wav", "audio/wav", "riff")
	req := httptest.NewRequest(http.MethodPost, "/api/audio-to-text", body)
	req.Header.Set("Content-Type", contentType)

	w := doRequest(t, engine, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != apperrors.ErrCodeNoSpeechDetected {
		t.Errorf("expected NO_SPEECH_DETECTED, got %s", resp.Error.Code)
	}
}

func TestTextToModel(t *testing.T) {
	svc := &fakeService{modelResponse: map[string]any{"answer": "si"}}
	engine := newTestRouter(svc, &fakeSpeech{available: true})

	req := httptest.NewRequest(http.MethodPost, "/api/text-to-model",
		strings.NewReader(`{"text":"hola","endpoint_name":"my-ep"}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(t, engine, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp TextToModelResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	m, ok := resp.ModelResponse.(map[string]any)
	if !ok || m["answer"] != "si" {
		t.Errorf("unexpected model response: %v", resp.ModelResponse)
	}
	if svc.lastText != "hola" || svc.lastEndpoint != "my-ep" {
		t.Errorf("input not passed through: text=%q endpoint=%q", svc.lastText, svc.lastEndpoint)
	}
}

func TestTextToModelMissingText(t *testing.T) {
	engine := newTestRouter(&fakeService{}, &fakeSpeech{available: true})

	req := httptest.NewRequest(http.MethodPost, "/api/text-to-model", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(t, engine, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != apperrors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", resp.Error.Code)
	}
}

func TestTextToModelMalformedJSON(t *testing.T) {
	engine := newTestRouter(&fakeService{}, &fakeSpeech{available: true})

	req := httptest.NewRequest(http.MethodPost, "/api/text-to-model", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(t, engine, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTextToModelBackendNotConfigured(t *testing.T) {
	svc := &fakeService{modelErr: apperrors.NotConfigured("inference backend")}
	engine := newTestRouter(svc, &fakeSpeech{available: true})

	req := httptest.NewRequest(http.MethodPost, "/api/text-to-model", strings.NewReader(`{"text":"hola"}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(t, engine, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error.Code != apperrors.ErrCodeNotConfigured {
		t.Errorf("expected NOT_CONFIGURED, got %s", resp.Error.Code)
	}
}

func TestAudioToModel(t *testing.T) {
	svc := &fakeService{
		audioModel: &pipeline.AudioToModelResult{
			Success:       true,
			Transcription: "hola",
			ModelResponse: map[string]any{"answer": "si"},
			ShortResponse: "si",
			Filename:      "clip.wav",
		},
	}
	engine := newTestRouter(svc, &fakeSpeech{available: true})

	body, contentType := multipartAudio(t, "clip.wav", "audio/wav", "riff")
	req := httptest.NewRequest(http.MethodPost, "/api/audio-to-model", body)
	req.Header.Set("Content-Type", contentType)

	w := doRequest(t, engine, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp pipeline.AudioToModelResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Transcription != "hola" || resp.ShortResponse != "si" {
		t.Errorf("unexpected body: %+v", resp)
	}
	if resp.Note != "" {
		t.Errorf("expected note omitted on full flow, got %q", resp.Note)
	}
}

func TestAudioToModelDegraded(t *testing.T) {
	svc := &fakeService{
		audioModel: &pipeline.AudioToModelResult{
			Success:       true,
			Transcription: "hola",
			ShortResponse: "hola",
			Filename:      "clip.wav",
			Note:          pipeline.NoInferenceNote,
		},
	}
	engine := newTestRouter(svc, &fakeSpeech{available: true})

	body, contentType := multipartAudio(t, "clip.wav", "audio/wav", "riff")
	req := httptest.NewRequest(http.MethodPost, "/api/audio-to-model", body)
	req.Header.Set("Content-Type", contentType)

	w := doRequest(t, engine, req)
	if w.Code != http.StatusOK {
		t.Fatalf("degradation is still a success, got %d", w.Code)
	}

	var resp pipeline.AudioToModelResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Note != pipeline.NoInferenceNote {
		t.Errorf("expected degradation note, got %q", resp.Note)
	}
	if resp.ModelResponse != nil {
		t.Errorf("expected no model response, got %v", resp.ModelResponse)
	}
}
