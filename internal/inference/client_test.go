package inference

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
)

type stubAPI struct {
	invoked      int
	lastInput    *sagemakerruntime.InvokeEndpointInput
	responseBody []byte
	err          error
}

func (s *stubAPI) InvokeEndpoint(_ context.Context, params *sagemakerruntime.InvokeEndpointInput, _ ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error) {
	s.invoked++
	s.lastInput = params
	if s.err != nil {
		return nil, s.err
	}
	return &sagemakerruntime.InvokeEndpointOutput{Body: s.responseBody}, nil
}

func newTestClient(api InvokeEndpointAPI, defaultEndpoint string) *Client {
	return NewWithAPI(api, defaultEndpoint, logger.NewDefault("test"))
}

func TestResolveEndpointPrecedence(t *testing.T) {
	c := newTestClient(&stubAPI{}, "configured-default")

	got, err := c.ResolveEndpoint("from-request")
	if err != nil {
		t.Fatalf("ResolveEndpoint failed: %v", err)
	}
	if got != "from-request" {
		t.Errorf("request name must win, got %q", got)
	}

	got, err = c.ResolveEndpoint("")
	if err != nil {
		t.Fatalf("ResolveEndpoint failed: %v", err)
	}
	if got != "configured-default" {
		t.Errorf("expected configured default, got %q", got)
	}
}

func TestResolveEndpointUnresolved(t *testing.T) {
	c := newTestClient(&stubAPI{}, "")

	_, err := c.ResolveEndpoint("")
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrCodeEndpointUnresolved {
		t.Errorf("expected ENDPOINT_UNRESOLVED, got %s", appErr.Code)
	}
}

func TestInvokePayloadShape(t *testing.T) {
	api := &stubAPI{responseBody: []byte(`{"answer":"ok"}`)}
	c := newTestClient(api, "my-endpoint")

	if _, err := c.Invoke(context.Background(), "hola mundo", ""); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if api.lastInput == nil {
		t.Fatal("expected an InvokeEndpoint call")
	}
	if got := *api.lastInput.EndpointName; got != "my-endpoint" {
		t.Errorf("expected endpoint 'my-endpoint', got %q", got)
	}
	if got := *api.lastInput.ContentType; got != "application/json" {
		t.Errorf("expected JSON content type, got %q", got)
	}

	var payload Payload
	if err := json.Unmarshal(api.lastInput.Body, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Text != "hola mundo" {
		t.Errorf("expected text in payload, got %q", payload.Text)
	}
	if payload.Language != PayloadLanguage {
		t.Errorf("expected language %q, got %q", PayloadLanguage, payload.Language)
	}
}

func TestInvokeUnresolvedSkipsNetworkCall(t *testing.T) {
	api := &stubAPI{}
	c := newTestClient(api, "")

	_, err := c.Invoke(context.Background(), "hola", "")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeEndpointUnresolved {
		t.Fatalf("expected ENDPOINT_UNRESOLVED, got %v", err)
	}
	if api.invoked != 0 {
		t.Errorf("expected no network call, got %d", api.invoked)
	}
}

func TestInvokeDecodesJSONResponse(t *testing.T) {
	api := &stubAPI{responseBody: []byte(`{"response":"hola","score":0.9}`)}
	c := newTestClient(api, "ep")

	result, err := c.Invoke(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded map, got %T", result)
	}
	if m["response"] != "hola" {
		t.Errorf("unexpected response: %v", m)
	}
}

func TestInvokeBareTextResponse(t *testing.T) {
	api := &stubAPI{responseBody: []byte("plain model output")}
	c := newTestClient(api, "ep")

	result, err := c.Invoke(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result != "plain model output" {
		t.Errorf("expected bare string passthrough, got %v", result)
	}
}

func TestInvokeErrorPayloadPassesThrough(t *testing.T) {
	// A model returning {"error": ...} with HTTP 200 is a result, not an
	// adapter failure.
	api := &stubAPI{responseBody: []byte(`{"error":"model could not answer"}`)}
	c := newTestClient(api, "ep")

	result, err := c.Invoke(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok || m["error"] != "model could not answer" {
		t.Errorf("expected error payload passthrough, got %v", result)
	}
}

type stubAPIError struct {
	code string
}

func (e *stubAPIError) Error() string                 { return e.code }
func (e *stubAPIError) ErrorCode() string             { return e.code }
func (e *stubAPIError) ErrorMessage() string          { return e.code }
func (e *stubAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultServer }

func TestInvokeErrorTranslation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"validation", &types.ValidationError{}, apperrors.ErrCodeInvalidInput},
		{"model error", &types.ModelError{}, apperrors.ErrCodeExternalService},
		{"generic api error", &stubAPIError{code: "ThrottlingException"}, apperrors.ErrCodeServiceUnavailable},
		{"deadline", context.DeadlineExceeded, apperrors.ErrCodeTimeout},
		{"unknown", stderrors.New("connection reset"), apperrors.ErrCodeServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(&stubAPI{err: tc.err}, "ep")
			_, err := c.Invoke(context.Background(), "text", "")
			appErr, ok := apperrors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, appErr.Code)
			}
		})
	}
}

func TestInvokeAPIErrorCarriesAWSCode(t *testing.T) {
	c := newTestClient(&stubAPI{err: &stubAPIError{code: "ThrottlingException"}}, "ep")

	_, err := c.Invoke(context.Background(), "text", "")
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Details["aws_code"] != "ThrottlingException" {
		t.Errorf("expected aws_code detail, got %v", appErr.Details)
	}
}
