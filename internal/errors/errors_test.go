package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := New(ErrCodeInternal, "something broke", http.StatusInternalServerError)
	if got := err.Error(); got != "INTERNAL_ERROR: something broke" {
		t.Errorf("unexpected error string: %q", got)
	}

	err = err.WithCause(stderrors.New("disk full"))
	if got := err.Error(); !strings.Contains(got, "disk full") {
		t.Errorf("expected cause in error string, got %q", got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NoSpeechDetected()
	wrapped := fmt.Errorf("handler: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed on wrapped error")
	}
	if got.Code != ErrCodeNoSpeechDetected {
		t.Errorf("expected NO_SPEECH_DETECTED, got %s", got.Code)
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("expected AsAppError to fail on a plain error")
	}
}

func TestConstructorMapping(t *testing.T) {
	cases := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"unsupported format", UnsupportedFormat("not a wav"), ErrCodeUnsupportedFormat, http.StatusBadRequest, false},
		{"no speech", NoSpeechDetected(), ErrCodeNoSpeechDetected, http.StatusBadRequest, false},
		{"endpoint unresolved", EndpointUnresolved(), ErrCodeEndpointUnresolved, http.StatusBadRequest, false},
		{"not configured", NotConfigured("inference backend"), ErrCodeNotConfigured, http.StatusServiceUnavailable, false},
		{"service unavailable", ServiceUnavailable("speech backend"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"timeout", Timeout("transcribe"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"invalid input", InvalidInput("audio_file", "must be audio"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"missing field", MissingField("text"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"internal", Internal(stderrors.New("boom")), ErrCodeInternal, http.StatusInternalServerError, false},
		{"external service", ExternalServiceError("model", stderrors.New("boom")), ErrCodeExternalService, http.StatusBadGateway, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestIsRetryableCode(t *testing.T) {
	if !IsRetryableCode(ErrCodeServiceUnavailable) {
		t.Error("SERVICE_UNAVAILABLE should be retryable")
	}
	if !IsRetryableCode(ErrCodeTimeout) {
		t.Error("TIMEOUT should be retryable")
	}
	if IsRetryableCode(ErrCodeInternal) {
		t.Error("INTERNAL_ERROR should not be retryable")
	}
	if IsRetryableCode(ErrCodeInvalidInput) {
		t.Error("INVALID_INPUT should not be retryable")
	}
}

func TestWithDetail(t *testing.T) {
	err := EndpointUnresolved().WithDetail("requested", "my-endpoint")
	if err.Details["requested"] != "my-endpoint" {
		t.Errorf("expected detail to be set, got %v", err.Details)
	}
}

func TestToResponse(t *testing.T) {
	err := NotConfigured("inference backend")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeNotConfigured {
		t.Errorf("expected NOT_CONFIGURED, got %s", resp.Error.Code)
	}
	if resp.Error.Message == "" {
		t.Error("expected a message")
	}
	if resp.Error.Details["dependency"] != "inference backend" {
		t.Errorf("expected dependency detail, got %v", resp.Error.Details)
	}
}
