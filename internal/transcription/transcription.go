// Package transcription defines the transcription provider interface and
// common types for interacting with speech-to-text backends.
package transcription

import (
	"context"
)

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the normalized audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// Language is the expected language of the audio (e.g. "es-ES").
	Language string `json:"language,omitempty"`
}

// Result holds the outcome of a transcription call. Immutable once produced.
type Result struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Language is the language hint that was used.
	Language string `json:"language,omitempty"`
}

// Provider is the interface that transcription backends must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
	// Transcribe sends audio for transcription and returns the result.
	// The call returns fully or fails; there are no partial results.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
