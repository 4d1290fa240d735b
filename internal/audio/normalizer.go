// Package audio converts arbitrary uploaded audio into the canonical PCM
// format the transcription backends require: mono, 16 kHz, signed 16-bit WAV.
package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"

	"github.com/go-audio/wav"

	"github.com/skillsenselab/audio-ai-api/internal/artifact"
	apperrors "github.com/skillsenselab/audio-ai-api/internal/errors"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
)

const (
	// SampleRate is the canonical sample rate required by the speech backends.
	SampleRate = 16000
	// Channels is the canonical channel count.
	Channels = 1
	// BitDepth is the canonical sample width in bits.
	BitDepth = 16
)

// Config holds normalizer configuration.
type Config struct {
	// FFmpegPath is the transcoder binary. Defaults to "ffmpeg" on PATH.
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
}

// Normalizer decodes any container/codec ffmpeg supports and re-encodes to
// canonical PCM. The result is written to a fresh artifact because the
// transcription providers operate on a file handle.
type Normalizer struct {
	cfg       Config
	artifacts artifact.Manager
	log       *logger.Logger
}

// NewNormalizer creates a normalizer that writes output through the given
// artifact manager.
func NewNormalizer(cfg Config, artifacts artifact.Manager, log *logger.Logger) *Normalizer {
	cfg.ApplyDefaults()
	return &Normalizer{
		cfg:       cfg,
		artifacts: artifacts,
		log:       log.WithComponent("normalizer"),
	}
}

// Normalize transcodes the file at inputPath into a new artifact containing
// mono 16 kHz s16le WAV. The caller owns the returned artifact and must
// release it; on error no artifact is leaked.
func (n *Normalizer) Normalize(ctx context.Context, inputPath string) (*artifact.Artifact, error) {
	out, err := n.artifacts.Acquire(".wav")
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	args := []string{
		"-i", inputPath,
		"-y",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		out.Path(),
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, n.cfg.FFmpegPath, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		n.artifacts.Release(out)

		var execErr *exec.Error
		if errors.As(err, &execErr) {
			// The binary itself is missing: a deployment problem, not bad input.
			return nil, apperrors.NotConfigured("audio transcoder").WithCause(err)
		}
		n.log.Debug("ffmpeg rejected input", logger.Fields("stderr", stderr.String()))
		return nil, apperrors.UnsupportedFormat("the decoder rejected the file").WithCause(err)
	}

	if err := verifyWAV(out.Path()); err != nil {
		n.artifacts.Release(out)
		return nil, apperrors.UnsupportedFormat("the decoded output is not valid audio").WithCause(err)
	}

	return out, nil
}

// verifyWAV confirms the transcoded file parses as a WAV container.
func verifyWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return errors.New("invalid wav output")
	}
	return nil
}
