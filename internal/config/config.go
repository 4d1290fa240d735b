// Package config loads service configuration from config.yml, a .env file,
// and the process environment, in that order of precedence (later wins).
package config

import (
	"fmt"

	"github.com/skillsenselab/audio-ai-api/internal/audio"
	"github.com/skillsenselab/audio-ai-api/internal/inference"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
	"github.com/skillsenselab/audio-ai-api/internal/observability"
	"github.com/skillsenselab/audio-ai-api/internal/server"
	"github.com/skillsenselab/audio-ai-api/internal/transcription"
)

// Config is the root configuration for the service.
type Config struct {
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Logger        logger.Config        `yaml:"logger" mapstructure:"logger"`
	Audio         audio.Config         `yaml:"audio" mapstructure:"audio"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Inference     InferenceConfig      `yaml:"inference" mapstructure:"inference"`
	Tracing       observability.Config `yaml:"tracing" mapstructure:"tracing"`

	// TempDir is the directory for request-scoped artifacts. Empty means the
	// system temp directory.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// InferenceConfig wraps the inference client settings with an enable switch.
type InferenceConfig struct {
	inference.Config `yaml:",inline" mapstructure:",squash"`

	// Enabled controls whether an inference client is constructed at startup.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults sets sensible default values across all sections.
func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Logger.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Inference.Config.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	switch c.Transcription.Provider {
	case transcription.ProviderGoogle, transcription.ProviderWhisper:
	default:
		return fmt.Errorf("transcription.provider must be %q or %q (got: %q)",
			transcription.ProviderGoogle, transcription.ProviderWhisper, c.Transcription.Provider)
	}
	return nil
}
