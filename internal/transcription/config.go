package transcription

// Provider name constants for supported speech backends.
const (
	ProviderGoogle  = "google"
	ProviderWhisper = "whisper"
)

// Default configuration values.
const (
	DefaultProvider = ProviderGoogle
	DefaultLanguage = "es-ES"
)

// Config holds transcription configuration for all providers.
type Config struct {
	// Provider selects the speech backend: "google" or "whisper".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Language is the recognition language hint.
	Language string `yaml:"language" mapstructure:"language"`

	// TimeoutSeconds bounds a single backend call. 0 uses the provider default.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`

	// Google configures the Google Web Speech backend.
	Google GoogleConfig `yaml:"google" mapstructure:"google"`

	// Whisper configures the whisper sidecar backend.
	Whisper WhisperConfig `yaml:"whisper" mapstructure:"whisper"`
}

// GoogleConfig holds settings for the Google Web Speech API.
type GoogleConfig struct {
	// URL is the recognition endpoint.
	URL string `yaml:"url" mapstructure:"url"`
	// Key is the Web Speech API key.
	Key string `yaml:"key" mapstructure:"key"`
}

// WhisperConfig holds settings for a faster-whisper style HTTP sidecar.
type WhisperConfig struct {
	// URL is the sidecar base URL.
	URL string `yaml:"url" mapstructure:"url"`
	// Model selects the transcription model.
	Model string `yaml:"model" mapstructure:"model"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
}
