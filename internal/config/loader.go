package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// configSearchPaths lists where Load looks for config.yml when no explicit
// path is given.
var configSearchPaths = []string{
	"./config.yml",
	"./config/config.yml",
	"./cmd/server/config.yml",
}

// envBindings maps the environment variables the original deployment used to
// their config keys.
var envBindings = map[string][]string{
	"inference.region":         {"AWS_REGION"},
	"inference.endpoint_name":  {"SAGEMAKER_ENDPOINT_NAME"},
	"inference.enabled":        {"INFERENCE_ENABLED"},
	"transcription.provider":   {"TRANSCRIPTION_PROVIDER"},
	"transcription.language":   {"TRANSCRIPTION_LANGUAGE"},
	"transcription.google.key": {"GOOGLE_SPEECH_KEY"},
	"transcription.whisper.url": {"WHISPER_URL"},
	"server.port":              {"PORT"},
	"logger.level":             {"LOG_LEVEL"},
	"logger.format":            {"LOG_FORMAT"},
	"temp_dir":                 {"TEMP_DIR"},
	"tracing.enabled":          {"TRACING_ENABLED"},
	"tracing.endpoint":         {"OTEL_EXPORTER_OTLP_ENDPOINT"},
}

// Load reads configuration for the service. configFile may be empty, in
// which case standard locations are searched; a missing file is fine, the
// environment alone is a valid configuration source.
func Load(configFile string) (*Config, error) {
	// .env is best-effort, matching the original deployment's dotenv use.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("inference.enabled", true)

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	v.AutomaticEnv()
	for key, envVars := range envBindings {
		args := append([]string{key}, envVars...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	for _, path := range configSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
