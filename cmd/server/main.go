// Command server runs the audio AI HTTP service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/audio-ai-api/internal/artifact"
	"github.com/skillsenselab/audio-ai-api/internal/audio"
	"github.com/skillsenselab/audio-ai-api/internal/config"
	"github.com/skillsenselab/audio-ai-api/internal/inference"
	"github.com/skillsenselab/audio-ai-api/internal/logger"
	"github.com/skillsenselab/audio-ai-api/internal/observability"
	"github.com/skillsenselab/audio-ai-api/internal/pipeline"
	"github.com/skillsenselab/audio-ai-api/internal/server"
	"github.com/skillsenselab/audio-ai-api/internal/server/endpoint"
	"github.com/skillsenselab/audio-ai-api/internal/transcription"

	// Registered transcription providers.
	_ "github.com/skillsenselab/audio-ai-api/internal/transcription/google"
	_ "github.com/skillsenselab/audio-ai-api/internal/transcription/whisper"
)

const (
	serviceName = "Audio AI API"
	version     = "2.0.0"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched if empty)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.GetGlobalLogger().Fatal("failed to load configuration", logger.ErrorFields("config", err))
	}

	log := logger.New(&cfg.Logger, serviceName)
	logger.SetGlobalLogger(log)

	ctx := context.Background()

	tracerProvider, err := observability.InitTracer(ctx, cfg.Tracing, serviceName, version)
	if err != nil {
		log.Warn("tracing disabled", logger.ErrorFields("tracer", err))
	}
	if tracerProvider != nil {
		defer func() {
			_ = tracerProvider.Shutdown(context.Background())
		}()
	}

	artifacts := artifact.NewDiskManager(cfg.TempDir, log)
	normalizer := audio.NewNormalizer(cfg.Audio, artifacts, log)

	speech, err := transcription.New(cfg.Transcription, log)
	if err != nil {
		log.Fatal("failed to construct transcription provider", logger.ErrorFields("transcription", err))
	}

	// The inference handle is built once; a failure here is a valid,
	// permanent condition and the service keeps running without it.
	var infer pipeline.Inference
	if cfg.Inference.Enabled {
		client, err := inference.New(ctx, cfg.Inference.Config, log)
		if err != nil {
			log.Warn("inference backend unavailable", logger.ErrorFields("inference", err))
		} else {
			infer = client
			log.Info("inference client initialized", logger.Fields(
				"region", cfg.Inference.Region,
				"endpoint", cfg.Inference.EndpointName,
			))
		}
	} else {
		log.Info("inference backend disabled by configuration")
	}

	svc := pipeline.New(artifacts, normalizer, speech, infer, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	endpoint.Register(srv.GinEngine(), serviceName, version, svc, speech)

	if err := srv.Start(ctx); err != nil {
		log.Fatal("failed to start server", logger.ErrorFields("server", err))
	}

	log.Info("service ready", logger.Fields(
		"addr", srv.Addr(),
		"version", version,
		"transcription", speech.Name(),
		"sagemaker_available", infer != nil,
	))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := srv.Stop(ctx); err != nil {
		log.Error("shutdown error", logger.ErrorFields("server", err))
	}
}
