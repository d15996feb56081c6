package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"roomAdvisorAi/internal/advisor"
	"roomAdvisorAi/internal/config"
	"roomAdvisorAi/internal/events"
	"roomAdvisorAi/internal/llm"
	"roomAdvisorAi/internal/media"
	"roomAdvisorAi/internal/server"
	"roomAdvisorAi/internal/song"
	"roomAdvisorAi/internal/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Missing .env is fine; plain environment variables work too.
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx := context.Background()

	var store storage.Store
	if cfg.DatabaseURL != "" {
		var err error
		store, err = storage.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init store")
		}
		defer store.Close()
	} else {
		log.Info().Msg("DATABASE_URL not set; quiz and report persistence disabled")
	}

	var uploader media.Uploader
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		var err error
		uploader, err = media.NewUploader(ctx, media.Config{
			Bucket:         cfg.Media.Bucket,
			Region:         cfg.Media.Region,
			Endpoint:       cfg.Media.Endpoint,
			PublicURL:      cfg.Media.PublicURL,
			KeyPrefix:      cfg.Media.KeyPrefix,
			ForcePathStyle: cfg.Media.ForcePathStyle,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init media uploader")
		}
	} else {
		var err error
		uploader, err = media.NewLocalUploader("")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init local media storage")
		}
		log.Info().Msg("media uploader: using local temp storage (S3 config missing)")
	}

	var visionClient llm.Client
	switch {
	case strings.EqualFold(cfg.AI.Provider, "gemini") && cfg.AI.Gemini.APIKey != "":
		visionClient = llm.NewGeminiClient(cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model, 0, nil)
		log.Info().Str("model", cfg.AI.Gemini.Model).Msg("vision model ready: Gemini")
	case cfg.AI.OpenAI.APIKey != "":
		visionClient = llm.NewOpenAIClient(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model)
		log.Info().Str("model", cfg.AI.OpenAI.Model).Msg("vision model ready: OpenAI")
	default:
		log.Warn().Msg("no vision model API key set; analysis endpoints will report 503")
	}

	var songs song.Generator
	switch {
	case strings.EqualFold(cfg.Audio.Provider, "huggingface") && cfg.Audio.HFToken != "":
		songs = song.NewHuggingFace(cfg.Audio.HFToken)
		log.Info().Msg("singing model ready: Bark via HuggingFace Inference")
	case cfg.Audio.ReplicateToken != "":
		songs = song.NewReplicate(cfg.Audio.ReplicateToken)
		log.Info().Msg("singing model ready: Bark via Replicate")
	case cfg.Audio.HFToken != "":
		songs = song.NewHuggingFace(cfg.Audio.HFToken)
		log.Info().Msg("singing model ready: Bark via HuggingFace Inference")
	default:
		log.Warn().Msg("no audio token set; vibe-song endpoint will report 503")
	}

	handler := advisor.Handler{
		LLM:          visionClient,
		Songs:        songs,
		Store:        store,
		Uploader:     uploader,
		Events:       events.NewBroker(),
		OpenAIKeySet: cfg.OpenAIConfigured(),
	}

	srv := server.New(cfg.Port, handler)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Info().Msg("shutting down server...")
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("server close error")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
