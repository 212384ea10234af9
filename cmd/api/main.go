package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetscribe/meet-transcriber/internal/api"
	"github.com/meetscribe/meet-transcriber/internal/config"
	"github.com/meetscribe/meet-transcriber/internal/diarize"
	"github.com/meetscribe/meet-transcriber/internal/jobs"
	"github.com/meetscribe/meet-transcriber/internal/jobstore"
	"github.com/meetscribe/meet-transcriber/internal/queue"
	"github.com/meetscribe/meet-transcriber/internal/stt"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable at startup", "error", err)
	}
	defer rdb.Close()

	store := jobstore.New(rdb, cfg.ResultTTL())
	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	jobsSvc := jobs.NewService(store, queueClient, cfg.Limits, cfg.Tools)

	// The API process never runs inference; the engines are passed in so the
	// health endpoint can report their load state in this process.
	whisper := stt.NewWhisper(stt.WhisperConfig{
		APIKey:  cfg.STT.APIKey,
		BaseURL: cfg.STT.BaseURL,
		Model:   cfg.STT.Model,
	})
	pyannote := diarize.NewPyannote(diarize.PyannoteConfig{
		BaseURL: cfg.Diarization.BaseURL,
		Token:   cfg.Diarization.Token,
	})

	router := api.NewRouter(cfg, jobsSvc, whisper, pyannote)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	whisper.Unload()
	pyannote.Unload()
	slog.Info("server stopped")
}
