package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/meetscribe/meet-transcriber/internal/audio"
	"github.com/meetscribe/meet-transcriber/internal/config"
	"github.com/meetscribe/meet-transcriber/internal/diarize"
	"github.com/meetscribe/meet-transcriber/internal/jobstore"
	"github.com/meetscribe/meet-transcriber/internal/pipeline"
	"github.com/meetscribe/meet-transcriber/internal/queue"
	"github.com/meetscribe/meet-transcriber/internal/queue/workers"
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

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := jobstore.New(rdb, cfg.ResultTTL())

	whisper := stt.NewWhisper(stt.WhisperConfig{
		APIKey:  cfg.STT.APIKey,
		BaseURL: cfg.STT.BaseURL,
		Model:   cfg.STT.Model,
	})
	pyannote := diarize.NewPyannote(diarize.PyannoteConfig{
		BaseURL: cfg.Diarization.BaseURL,
		Token:   cfg.Diarization.Token,
	})

	ffprobe := cfg.Tools.FFprobePath
	runner := pipeline.NewRunner(whisper, pyannote, func(ctx context.Context, path string) (float64, error) {
		return audio.Duration(ctx, ffprobe, path)
	})

	worker := workers.NewTranscriptionWorker(store, runner, cfg.Tools.FFmpegPath)

	if cfg.Worker.PreloadModels {
		slog.Info("warming inference engines")
		if err := whisper.Load(); err != nil {
			slog.Warn("whisper warmup failed", "error", err)
		}
		if err := pyannote.Load(); err != nil {
			slog.Warn("diarization warmup failed", "error", err)
		}
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Inference is GPU/CPU-heavy; keep concurrency low.
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()
	registry.Register(queue.TypeTranscriptionProcess, asynq.HandlerFunc(worker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}

	whisper.Unload()
	pyannote.Unload()
	slog.Info("worker stopped, engines released")
}
