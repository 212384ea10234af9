package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/meetscribe/meet-transcriber/internal/engine"
	"github.com/meetscribe/meet-transcriber/internal/models"
)

// WhisperConfig holds configuration for the Whisper backend. BaseURL may
// point at api.openai.com or any OpenAI-compatible server (whisper.cpp,
// LocalAI); local servers need no API key.
type WhisperConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
}

// Whisper transcribes audio through the OpenAI audio transcription API with
// word-level timestamps. The underlying client is created lazily and shared
// process-wide.
type Whisper struct {
	cfg    WhisperConfig
	holder engine.Holder[*openai.Client]
}

// NewWhisper creates a Whisper transcriber with defaults applied.
func NewWhisper(cfg WhisperConfig) *Whisper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &Whisper{cfg: cfg}
}

func (w *Whisper) Name() string { return "whisper" }

// Loaded reports whether the client has been initialized.
func (w *Whisper) Loaded() bool { return w.holder.Loaded() }

// Unload releases the client; the next Transcribe re-initializes it.
func (w *Whisper) Unload() { w.holder.Release(nil) }

// Load initializes the client eagerly instead of on first use.
func (w *Whisper) Load() error {
	_, err := w.client()
	return err
}

func (w *Whisper) client() (*openai.Client, error) {
	return w.holder.Acquire(func() (*openai.Client, error) {
		clientCfg := openai.DefaultConfig(w.cfg.APIKey)
		clientCfg.BaseURL = w.cfg.BaseURL
		return openai.NewClientWithConfig(clientCfg), nil
	})
}

// Transcribe requests a verbose JSON transcription. With word timestamps
// enabled the response carries per-word timings; without them the engine's
// phrase-level segments stand in as coarse words so downstream alignment and
// merging still apply.
func (w *Whisper) Transcribe(ctx context.Context, req Request) (*Result, error) {
	client, err := w.client()
	if err != nil {
		return nil, fmt.Errorf("init whisper client: %w", err)
	}

	audioReq := openai.AudioRequest{
		Model:    w.cfg.Model,
		FilePath: req.FilePath,
		Language: req.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if req.WordTimestamps {
		audioReq.TimestampGranularities = []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		}
	}

	resp, err := client.CreateTranscription(ctx, audioReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	var words []models.Word
	if req.WordTimestamps && len(resp.Words) > 0 {
		words = make([]models.Word, 0, len(resp.Words))
		for _, word := range resp.Words {
			text := strings.TrimSpace(word.Word)
			if text == "" {
				continue
			}
			words = append(words, models.Word{
				Text:  text,
				Start: word.Start,
				End:   word.End,
			})
		}
	} else {
		words = make([]models.Word, 0, len(resp.Segments))
		for _, seg := range resp.Segments {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			words = append(words, models.Word{
				Text:  text,
				Start: seg.Start,
				End:   seg.End,
			})
		}
	}

	return &Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Duration: resp.Duration,
		Words:    words,
	}, nil
}
