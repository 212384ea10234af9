// Package pipeline sequences diarization, transcription, alignment, and
// merging for one audio file.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/meetscribe/meet-transcriber/internal/diarize"
	"github.com/meetscribe/meet-transcriber/internal/models"
	"github.com/meetscribe/meet-transcriber/internal/stt"
	"github.com/meetscribe/meet-transcriber/internal/transcript"
)

// DurationFunc reports an audio file's duration in seconds.
type DurationFunc func(ctx context.Context, path string) (float64, error)

// Request holds the processing options for one pipeline run.
type Request struct {
	AudioPath         string
	Language          string
	EnableDiarization bool
	MinSpeakers       *int
	MaxSpeakers       *int
	WordTimestamps    bool
}

// Runner orchestrates one synchronous pipeline invocation. The two stages
// carry different failure policies: diarization failure degrades to
// single-speaker output, transcription failure aborts the run.
type Runner struct {
	transcriber stt.Transcriber
	diarizer    diarize.Diarizer
	duration    DurationFunc
}

// NewRunner creates a Runner from its collaborators.
func NewRunner(transcriber stt.Transcriber, diarizer diarize.Diarizer, duration DurationFunc) *Runner {
	return &Runner{
		transcriber: transcriber,
		diarizer:    diarizer,
		duration:    duration,
	}
}

// Process runs the full pipeline: duration probe, diarization (non-fatal),
// transcription (fatal), midpoint alignment, run merging, speaker-set
// computation.
func (r *Runner) Process(ctx context.Context, req Request) (*models.PipelineResult, error) {
	slog.Info("starting pipeline", "audio_path", req.AudioPath)

	duration := 0.0
	if r.duration != nil {
		probed, err := r.duration(ctx, req.AudioPath)
		if err != nil {
			slog.Warn("could not determine audio duration", "audio_path", req.AudioPath, "error", err)
		} else {
			duration = probed
		}
	}

	var turns []models.SpeakerTurn
	if req.EnableDiarization {
		diarized, err := r.diarizer.Diarize(ctx, diarize.Request{
			FilePath:    req.AudioPath,
			MinSpeakers: req.MinSpeakers,
			MaxSpeakers: req.MaxSpeakers,
		})
		if err != nil {
			// Diarization is a quality enhancement, not a correctness
			// requirement: continue with single-speaker output.
			slog.Warn("diarization failed, continuing without speaker labels", "error", err)
		} else {
			turns = diarized
		}
	}

	transcribed, err := r.transcriber.Transcribe(ctx, stt.Request{
		FilePath:       req.AudioPath,
		Language:       req.Language,
		WordTimestamps: req.WordTimestamps,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription: %w", err)
	}

	if duration > 0 && transcribed.Duration > 0 && math.Abs(duration-transcribed.Duration) > 0.5 {
		slog.Debug("duration mismatch between probe and engine",
			"probed", duration, "engine", transcribed.Duration)
	}

	words := transcript.AlignWords(transcribed.Words, turns)
	segments := transcript.MergeWords(words)
	speakers := transcript.Speakers(segments)

	result := &models.PipelineResult{
		Text:            transcribed.Text,
		Language:        resolveLanguage(transcribed.Language, req.Language),
		DurationSeconds: duration,
		Speakers:        speakers,
		Segments:        segments,
		Words:           words,
	}
	if !req.WordTimestamps {
		// Word-level data was not requested: segments keep their bounds and
		// text but drop the word lists entirely (absent, not empty).
		for i := range result.Segments {
			result.Segments[i].Words = nil
		}
		result.Words = nil
	}

	slog.Info("pipeline completed",
		"audio_path", req.AudioPath,
		"duration_seconds", duration,
		"speaker_count", len(speakers),
		"segment_count", len(segments),
		"word_count", len(words),
	)
	return result, nil
}

func resolveLanguage(detected, requested string) string {
	if detected != "" {
		return detected
	}
	return requested
}
