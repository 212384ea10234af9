package stt

import (
	"context"

	"github.com/meetscribe/meet-transcriber/internal/models"
)

// Request holds the parameters for one transcription call.
type Request struct {
	FilePath       string
	Language       string
	WordTimestamps bool
}

// Result is the transcription output: full text, detected language, the
// engine's own duration estimate, and timestamped words.
type Result struct {
	Text     string
	Language string
	Duration float64
	Words    []models.Word
}

// Transcriber is the interface for speech-to-text backends.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
	Name() string
}
