package diarize

import (
	"context"

	"github.com/meetscribe/meet-transcriber/internal/models"
)

// Request holds the parameters for one diarization call. Speaker counts are
// optional hints in [1,20]; nil leaves the engine to decide.
type Request struct {
	FilePath    string
	MinSpeakers *int
	MaxSpeakers *int
}

// Diarizer is the interface for speaker-diarization backends. Implementations
// return turns sorted by start time; turns may overlap and leave gaps.
type Diarizer interface {
	Diarize(ctx context.Context, req Request) ([]models.SpeakerTurn, error)
	Name() string
}
