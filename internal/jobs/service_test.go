package jobs

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/meetscribe/meet-transcriber/internal/config"
	"github.com/meetscribe/meet-transcriber/internal/models"
)

// testService builds a service whose store/queue are never reached: every
// test here submits input that fails validation first.
func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(nil, nil,
		config.LimitsConfig{MaxUploadMB: 1, MaxDurationSeconds: 3600, ResultTTLHours: 24},
		config.ToolsConfig{UploadDir: t.TempDir()},
	)
}

func TestSubmitRejectsUnsupportedExtension(t *testing.T) {
	svc := testService(t)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		Filename: "notes.txt",
		File:     strings.NewReader("not audio"),
		Params:   models.TranscriptionParams{EnableDiarization: true, WordTimestamps: true},
	})

	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", statusErr.Code)
	}
	if !strings.Contains(statusErr.Message, ".wav") {
		t.Errorf("expected supported formats in message, got %q", statusErr.Message)
	}
}

func TestSubmitRejectsSpeakerCountOutOfRange(t *testing.T) {
	svc := testService(t)
	tooMany := 30

	_, err := svc.Submit(context.Background(), SubmitRequest{
		Filename: "meeting.wav",
		File:     strings.NewReader(""),
		Params:   models.TranscriptionParams{MaxSpeakers: &tooMany},
	})

	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", statusErr.Code)
	}
}

func TestSubmitRejectsInvertedSpeakerBounds(t *testing.T) {
	svc := testService(t)
	min, max := 5, 2

	_, err := svc.Submit(context.Background(), SubmitRequest{
		Filename: "meeting.wav",
		File:     strings.NewReader(""),
		Params:   models.TranscriptionParams{MinSpeakers: &min, MaxSpeakers: &max},
	})
	if err == nil {
		t.Fatal("expected error when min_speakers > max_speakers")
	}
	if !strings.Contains(err.Error(), "min_speakers") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestSubmitRejectsOversizedUpload(t *testing.T) {
	svc := testService(t)

	// 1MB ceiling; send just over it.
	oversized := strings.NewReader(strings.Repeat("a", 1024*1024+1))
	_, err := svc.Submit(context.Background(), SubmitRequest{
		Filename: "big.wav",
		File:     oversized,
		Params:   models.TranscriptionParams{},
	})

	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", statusErr.Code)
	}
}
