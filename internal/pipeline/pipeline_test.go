package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/meetscribe/meet-transcriber/internal/diarize"
	"github.com/meetscribe/meet-transcriber/internal/models"
	"github.com/meetscribe/meet-transcriber/internal/stt"
	"github.com/meetscribe/meet-transcriber/internal/transcript"
)

type fakeTranscriber struct {
	result *stt.Result
	err    error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeTranscriber) Name() string { return "fake-stt" }

type fakeDiarizer struct {
	turns []models.SpeakerTurn
	err   error
	calls int
}

func (f *fakeDiarizer) Diarize(ctx context.Context, req diarize.Request) ([]models.SpeakerTurn, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.turns, nil
}

func (f *fakeDiarizer) Name() string { return "fake-diarizer" }

func twoSpeakerResult() *stt.Result {
	return &stt.Result{
		Text:     "hello there general",
		Language: "en",
		Duration: 3.0,
		Words: []models.Word{
			{Text: "hello", Start: 0.0, End: 0.5},
			{Text: "there", Start: 0.5, End: 1.0},
			{Text: "general", Start: 2.0, End: 2.5},
		},
	}
}

func staticDuration(d float64) DurationFunc {
	return func(ctx context.Context, path string) (float64, error) { return d, nil }
}

func TestProcessWithDiarization(t *testing.T) {
	transcriber := &fakeTranscriber{result: twoSpeakerResult()}
	diarizer := &fakeDiarizer{turns: []models.SpeakerTurn{
		{Speaker: "SPEAKER_00", Start: 0.0, End: 1.5},
		{Speaker: "SPEAKER_01", Start: 1.5, End: 3.0},
	}}
	runner := NewRunner(transcriber, diarizer, staticDuration(3.0))

	result, err := runner.Process(context.Background(), Request{
		AudioPath:         "test.wav",
		EnableDiarization: true,
		WordTimestamps:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DurationSeconds != 3.0 {
		t.Errorf("expected duration 3.0, got %v", result.DurationSeconds)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	expected := []string{"SPEAKER_00", "SPEAKER_01"}
	if len(result.Speakers) != 2 || result.Speakers[0] != expected[0] || result.Speakers[1] != expected[1] {
		t.Errorf("expected sorted speakers %v, got %v", expected, result.Speakers)
	}
	if result.Text != "hello there general" {
		t.Errorf("unexpected text: %q", result.Text)
	}
}

func TestProcessDiarizationFailureDegradesToSingleSpeaker(t *testing.T) {
	transcriber := &fakeTranscriber{result: twoSpeakerResult()}
	diarizer := &fakeDiarizer{err: errors.New("pipeline crashed")}
	runner := NewRunner(transcriber, diarizer, staticDuration(3.0))

	result, err := runner.Process(context.Background(), Request{
		AudioPath:         "test.wav",
		EnableDiarization: true,
		WordTimestamps:    true,
	})
	if err != nil {
		t.Fatalf("diarization failure must not abort the pipeline: %v", err)
	}

	for i, w := range result.Words {
		if w.Speaker != transcript.FallbackSpeaker {
			t.Errorf("word %d: expected fallback speaker, got %q", i, w.Speaker)
		}
	}
	if len(result.Speakers) != 1 || result.Speakers[0] != transcript.FallbackSpeaker {
		t.Errorf("expected single fallback speaker, got %v", result.Speakers)
	}
}

func TestProcessTranscriptionFailureIsFatal(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New("model exploded")}
	diarizer := &fakeDiarizer{}
	runner := NewRunner(transcriber, diarizer, staticDuration(3.0))

	_, err := runner.Process(context.Background(), Request{
		AudioPath:         "test.wav",
		EnableDiarization: true,
		WordTimestamps:    true,
	})
	if err == nil {
		t.Fatal("expected transcription failure to propagate")
	}
}

func TestProcessDiarizationDisabledSkipsEngine(t *testing.T) {
	transcriber := &fakeTranscriber{result: twoSpeakerResult()}
	diarizer := &fakeDiarizer{turns: []models.SpeakerTurn{
		{Speaker: "SPEAKER_05", Start: 0, End: 3},
	}}
	runner := NewRunner(transcriber, diarizer, staticDuration(3.0))

	result, err := runner.Process(context.Background(), Request{
		AudioPath:         "test.wav",
		EnableDiarization: false,
		WordTimestamps:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diarizer.calls != 0 {
		t.Errorf("expected diarizer not to be called, got %d calls", diarizer.calls)
	}
	if len(result.Speakers) != 1 || result.Speakers[0] != transcript.FallbackSpeaker {
		t.Errorf("expected fallback speaker, got %v", result.Speakers)
	}
}

func TestProcessDurationProbeFailureReportsZero(t *testing.T) {
	transcriber := &fakeTranscriber{result: twoSpeakerResult()}
	runner := NewRunner(transcriber, &fakeDiarizer{}, func(ctx context.Context, path string) (float64, error) {
		return 0, errors.New("unreadable")
	})

	result, err := runner.Process(context.Background(), Request{
		AudioPath:      "test.wav",
		WordTimestamps: true,
	})
	if err != nil {
		t.Fatalf("duration probe failure must not be fatal: %v", err)
	}
	if result.DurationSeconds != 0 {
		t.Errorf("expected duration 0.0, got %v", result.DurationSeconds)
	}
}

func TestProcessWithoutWordTimestampsDropsWordLists(t *testing.T) {
	transcriber := &fakeTranscriber{result: twoSpeakerResult()}
	runner := NewRunner(transcriber, &fakeDiarizer{}, staticDuration(3.0))

	result, err := runner.Process(context.Background(), Request{
		AudioPath:      "test.wav",
		WordTimestamps: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Words != nil {
		t.Error("expected top-level words to be absent")
	}
	if len(result.Segments) == 0 {
		t.Fatal("expected segments even without word timestamps")
	}
	for i, seg := range result.Segments {
		if seg.Words != nil {
			t.Errorf("segment %d: expected absent word list", i)
		}
	}
}
