package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meetscribe/meet-transcriber/internal/audio"
	"github.com/meetscribe/meet-transcriber/internal/models"
	"github.com/meetscribe/meet-transcriber/internal/pipeline"
	"github.com/meetscribe/meet-transcriber/internal/queue"
)

// JobStore is the slice of the job store the worker needs.
type JobStore interface {
	Get(ctx context.Context, jobID string) (*models.Job, error)
	Save(ctx context.Context, job *models.Job) error
	UpdateProgress(ctx context.Context, jobID string, progress float64, message string) error
}

// Processor runs one full pipeline invocation.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*models.PipelineResult, error)
}

// TranscriptionWorker executes one job per task delivery: pending ->
// processing -> completed/failed, with progress checkpoints persisted at
// fixed points so polling reflects live progress.
type TranscriptionWorker struct {
	store      JobStore
	runner     Processor
	preprocess func(ctx context.Context, path string) (string, error)
}

// NewTranscriptionWorker creates a worker from its collaborators.
func NewTranscriptionWorker(store JobStore, runner Processor, ffmpegPath string) *TranscriptionWorker {
	return &TranscriptionWorker{
		store:  store,
		runner: runner,
		preprocess: func(ctx context.Context, path string) (string, error) {
			return audio.Preprocess(ctx, ffmpegPath, path)
		},
	}
}

// ProcessTask runs one transcription job. A missing job record or missing
// input reference is fatal and left to the queue's retry policy. Temporary
// derived audio is removed on every exit path.
func (w *TranscriptionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranscriptionProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	jobID := payload.JobID

	var tempFiles []string
	defer func() { audio.CleanupTemp(tempFiles) }()

	slog.Info("starting transcription task", "job_id", jobID)

	job, err := w.store.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.FilePath == "" {
		err := fmt.Errorf("job %s has no input file", jobID)
		w.fail(ctx, jobID, err)
		return err
	}

	job.Status = models.JobStatusProcessing
	job.Progress = 0
	job.Message = "Processing started"
	if err := w.store.Save(ctx, job); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	w.progress(ctx, jobID, 10, "Preprocessing audio")
	processedPath, err := w.preprocess(ctx, job.FilePath)
	if err != nil {
		w.fail(ctx, jobID, err)
		return err
	}
	tempFiles = append(tempFiles, processedPath)

	w.progress(ctx, jobID, 20, "Running diarization and transcription")
	result, err := w.runner.Process(ctx, pipeline.Request{
		AudioPath:         processedPath,
		Language:          job.Params.Language,
		EnableDiarization: job.Params.EnableDiarization,
		MinSpeakers:       job.Params.MinSpeakers,
		MaxSpeakers:       job.Params.MaxSpeakers,
		WordTimestamps:    job.Params.WordTimestamps,
	})
	if err != nil {
		w.fail(ctx, jobID, err)
		return err
	}

	w.progress(ctx, jobID, 90, "Finalizing results")

	// Reload before the terminal write so the completion carries the latest
	// persisted fields.
	job, err = w.store.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("reload job %s: %w", jobID, err)
	}
	now := time.Now().UTC()
	job.Status = models.JobStatusCompleted
	job.Progress = 100
	job.Message = "Transcription completed"
	job.CompletedAt = &now
	job.Result = result
	if err := w.store.Save(ctx, job); err != nil {
		return fmt.Errorf("store result: %w", err)
	}

	slog.Info("transcription task completed",
		"job_id", jobID,
		"duration_seconds", result.DurationSeconds,
		"speaker_count", len(result.Speakers),
		"segment_count", len(result.Segments),
	)
	return nil
}

func (w *TranscriptionWorker) progress(ctx context.Context, jobID string, pct float64, message string) {
	if err := w.store.UpdateProgress(ctx, jobID, pct, message); err != nil {
		slog.Warn("failed to persist progress", "job_id", jobID, "progress", pct, "error", err)
	}
}

// fail reloads the job (it may have been mutated since this execution last
// saw it) and records the terminal failed state with the error message.
func (w *TranscriptionWorker) fail(ctx context.Context, jobID string, cause error) {
	slog.Error("transcription task failed", "job_id", jobID, "error", cause)

	job, err := w.store.Get(ctx, jobID)
	if err != nil {
		slog.Error("failed to reload job for failure record", "job_id", jobID, "error", err)
		return
	}
	job.Status = models.JobStatusFailed
	job.Message = "Transcription failed"
	job.Error = cause.Error()
	if err := w.store.Save(ctx, job); err != nil {
		slog.Error("failed to persist failure record", "job_id", jobID, "error", err)
	}
}
