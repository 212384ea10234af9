// Package jobs owns the submission side of the job lifecycle: validation,
// upload persistence, job creation, and enqueueing.
package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meetscribe/meet-transcriber/internal/audio"
	"github.com/meetscribe/meet-transcriber/internal/config"
	"github.com/meetscribe/meet-transcriber/internal/jobstore"
	"github.com/meetscribe/meet-transcriber/internal/models"
	"github.com/meetscribe/meet-transcriber/internal/queue"
)

// StatusError is a client-facing failure with an HTTP status. Validation
// failures surface synchronously through it; no job record is created.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

func badRequest(format string, args ...interface{}) *StatusError {
	return &StatusError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// SubmitRequest is one upload plus its processing parameters.
type SubmitRequest struct {
	Filename string
	File     io.Reader
	Params   models.TranscriptionParams
}

// Service validates submissions, persists uploads and job records, and
// enqueues processing work.
type Service struct {
	store     *jobstore.Store
	queue     *queue.Client
	validate  *validator.Validate
	uploadDir string
	maxBytes  int64
	maxDur    float64
	ffprobe   string
}

// NewService creates a Service. An empty uploadDir falls back to a namespaced
// directory under the system temp dir.
func NewService(store *jobstore.Store, qc *queue.Client, limits config.LimitsConfig, tools config.ToolsConfig) *Service {
	uploadDir := tools.UploadDir
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "meet-transcriber", "uploads")
	}
	return &Service{
		store:     store,
		queue:     qc,
		validate:  validator.New(),
		uploadDir: uploadDir,
		maxBytes:  int64(limits.MaxUploadMB) * 1024 * 1024,
		maxDur:    float64(limits.MaxDurationSeconds),
		ffprobe:   tools.FFprobePath,
	}
}

// Submit validates the upload and parameters, persists the audio under
// {job_id}{ext}, creates a pending job record, and enqueues exactly one unit
// of work. Any validation failure removes the stored file and reports a
// client error; the job is never created.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Job, error) {
	if err := s.validate.Struct(req.Params); err != nil {
		return nil, badRequest("invalid parameters: %v", err)
	}
	if req.Params.MinSpeakers != nil && req.Params.MaxSpeakers != nil &&
		*req.Params.MinSpeakers > *req.Params.MaxSpeakers {
		return nil, badRequest("min_speakers cannot exceed max_speakers")
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !audio.SupportedFormat(ext) {
		return nil, badRequest("unsupported file format %q; supported: %s", ext, audio.FormatList())
	}

	jobID := uuid.New().String()

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	filePath := filepath.Join(s.uploadDir, jobID+ext)

	if err := s.saveUpload(filePath, req.File); err != nil {
		return nil, err
	}

	if err := audio.Validate(ctx, s.ffprobe, filePath, s.maxDur); err != nil {
		os.Remove(filePath)
		return nil, &StatusError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	job := &models.Job{
		ID:        jobID,
		Status:    models.JobStatusPending,
		Progress:  0,
		Message:   "Transcription job queued",
		CreatedAt: time.Now().UTC(),
		Params:    req.Params,
		Filename:  req.Filename,
		FilePath:  filePath,
	}
	if err := s.store.Save(ctx, job); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("persist job: %w", err)
	}

	if err := s.queue.EnqueueTranscription(jobID); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	slog.Info("transcription job created",
		"job_id", jobID,
		"filename", req.Filename,
		"enable_diarization", req.Params.EnableDiarization,
	)
	return job, nil
}

func (s *Service) saveUpload(filePath string, src io.Reader) error {
	dst, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// Copy one byte past the ceiling to detect oversized payloads without
	// buffering the whole upload.
	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		os.Remove(filePath)
		return fmt.Errorf("store upload: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(filePath)
		return &StatusError{
			Code:    http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("file too large: maximum %dMB", s.maxBytes/(1024*1024)),
		}
	}
	return nil
}

// Get loads a job record; jobstore.ErrNotFound propagates for unknown ids.
func (s *Service) Get(ctx context.Context, jobID string) (*models.Job, error) {
	return s.store.Get(ctx, jobID)
}

// Ping reports job store reachability for health checks.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
