package workers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/meetscribe/meet-transcriber/internal/jobstore"
	"github.com/meetscribe/meet-transcriber/internal/models"
	"github.com/meetscribe/meet-transcriber/internal/pipeline"
	"github.com/meetscribe/meet-transcriber/internal/queue"
)

// fakeStore mimics the redis-backed store: reads return an independent copy,
// so mutations only become visible through Save.
type fakeStore struct {
	mu          sync.Mutex
	jobs        map[string]models.Job
	checkpoints []float64
}

func newFakeStore(jobs ...*models.Job) *fakeStore {
	s := &fakeStore{jobs: make(map[string]models.Job)}
	for _, j := range jobs {
		s.jobs[j.ID] = *j
	}
	return s
}

func (s *fakeStore) Get(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, jobstore.ErrNotFound
	}
	cp := job
	return &cp, nil
}

func (s *fakeStore) Save(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *fakeStore) UpdateProgress(ctx context.Context, jobID string, progress float64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return jobstore.ErrNotFound
	}
	job.Progress = progress
	job.Message = message
	s.jobs[jobID] = job
	s.checkpoints = append(s.checkpoints, progress)
	return nil
}

type fakeRunner struct {
	result *models.PipelineResult
	err    error
}

func (f *fakeRunner) Process(ctx context.Context, req pipeline.Request) (*models.PipelineResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func pendingJob(t *testing.T) *models.Job {
	t.Helper()
	input := filepath.Join(t.TempDir(), "upload.wav")
	if err := os.WriteFile(input, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write input file: %v", err)
	}
	return &models.Job{
		ID:       "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		Status:   models.JobStatusPending,
		Filename: "upload.wav",
		FilePath: input,
		Params:   models.TranscriptionParams{EnableDiarization: true, WordTimestamps: true},
	}
}

func processTask(t *testing.T, jobID string) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(queue.TranscriptionProcessPayload{JobID: jobID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return asynq.NewTask(queue.TypeTranscriptionProcess, data)
}

// tempFilePreprocess creates a real derived file so cleanup can be observed.
func tempFilePreprocess(t *testing.T) (func(ctx context.Context, path string) (string, error), *string) {
	t.Helper()
	derived := new(string)
	fn := func(ctx context.Context, path string) (string, error) {
		out := filepath.Join(t.TempDir(), "processed.wav")
		if err := os.WriteFile(out, []byte("RIFF"), 0o644); err != nil {
			return "", err
		}
		*derived = out
		return out, nil
	}
	return fn, derived
}

func TestProcessTaskCompletesJob(t *testing.T) {
	job := pendingJob(t)
	store := newFakeStore(job)
	preprocess, derived := tempFilePreprocess(t)

	worker := &TranscriptionWorker{
		store: store,
		runner: &fakeRunner{result: &models.PipelineResult{
			Text:            "hello",
			DurationSeconds: 1.0,
			Speakers:        []string{"SPEAKER_00"},
			Segments:        []models.TranscriptSegment{{Speaker: "SPEAKER_00", Start: 0, End: 1, Text: "hello"}},
		}},
		preprocess: preprocess,
	}

	if err := worker.ProcessTask(context.Background(), processTask(t, job.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("load stored job: %v", err)
	}
	if stored.Status != models.JobStatusCompleted {
		t.Errorf("expected completed, got %s", stored.Status)
	}
	if stored.Progress != 100 {
		t.Errorf("expected progress 100, got %v", stored.Progress)
	}
	if stored.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if stored.Result == nil || len(stored.Result.Segments) != 1 {
		t.Errorf("expected stored result with one segment: %+v", stored.Result)
	}

	expected := []float64{10, 20, 90}
	if len(store.checkpoints) != len(expected) {
		t.Fatalf("expected checkpoints %v, got %v", expected, store.checkpoints)
	}
	for i, pct := range expected {
		if store.checkpoints[i] != pct {
			t.Errorf("checkpoint %d: expected %v, got %v", i, pct, store.checkpoints[i])
		}
	}

	if _, err := os.Stat(*derived); !os.IsNotExist(err) {
		t.Error("expected derived audio to be removed after completion")
	}
}

func TestProcessTaskTranscriptionFailureMarksFailed(t *testing.T) {
	job := pendingJob(t)
	store := newFakeStore(job)
	preprocess, derived := tempFilePreprocess(t)

	worker := &TranscriptionWorker{
		store:      store,
		runner:     &fakeRunner{err: errors.New("model exploded")},
		preprocess: preprocess,
	}

	if err := worker.ProcessTask(context.Background(), processTask(t, job.ID)); err == nil {
		t.Fatal("expected pipeline failure to propagate for queue retry")
	}

	stored, err := store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("load stored job: %v", err)
	}
	if stored.Status != models.JobStatusFailed {
		t.Errorf("expected failed, got %s", stored.Status)
	}
	if stored.Error == "" {
		t.Error("expected a non-empty error message")
	}
	if stored.Result != nil {
		t.Error("failed job must not carry a result")
	}
	if stored.CompletedAt != nil {
		t.Error("failed job must not carry completed_at")
	}

	if _, err := os.Stat(*derived); !os.IsNotExist(err) {
		t.Error("expected derived audio to be removed on the failure path")
	}
}

func TestProcessTaskPreprocessFailureMarksFailed(t *testing.T) {
	job := pendingJob(t)
	store := newFakeStore(job)

	worker := &TranscriptionWorker{
		store:  store,
		runner: &fakeRunner{},
		preprocess: func(ctx context.Context, path string) (string, error) {
			return "", errors.New("ffmpeg exited 1")
		},
	}

	if err := worker.ProcessTask(context.Background(), processTask(t, job.ID)); err == nil {
		t.Fatal("expected preprocess failure to propagate")
	}

	stored, _ := store.Get(context.Background(), job.ID)
	if stored.Status != models.JobStatusFailed {
		t.Errorf("expected failed, got %s", stored.Status)
	}
}

func TestProcessTaskMissingJobReturnsError(t *testing.T) {
	store := newFakeStore()
	worker := &TranscriptionWorker{store: store, runner: &fakeRunner{}}

	err := worker.ProcessTask(context.Background(), processTask(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479"))
	if err == nil {
		t.Fatal("expected an error for an unknown job id")
	}
	if !errors.Is(err, jobstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound in chain, got %v", err)
	}
}

func TestProcessTaskMissingInputMarksFailed(t *testing.T) {
	job := pendingJob(t)
	job.FilePath = ""
	store := newFakeStore(job)
	worker := &TranscriptionWorker{store: store, runner: &fakeRunner{}}

	if err := worker.ProcessTask(context.Background(), processTask(t, job.ID)); err == nil {
		t.Fatal("expected an error for a job without an input reference")
	}

	stored, _ := store.Get(context.Background(), job.ID)
	if stored.Status != models.JobStatusFailed {
		t.Errorf("expected failed, got %s", stored.Status)
	}
	if stored.Error == "" {
		t.Error("expected a non-empty error message")
	}
}
