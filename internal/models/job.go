package models

import "time"

// JobStatus is the lifecycle state of a transcription job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// TranscriptionParams are the caller-supplied processing options for one job.
type TranscriptionParams struct {
	Language          string `json:"language,omitempty" validate:"omitempty,max=16"`
	MinSpeakers       *int   `json:"min_speakers,omitempty" validate:"omitempty,min=1,max=20"`
	MaxSpeakers       *int   `json:"max_speakers,omitempty" validate:"omitempty,min=1,max=20"`
	EnableDiarization bool   `json:"enable_diarization"`
	WordTimestamps    bool   `json:"word_timestamps"`
}

// Job is the persisted record for one submitted audio file. The submitting
// request creates it in pending; exactly one worker execution mutates
// status/progress/result/error from then on.
type Job struct {
	ID          string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	Progress    float64    `json:"progress"`
	Message     string     `json:"message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	Params TranscriptionParams `json:"params"`

	Filename string `json:"filename,omitempty"`
	FilePath string `json:"file_path,omitempty"`

	Result *PipelineResult `json:"result,omitempty"`
}

// JobCreatedResponse is returned by the submission endpoint.
type JobCreatedResponse struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptionResponse combines job status with result fields. The result
// fields are populated only for completed jobs; a failed job exposes its error
// string and nothing else.
type TranscriptionResponse struct {
	JobID       string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	Progress    float64    `json:"progress"`
	Message     string     `json:"message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	DurationSeconds *float64            `json:"duration_seconds,omitempty"`
	Language        string              `json:"language,omitempty"`
	Speakers        []string            `json:"speakers,omitempty"`
	Segments        []TranscriptSegment `json:"segments,omitempty"`
}

// ToCreatedResponse projects a freshly submitted job.
func (j *Job) ToCreatedResponse() JobCreatedResponse {
	return JobCreatedResponse{
		JobID:     j.ID,
		Status:    j.Status,
		Message:   "Transcription job queued",
		CreatedAt: j.CreatedAt,
	}
}

// ToResponse projects the job into the status API shape. Result fields are
// attached only when the job completed and a result was stored.
func (j *Job) ToResponse() TranscriptionResponse {
	resp := TranscriptionResponse{
		JobID:       j.ID,
		Status:      j.Status,
		Progress:    j.Progress,
		Message:     j.Message,
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.CompletedAt,
		Error:       j.Error,
	}
	if j.Status == JobStatusCompleted && j.Result != nil {
		duration := j.Result.DurationSeconds
		resp.DurationSeconds = &duration
		resp.Language = j.Result.Language
		resp.Speakers = j.Result.Speakers
		resp.Segments = j.Result.Segments
	}
	return resp
}
