package queue

// TypeTranscriptionProcess identifies the task that runs one transcription
// job end to end.
const TypeTranscriptionProcess = "transcription:process"

// TranscriptionProcessPayload keys one unit of work by job id. The job record
// itself lives in the job store; the queue carries only the reference.
type TranscriptionProcessPayload struct {
	JobID string `json:"job_id"`
}
