package jobs

import (
	"fmt"
	"net/http"

	"github.com/meetscribe/meet-transcriber/internal/models"
	"github.com/meetscribe/meet-transcriber/internal/transcript"
)

// Rendering is a download-ready representation of a finished transcript.
type Rendering struct {
	Content     []byte
	ContentType string
	Filename    string
}

// RenderOptions tune the download output.
type RenderOptions struct {
	Format         string // "srt", "vtt", "txt", "json"
	SpeakerLabels  bool
	TextTimestamps bool // [MM:SS] prefixes in the txt format
}

// Render produces the requested subtitle/text rendering of a completed job.
// Jobs that are not completed, or completed without a stored result, yield a
// client error.
func Render(job *models.Job, opts RenderOptions) (*Rendering, error) {
	if job.Status != models.JobStatusCompleted {
		return nil, &StatusError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("job not completed; current status: %s", job.Status),
		}
	}
	if job.Result == nil {
		return nil, &StatusError{Code: http.StatusBadRequest, Message: "no transcription results available"}
	}

	res := job.Result
	switch opts.Format {
	case "srt":
		return &Rendering{
			Content:     []byte(transcript.FormatSRT(res.Segments, opts.SpeakerLabels)),
			ContentType: "text/plain; charset=utf-8",
			Filename:    job.ID + ".srt",
		}, nil
	case "vtt":
		return &Rendering{
			Content:     []byte(transcript.FormatVTT(res.Segments, opts.SpeakerLabels)),
			ContentType: "text/vtt; charset=utf-8",
			Filename:    job.ID + ".vtt",
		}, nil
	case "txt":
		return &Rendering{
			Content:     []byte(transcript.FormatText(res.Segments, opts.TextTimestamps)),
			ContentType: "text/plain; charset=utf-8",
			Filename:    job.ID + ".txt",
		}, nil
	case "json":
		data, err := transcript.FormatJSON(res.Segments, res.DurationSeconds, res.Language, res.Speakers)
		if err != nil {
			return nil, err
		}
		return &Rendering{
			Content:     data,
			ContentType: "application/json",
			Filename:    job.ID + ".json",
		}, nil
	default:
		return nil, &StatusError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("unsupported format %q; supported: srt, vtt, txt, json", opts.Format),
		}
	}
}
