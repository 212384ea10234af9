package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetscribe/meet-transcriber/internal/jobs"
	"github.com/meetscribe/meet-transcriber/internal/jobstore"
	"github.com/meetscribe/meet-transcriber/internal/models"
)

type TranscriptionHandler struct {
	svc *jobs.Service
}

func NewTranscriptionHandler(svc *jobs.Service) *TranscriptionHandler {
	return &TranscriptionHandler{svc: svc}
}

// Create accepts a multipart audio upload plus query parameters, validates
// it, and returns the queued job. Processing happens out-of-band; the
// response carries only the job id and pending status.
func (h *TranscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	params, err := parseParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	job, err := h.svc.Submit(r.Context(), jobs.SubmitRequest{
		Filename: header.Filename,
		File:     file,
		Params:   params,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job.ToCreatedResponse())
}

// Get returns the current status and, for completed jobs, the full result.
func (h *TranscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, ok := parseJobID(w, r)
	if !ok {
		return
	}

	job, err := h.svc.Get(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job.ToResponse())
}

// Download streams a rendered transcript in the requested format with a
// suggested filename of {job_id}.{ext}.
func (h *TranscriptionHandler) Download(w http.ResponseWriter, r *http.Request) {
	jobID, ok := parseJobID(w, r)
	if !ok {
		return
	}

	job, err := h.svc.Get(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "srt"
	}
	speakerLabels := true
	if v := r.URL.Query().Get("speaker_labels"); v != "" {
		speakerLabels, _ = strconv.ParseBool(v)
	}
	textTimestamps := false
	if v := r.URL.Query().Get("timestamps"); v != "" {
		textTimestamps, _ = strconv.ParseBool(v)
	}

	rendering, err := jobs.Render(job, jobs.RenderOptions{
		Format:         format,
		SpeakerLabels:  speakerLabels,
		TextTimestamps: textTimestamps,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", rendering.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendering.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(rendering.Content)
}

func parseJobID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "job_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job ID"})
		return "", false
	}
	return id.String(), true
}

func parseParams(r *http.Request) (models.TranscriptionParams, error) {
	q := r.URL.Query()
	params := models.TranscriptionParams{
		Language:          q.Get("language"),
		EnableDiarization: true,
		WordTimestamps:    true,
	}

	if v := q.Get("min_speakers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, errors.New("invalid min_speakers")
		}
		params.MinSpeakers = &n
	}
	if v := q.Get("max_speakers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, errors.New("invalid max_speakers")
		}
		params.MaxSpeakers = &n
	}
	if v := q.Get("enable_diarization"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return params, errors.New("invalid enable_diarization")
		}
		params.EnableDiarization = enabled
	}
	if v := q.Get("word_timestamps"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return params, errors.New("invalid word_timestamps")
		}
		params.WordTimestamps = enabled
	}
	return params, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	var statusErr *jobs.StatusError
	switch {
	case errors.As(err, &statusErr):
		writeJSON(w, statusErr.Code, map[string]string{"error": statusErr.Message})
	case errors.Is(err, jobstore.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
