package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/meetscribe/meet-transcriber/internal/engine"
	"github.com/meetscribe/meet-transcriber/internal/models"
)

// PyannoteConfig holds configuration for a pyannote diarization sidecar
// exposing a multipart /diarize endpoint.
type PyannoteConfig struct {
	BaseURL string // default: "http://localhost:8179"
	Token   string // optional bearer token
}

// Pyannote performs speaker diarization through an HTTP sidecar service.
// The HTTP client is created lazily and shared process-wide.
type Pyannote struct {
	cfg    PyannoteConfig
	holder engine.Holder[*http.Client]
}

// NewPyannote creates a Pyannote diarizer with defaults applied.
func NewPyannote(cfg PyannoteConfig) *Pyannote {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8179"
	}
	return &Pyannote{cfg: cfg}
}

func (p *Pyannote) Name() string { return "pyannote" }

// Loaded reports whether the client has been initialized.
func (p *Pyannote) Loaded() bool { return p.holder.Loaded() }

// Unload releases the client; the next Diarize re-initializes it.
func (p *Pyannote) Unload() {
	p.holder.Release(func(c *http.Client) { c.CloseIdleConnections() })
}

// Load initializes the client eagerly instead of on first use.
func (p *Pyannote) Load() error {
	_, err := p.client()
	return err
}

func (p *Pyannote) client() (*http.Client, error) {
	return p.holder.Acquire(func() (*http.Client, error) {
		return &http.Client{Timeout: 600 * time.Second}, nil
	})
}

// Diarize uploads the audio file and decodes the returned speaker turns,
// sorted by start time.
func (p *Pyannote) Diarize(ctx context.Context, req Request) ([]models.SpeakerTurn, error) {
	client, err := p.client()
	if err != nil {
		return nil, fmt.Errorf("init diarization client: %w", err)
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	if req.MinSpeakers != nil {
		_ = mw.WriteField("min_speakers", strconv.Itoa(*req.MinSpeakers))
	}
	if req.MaxSpeakers != nil {
		_ = mw.WriteField("max_speakers", strconv.Itoa(*req.MaxSpeakers))
	}

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/diarize", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if p.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarization failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Segments []models.SpeakerTurn `json:"segments"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	turns := apiResp.Segments
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })
	return turns, nil
}
