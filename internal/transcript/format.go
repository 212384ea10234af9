package transcript

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/meetscribe/meet-transcriber/internal/models"
)

// Document is the canonical JSON rendering of a finished transcript. It is
// both what the worker stores and what the download endpoint serves, so the
// two cannot drift.
type Document struct {
	DurationSeconds float64                    `json:"duration_seconds"`
	Language        string                     `json:"language,omitempty"`
	Speakers        []string                   `json:"speakers"`
	Segments        []models.TranscriptSegment `json:"segments"`
}

// clockParts splits a second offset into hour/minute/second/millisecond
// components, truncating toward zero. Truncation (not rounding) keeps the
// rendered timestamps bit-exact against the source offsets.
func clockParts(seconds float64) (h, m, s, ms int) {
	h = int(seconds / 3600)
	m = int(math.Mod(seconds, 3600) / 60)
	s = int(math.Mod(seconds, 60))
	ms = int(math.Mod(seconds, 1) * 1000)
	return h, m, s, ms
}

// SRTTimestamp renders seconds as HH:MM:SS,mmm.
func SRTTimestamp(seconds float64) string {
	h, m, s, ms := clockParts(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// VTTTimestamp renders seconds as HH:MM:SS.mmm.
func VTTTimestamp(seconds float64) string {
	h, m, s, ms := clockParts(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// FormatSRT renders segments as SubRip subtitles: 1-based contiguous sequence
// numbers, comma millisecond separator, "[speaker] text" cue lines.
func FormatSRT(segments []models.TranscriptSegment, includeSpeaker bool) string {
	var lines []string
	for i, seg := range segments {
		lines = append(lines, fmt.Sprintf("%d", i+1))
		lines = append(lines, SRTTimestamp(seg.Start)+" --> "+SRTTimestamp(seg.End))
		if includeSpeaker {
			lines = append(lines, fmt.Sprintf("[%s] %s", seg.Speaker, seg.Text))
		} else {
			lines = append(lines, seg.Text)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// FormatVTT renders segments as WebVTT: header line, dot millisecond
// separator, no sequence numbers, "<v speaker>" voice tags.
func FormatVTT(segments []models.TranscriptSegment, includeSpeaker bool) string {
	lines := []string{"WEBVTT", ""}
	for _, seg := range segments {
		lines = append(lines, VTTTimestamp(seg.Start)+" --> "+VTTTimestamp(seg.End))
		if includeSpeaker {
			lines = append(lines, fmt.Sprintf("<v %s>%s", seg.Speaker, seg.Text))
		} else {
			lines = append(lines, seg.Text)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// FormatJSON renders the transcript document as indented JSON. A segment with
// no word-level data keeps its words field absent, never an empty list.
func FormatJSON(segments []models.TranscriptSegment, duration float64, language string, speakers []string) ([]byte, error) {
	doc := Document{
		DurationSeconds: duration,
		Language:        language,
		Speakers:        speakers,
		Segments:        segments,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transcript document: %w", err)
	}
	return data, nil
}

// FormatText renders one "speaker: text" line per segment, optionally
// prefixed with a [MM:SS] stamp truncated from the segment start.
func FormatText(segments []models.TranscriptSegment, includeTimestamps bool) string {
	var lines []string
	for _, seg := range segments {
		if includeTimestamps {
			minutes := int(seg.Start / 60)
			seconds := int(math.Mod(seg.Start, 60))
			lines = append(lines, fmt.Sprintf("[%02d:%02d] %s: %s", minutes, seconds, seg.Speaker, seg.Text))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s", seg.Speaker, seg.Text))
		}
	}
	return strings.Join(lines, "\n")
}
