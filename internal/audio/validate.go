package audio

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// MinDurationSeconds is the shortest audio accepted for processing.
const MinDurationSeconds = 0.5

var supportedFormats = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".mp4":  true,
	".flac": true,
	".ogg":  true,
	".webm": true,
	".wma":  true,
	".aac":  true,
}

// SupportedFormat reports whether the extension (including the leading dot)
// is accepted for upload.
func SupportedFormat(ext string) bool {
	return supportedFormats[strings.ToLower(ext)]
}

// FormatList returns the supported extensions as a sorted, comma-joined
// string for client-facing error messages.
func FormatList() string {
	exts := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// Validate probes a stored upload and enforces the duration bounds. Format
// and size are checked by the caller before the file reaches disk.
func Validate(ctx context.Context, ffprobeBinary, path string, maxDurationSeconds float64) error {
	info, err := Probe(ctx, ffprobeBinary, path)
	if err != nil {
		return fmt.Errorf("could not read audio file: %w", err)
	}
	if maxDurationSeconds > 0 && info.DurationSeconds > maxDurationSeconds {
		return fmt.Errorf("audio too long: maximum %.1f hours", maxDurationSeconds/3600)
	}
	if info.DurationSeconds < MinDurationSeconds {
		return fmt.Errorf("audio too short: minimum %.1f seconds", MinDurationSeconds)
	}
	return nil
}
