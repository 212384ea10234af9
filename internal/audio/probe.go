package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info describes an audio file as reported by ffprobe.
type Info struct {
	DurationSeconds float64
	SampleRate      int
	Channels        int
	FormatName      string
	SizeBytes       int64
}

type probeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// Probe executes ffprobe against the provided path and decodes the container
// and first-audio-stream metadata.
func Probe(ctx context.Context, binary, path string) (Info, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("probe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := Info{
		DurationSeconds: parseFloat(result.Format.Duration),
		FormatName:      result.Format.FormatName,
		SizeBytes:       int64(parseFloat(result.Format.Size)),
	}
	for _, stream := range result.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			info.SampleRate = int(parseFloat(stream.SampleRate))
			info.Channels = stream.Channels
			break
		}
	}
	return info, nil
}

// Duration returns the audio duration in seconds, or 0 when the file cannot
// be probed. Callers treat a missing duration as non-fatal.
func Duration(ctx context.Context, binary, path string) (float64, error) {
	info, err := Probe(ctx, binary, path)
	if err != nil {
		return 0, err
	}
	return info.DurationSeconds, nil
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}
