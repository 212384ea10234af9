package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TargetSampleRate is what the inference engines expect.
const TargetSampleRate = 16000

// Preprocess re-encodes the input to 16 kHz mono 16-bit PCM WAV in a temp
// directory and returns the derived file's path. The caller owns the derived
// file and must remove it on every exit path.
func Preprocess(ctx context.Context, binary, path string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	tempDir := filepath.Join(os.TempDir(), "meet-transcriber")
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(tempDir, stem+"_processed.wav")

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-i", path,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", TargetSampleRate),
		"-acodec", "pcm_s16le",
		"-y", outPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg preprocess: %w: %s", err, strings.TrimSpace(string(output)))
	}

	slog.Info("audio preprocessed", "input", path, "output", outPath)
	return outPath, nil
}

// CleanupTemp removes temporary derived files, logging failures without
// propagating them.
func CleanupTemp(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temp file", "path", path, "error", err)
		}
	}
}
