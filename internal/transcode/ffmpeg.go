// Package transcode fixes container duration metadata on uploaded audio.
//
// Browser MediaRecorder streams write their container incrementally, which
// leaves the duration header wrong or missing. Remuxing the file with a
// stream copy rewrites the container without touching the audio data.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Adapter remuxes audio files with ffmpeg and measures their duration with
// ffprobe. Both tools are treated as black-box commands; any failure leaves
// the input file byte-identical so callers can fall back to their own
// duration estimate.
type Adapter struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates an Adapter. timeout bounds each external tool invocation so a
// hanging transcoder cannot stall an upload indefinitely.
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *Adapter {
	return &Adapter{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// Fix remuxes the file at path in place and returns the measured duration
// in seconds. The remux writes to a sibling temp file that atomically
// replaces the input only after a successful probe; on any failure the temp
// file is removed and the input stays untouched.
func (a *Adapter) Fix(ctx context.Context, path string) (float64, error) {
	ext := filepath.Ext(path)
	tmp := strings.TrimSuffix(path, ext) + ".remux" + ext

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.ffmpegPath, "-y", "-i", path, "-c", "copy", tmp)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("ffmpeg remux: %w: %s", err, lastLine(stderr.String()))
	}

	duration, err := a.probe(ctx, tmp)
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("replace remuxed file: %w", err)
	}
	return duration, nil
}

// probe reads the container duration of the file at path.
func (a *Adapter) probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	raw := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", raw, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("ffprobe duration %q is negative", raw)
	}
	return duration, nil
}

// lastLine extracts the final non-empty line of tool output, which is where
// ffmpeg puts its actual error message.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
