// Package framegrab samples still frames from a local video file with
// ffmpeg for the title model.
package framegrab

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// frameWidth keeps the sampled JPEGs small enough to inline in a title
// request without losing the scene.
const frameWidth = 640

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Sample extracts count JPEG frames spread evenly across the video. Frames
// that fail to decode are skipped; an error is returned only when no frame
// could be extracted at all.
func (a *Adapter) Sample(ctx context.Context, videoPath string, count int) ([][]byte, error) {
	if count <= 0 {
		return nil, fmt.Errorf("framegrab: count must be positive, got %d", count)
	}

	dur, err := a.probeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if dur <= 0 {
		return nil, fmt.Errorf("framegrab: zero duration for %s", videoPath)
	}

	dir, err := os.MkdirTemp("", "framegrab-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	frames := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		// Offsets at (i+1)/(count+1) of the duration avoid the black
		// first frame and the end-of-stream edge.
		at := dur * time.Duration(i+1) / time.Duration(count+1)
		out := filepath.Join(dir, fmt.Sprintf("frame-%02d.jpg", i))
		if err := a.extractFrame(ctx, videoPath, at, out); err != nil {
			continue
		}
		b, err := os.ReadFile(out)
		if err != nil || len(b) == 0 {
			continue
		}
		frames = append(frames, b)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("framegrab: no frames extracted from %s", videoPath)
	}
	return frames, nil
}

func (a *Adapter) extractFrame(ctx context.Context, in string, at time.Duration, out string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(at),
		"-i", in,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", frameWidth),
		"-q:v", "4",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract frame: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) probeDuration(ctx context.Context, in string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
