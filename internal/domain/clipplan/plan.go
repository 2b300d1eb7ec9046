// Package clipplan turns the edit decision list into the transcoder's job
// description: timecoded clip ranges, output composition, optional burned-in
// captions and title overlay.
package clipplan

import (
	"fmt"
	"strings"

	"github.com/jianxion/highlightAI/internal/types"
)

// ClipRange is one source interval for the transcoder, HH:MM:SS:FF.
type ClipRange struct {
	StartTimecode string `json:"startTimecode"`
	EndTimecode   string `json:"endTimecode"`
}

// CaptionStyle is the fixed burn-in look: white text, black outline and
// background, bottom-centered.
type CaptionStyle struct {
	FontColor    string `json:"fontColor"`
	FontSize     int    `json:"fontSize"`
	OutlineColor string `json:"outlineColor"`
	OutlineSize  int    `json:"outlineSize"`
	Background   string `json:"background"`
	XPosition    int    `json:"xPosition"`
	YPosition    int    `json:"yPosition"`
}

// Overlay composites a full-frame image near the start of the output.
type Overlay struct {
	ImageRef  string `json:"imageRef"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Layer     int    `json:"layer"`
	Opacity   int    `json:"opacity"`
	StartTime string `json:"startTime"`
	FadeInMs  int    `json:"fadeInMs"`
	HoldMs    int    `json:"holdMs"`
	FadeOutMs int    `json:"fadeOutMs"`
}

// Job is the complete transcode request: extract the clip ranges from the
// input, concatenate them, burn in captions, composite the overlay.
type Job struct {
	InputFile    string        `json:"inputFile"`
	Clips        []ClipRange   `json:"clips"`
	Destination  string        `json:"destination"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	VideoBitrate int           `json:"videoBitrate"`
	AudioBitrate int           `json:"audioBitrate"`
	SubtitleRef  string        `json:"subtitleRef,omitempty"`
	CaptionStyle *CaptionStyle `json:"captionStyle,omitempty"`
	Overlay      *Overlay      `json:"overlay,omitempty"`
}

// Vertical short-form output, mirroring the production preset.
const (
	outputWidth       = 1080
	outputHeight      = 1920
	videoMaxBitrate   = 6_000_000
	audioBitrate      = 96_000
	overlayFadeMs     = 500
	overlayHoldMs     = 5000
	captionFontSize   = 48
	captionYPosition  = 80
	burnInBackground  = "BLACK"
	burnInFontColor   = "WHITE"
	burnInOutline     = "BLACK"
	burnInOutlineSize = 3
)

// Build assembles the job for the given moments. subtitleRef and overlayRef
// are optional; empty strings omit the corresponding composition step.
func Build(inputFile string, moments []types.KeyMoment, destination, subtitleRef, overlayRef string) Job {
	job := Job{
		InputFile:    inputFile,
		Clips:        make([]ClipRange, 0, len(moments)),
		Destination:  destination,
		Width:        outputWidth,
		Height:       outputHeight,
		VideoBitrate: videoMaxBitrate,
		AudioBitrate: audioBitrate,
	}
	for _, m := range moments {
		job.Clips = append(job.Clips, ClipRange{
			StartTimecode: Timecode(m.Start),
			EndTimecode:   Timecode(m.End),
		})
	}
	if subtitleRef != "" {
		job.SubtitleRef = subtitleRef
		job.CaptionStyle = &CaptionStyle{
			FontColor:    burnInFontColor,
			FontSize:     captionFontSize,
			OutlineColor: burnInOutline,
			OutlineSize:  burnInOutlineSize,
			Background:   burnInBackground,
			XPosition:    0,
			YPosition:    captionYPosition,
		}
	}
	if overlayRef != "" {
		job.Overlay = &Overlay{
			ImageRef:  overlayRef,
			Layer:     1,
			Opacity:   100,
			StartTime: Timecode(0),
			FadeInMs:  overlayFadeMs,
			HoldMs:    overlayHoldMs,
			FadeOutMs: overlayFadeMs,
		}
	}
	return job
}

// Timecode formats seconds as HH:MM:SS:FF with the frame component forced to
// 00, avoiding framerate mismatches between the probe and the transcoder.
func Timecode(seconds float64) string {
	h, m, s, _ := splitSeconds(seconds, 0)
	return fmt.Sprintf("%02d:%02d:%02d:00", h, m, s)
}

// TimecodeFrames formats seconds as HH:MM:SS:FF with the frame component
// derived from the fractional second at the given frame rate.
func TimecodeFrames(seconds float64, fps int) string {
	h, m, s, f := splitSeconds(seconds, fps)
	return fmt.Sprintf("%02d:%02d:%02d:%02d", h, m, s, f)
}

func splitSeconds(seconds float64, fps int) (h, m, s, f int) {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h = total / 3600
	m = (total % 3600) / 60
	s = total % 60
	if fps > 0 {
		f = int((seconds - float64(total)) * float64(fps))
	}
	return h, m, s, f
}

// SanitizeTitle converts a generated title into a filename-safe fragment.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
