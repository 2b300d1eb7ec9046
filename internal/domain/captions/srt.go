package captions

import (
	"fmt"
	"strings"

	"github.com/jianxion/highlightAI/internal/types"
)

// RenderSRT serializes the caption track in the standard subtitle
// interchange format: numbered blocks, HH:MM:SS,mmm timing lines, text,
// blank-line separated. Returns "" for an empty track.
func RenderSRT(entries []types.CaptionEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, srtTime(e.Start), srtTime(e.End), e.Text)
		if i < len(entries)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func srtTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	millis := int(seconds*1000) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
