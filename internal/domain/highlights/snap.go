package highlights

import (
	"github.com/jianxion/highlightAI/internal/types"
)

// Direction of a boundary scan through the transcript items.
type Direction int

const (
	// Backward scans toward the beginning of the transcript.
	Backward Direction = -1
	// Forward scans toward the end of the transcript.
	Forward Direction = 1
)

func isTerminalPunctuation(it types.TranscriptItem) bool {
	if it.Type != types.ItemPunctuation {
		return false
	}
	switch it.Content {
	case ".", "?", "!":
		return true
	}
	return false
}

// SnapBoundary finds the nearest sentence boundary to items[index], scanning
// in the given direction. The scan gives up once it passes a spoken word more
// than limitSeconds away from the reference word, so a keyword in the middle
// of a rambling monologue still yields a bounded clip.
//
// Backward scans return the start of the first word after the punctuation
// (the new sentence's opening word); forward scans return the end of the word
// preceding the punctuation. Returns ok=false when no boundary exists inside
// the window or the reference item has no usable timestamp.
func SnapBoundary(items []types.TranscriptItem, index int, dir Direction, limitSeconds float64) (float64, bool) {
	if index < 0 || index >= len(items) {
		return 0, false
	}
	ref := items[index]
	if !ref.HasTimestamp {
		return 0, false
	}
	refTime := ref.StartTime
	if dir == Forward {
		refTime = ref.EndTime
	}

	for i := index; i >= 0 && i < len(items); i += int(dir) {
		it := items[i]

		// Punctuation often lacks timestamps, so the window check only
		// applies to spoken words.
		if it.Type == types.ItemPronunciation && it.HasTimestamp {
			d := it.StartTime - refTime
			if d < 0 {
				d = -d
			}
			if d > limitSeconds {
				return 0, false
			}
		}

		if isTerminalPunctuation(it) {
			if dir == Backward {
				if i+1 < len(items) && items[i+1].HasTimestamp {
					return items[i+1].StartTime, true
				}
				return 0, false
			}
			if i-1 >= 0 && items[i-1].HasTimestamp {
				return items[i-1].EndTime, true
			}
			return 0, false
		}
	}
	return 0, false
}
