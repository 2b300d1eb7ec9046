package highlights

import (
	"github.com/jianxion/highlightAI/internal/types"
)

const fallbackScore = 0.5

// Fallback produces deterministic filler moments when real signal is
// missing: an intro clip always, plus a middle and outro clip when the video
// is long enough to space them out. Pure function of the duration.
func Fallback(videoDuration float64) []types.KeyMoment {
	clips := []types.KeyMoment{{
		Start: 0,
		End:   minf(5, videoDuration),
		Score: fallbackScore,
	}}

	if videoDuration > 15 {
		mid := videoDuration / 2
		clips = append(clips, types.KeyMoment{
			Start: mid,
			End:   minf(mid+5, videoDuration),
			Score: fallbackScore,
		})

		outroStart := maxf(5, videoDuration-5)
		if outroStart < videoDuration {
			clips = append(clips, types.KeyMoment{
				Start: outroStart,
				End:   videoDuration,
				Score: fallbackScore,
			})
		}
	}
	return clips
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
