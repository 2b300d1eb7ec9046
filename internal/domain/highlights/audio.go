package highlights

import (
	"strings"

	"github.com/jianxion/highlightAI/internal/types"
)

// excitementKeywords maps spoken substrings to a base excitement weight.
// Ordered: only the first match per word counts, so broad fillers sit after
// the strong signals.
var excitementKeywords = []struct {
	Keyword string
	Weight  float64
}{
	{"goal", 0.95},
	{"score", 0.95},
	{"win", 0.95},
	{"amazing", 0.85},
	{"wow", 0.85},
	{"welcome", 0.80},
	{"yes", 0.70},
	{"okay", 0.60},
	{"right", 0.60},
	{"now", 0.60},
	{"let", 0.60},
	{"good", 0.60},
	{"start", 0.60},
}

const (
	// snapWindowSeconds bounds the sentence-boundary search around a keyword.
	snapWindowSeconds = 30.0
	// snapFallbackPad widens the raw word interval when no boundary is found.
	snapFallbackPad = 3.0
	// clipPad is the outward breathing room applied to every audio candidate.
	clipPad = 0.3
)

// ExtractAudio scans the transcript for excitement keywords and returns a
// scored candidate per hit, snapped to sentence boundaries where possible.
// The error is informational: callers degrade to an empty candidate list and
// keep the pipeline going.
func ExtractAudio(tr types.Transcript) ([]types.Candidate, error) {
	var out []types.Candidate

	for i, item := range tr.Items {
		if item.Type != types.ItemPronunciation {
			continue
		}
		word := strings.ToLower(item.Content)
		confidence := item.Confidence
		if confidence <= 0 {
			confidence = 0.9
		}

		for _, kw := range excitementKeywords {
			if !strings.Contains(word, kw.Keyword) {
				continue
			}

			start := item.StartTime
			end := item.EndTime

			if snapped, ok := SnapBoundary(tr.Items, i, Backward, snapWindowSeconds); ok {
				start = snapped
			} else {
				start = max0(item.StartTime - snapFallbackPad)
			}
			if snapped, ok := SnapBoundary(tr.Items, i, Forward, snapWindowSeconds); ok {
				end = snapped
			} else {
				end = item.EndTime + snapFallbackPad
			}

			start = max0(start - clipPad)
			end += clipPad

			out = append(out, types.Candidate{
				Start:   start,
				End:     end,
				Score:   kw.Weight * confidence,
				Source:  types.SourceAudio,
				Keyword: kw.Keyword,
			})
			break // first match only, no double counting
		}
	}
	return out, nil
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
