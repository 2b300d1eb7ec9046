package highlights

import (
	"sort"

	"github.com/jianxion/highlightAI/internal/types"
)

const (
	// softFloorSeconds stops selection once the reel is long enough.
	softFloorSeconds = 15.0
	// hardCeilingSeconds allows slight overshoot past the 20s target so a
	// sentence is never truncated mid-thought.
	hardCeilingSeconds = 22.0
	// overlapGuardSeconds is the slack in the overlap predicate; intervals
	// that merely brush edges are not considered overlapping.
	overlapGuardSeconds = 0.5
)

// Select fuses extractor candidates into the edit decision list: highest
// score wins, ties prefer the moment closest to the video's midpoint,
// overlapping intervals are rejected, and the running total stays within the
// 15-22 second band. Output is sorted for playback. Deterministic for
// identical inputs.
func Select(cands []types.Candidate, videoDuration float64) []types.KeyMoment {
	ms := make([]types.KeyMoment, 0, len(cands))
	for _, c := range cands {
		ms = append(ms, types.KeyMoment{Start: c.Start, End: c.End, Score: c.Score})
	}
	return Reselect(ms, videoDuration)
}

// Reselect runs the same greedy selection on already-built moments. Applied
// to a valid selection (non-overlapping, total ≤ 22s) it returns the same
// set, which lets the caller re-cap a fallback-augmented union safely.
func Reselect(moments []types.KeyMoment, videoDuration float64) []types.KeyMoment {
	ranked := make([]types.KeyMoment, len(moments))
	copy(ranked, moments)

	midpoint := videoDuration / 2
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		di := absf(ranked[i].Start - midpoint)
		dj := absf(ranked[j].Start - midpoint)
		if di != dj {
			return di < dj
		}
		return ranked[i].Start < ranked[j].Start
	})

	var selected []types.KeyMoment
	var total float64

	for _, m := range ranked {
		if overlapsAny(m, selected) {
			continue
		}
		if d := m.Duration(); total+d <= hardCeilingSeconds {
			selected = append(selected, m)
			total += d
		}
		if total >= softFloorSeconds {
			break
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Start < selected[j].Start })
	return selected
}

// ClampToDuration drops moments starting at or past the end of the video and
// trims ends that spill over. Zero-length leftovers are discarded.
func ClampToDuration(moments []types.KeyMoment, videoDuration float64) []types.KeyMoment {
	out := make([]types.KeyMoment, 0, len(moments))
	for _, m := range moments {
		if m.Start >= videoDuration {
			continue
		}
		if m.End > videoDuration {
			m.End = videoDuration
		}
		if m.End > m.Start {
			out = append(out, m)
		}
	}
	return out
}

func overlapsAny(m types.KeyMoment, selected []types.KeyMoment) bool {
	for _, s := range selected {
		if m.Start < s.End-overlapGuardSeconds && m.End > s.Start+overlapGuardSeconds {
			return true
		}
	}
	return false
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
