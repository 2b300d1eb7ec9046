package highlights

import (
	"sort"

	"github.com/jianxion/highlightAI/internal/types"
)

// actionLabels maps vision labels to a base interest score. Specific actions
// and events score high; generic person-type labels are down-weighted so a
// static shot of someone standing around does not beat real activity.
var actionLabels = map[string]float64{
	"Person": 0.2,
	"Human":  0.2,

	"Sports":      0.95,
	"Competition": 0.95,
	"Match":       0.95,
	"Running":     0.9,
	"Jumping":     0.9,
	"Dancing":     0.9,

	"Vehicle": 0.7,
	"Car":     0.7,
	"Plane":   0.7,

	"Nature":   0.6,
	"Outdoor":  0.6,
	"Mountain": 0.6,
	"Beach":    0.7,

	"Happy":    0.8,
	"Smile":    0.8,
	"Laughing": 0.8,
	"Party":    0.85,

	"Concert":     0.9,
	"Performance": 0.9,
	"Stage":       0.85,
}

const (
	// unknownLabelScore is the base for labels outside the table.
	unknownLabelScore = 0.3
	// minLabelConfidence filters noisy detections (percent scale).
	minLabelConfidence = 65.0
	// visualScoreFloor is the emit threshold per one-second bucket.
	visualScoreFloor = 0.4
	// diversityBonusCap limits the richer-scene bonus.
	diversityBonusCap = 0.3
)

// ExtractVisual buckets label detections into one-second bins and emits a
// candidate for each bucket whose best label plus a diversity bonus clears
// the floor. The error is informational: callers degrade to an empty list.
func ExtractVisual(res types.LabelResult) ([]types.Candidate, error) {
	timeline := map[int64][]string{}

	for _, det := range res.Labels {
		if det.Confidence <= minLabelConfidence {
			continue
		}
		sec := det.TimestampMs / 1000
		timeline[sec] = append(timeline[sec], det.Name)
	}

	seconds := make([]int64, 0, len(timeline))
	for sec := range timeline {
		seconds = append(seconds, sec)
	}
	sort.Slice(seconds, func(i, j int) bool { return seconds[i] < seconds[j] })

	var out []types.Candidate
	for _, sec := range seconds {
		names := timeline[sec]

		maxScore := 0.0
		distinct := map[string]struct{}{}
		for _, name := range names {
			base, ok := actionLabels[name]
			if !ok {
				base = unknownLabelScore
			}
			if base > maxScore {
				maxScore = base
			}
			distinct[name] = struct{}{}
		}

		bonus := 0.05 * float64(len(distinct))
		if bonus > diversityBonusCap {
			bonus = diversityBonusCap
		}
		finalScore := maxScore + bonus
		if finalScore <= visualScoreFloor {
			continue
		}

		labels := make([]string, 0, len(distinct))
		for name := range distinct {
			labels = append(labels, name)
		}
		sort.Strings(labels)

		out = append(out, types.Candidate{
			Start:  max0(float64(sec) - 1.5),
			End:    float64(sec) + 2.5,
			Score:  finalScore,
			Source: types.SourceVisual,
			Labels: labels,
		})
	}
	return out, nil
}
