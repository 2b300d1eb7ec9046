package highlights

import (
	"testing"

	"github.com/jianxion/highlightAI/internal/types"
)

func det(name string, conf float64, ms int64) types.LabelDetection {
	return types.LabelDetection{Name: name, Confidence: conf, TimestampMs: ms}
}

func TestExtractVisual_ActionBucketScoresAboveFloor(t *testing.T) {
	res := types.LabelResult{Labels: []types.LabelDetection{
		det("Sports", 90, 10_000),
		det("Competition", 88, 10_200),
	}}

	cands, err := ExtractVisual(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	c := cands[0]
	// Best label 0.95 plus 2 * 0.05 diversity bonus.
	if !almostEq(c.Score, 1.05) {
		t.Fatalf("expected score 1.05, got %v", c.Score)
	}
	if !almostEq(c.Start, 8.5) || !almostEq(c.End, 12.5) {
		t.Fatalf("expected [8.5, 12.5], got [%v, %v]", c.Start, c.End)
	}
}

func TestExtractVisual_Table(t *testing.T) {
	tests := []struct {
		name      string
		labels    []types.LabelDetection
		wantCount int
	}{
		{"empty", nil, 0},
		{"low confidence dropped", []types.LabelDetection{det("Sports", 65, 5_000)}, 0},
		{"person alone below floor", []types.LabelDetection{det("Person", 99, 5_000)}, 0},
		{"unknown label alone below floor", []types.LabelDetection{det("Ceiling", 99, 5_000)}, 0},
		{"unknown labels clear floor together", []types.LabelDetection{
			det("Ceiling", 99, 5_000),
			det("Floor", 99, 5_100),
			det("Wall", 99, 5_200),
		}, 1},
		{"two buckets two candidates", []types.LabelDetection{
			det("Dancing", 92, 3_000),
			det("Concert", 95, 30_000),
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands, err := ExtractVisual(types.LabelResult{Labels: tt.labels})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cands) != tt.wantCount {
				t.Fatalf("expected %d candidates, got %d", tt.wantCount, len(cands))
			}
		})
	}
}

func TestExtractVisual_DiversityBonusCapped(t *testing.T) {
	labels := []types.LabelDetection{}
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for i, n := range names {
		labels = append(labels, det(n, 90, 7_000+int64(i)*10))
	}

	cands, err := ExtractVisual(types.LabelResult{Labels: labels})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	// 8 distinct unknown labels: 0.3 base + bonus capped at 0.3.
	if !almostEq(cands[0].Score, 0.6) {
		t.Fatalf("expected capped score 0.6, got %v", cands[0].Score)
	}
}

func TestExtractVisual_DeterministicOrder(t *testing.T) {
	res := types.LabelResult{Labels: []types.LabelDetection{
		det("Concert", 95, 20_000),
		det("Dancing", 92, 3_000),
		det("Party", 90, 45_000),
	}}

	for run := 0; run < 5; run++ {
		cands, err := ExtractVisual(res)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cands) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(cands))
		}
		for i := 1; i < len(cands); i++ {
			if cands[i-1].Start >= cands[i].Start {
				t.Fatalf("candidates out of order: %v then %v", cands[i-1].Start, cands[i].Start)
			}
		}
	}
}

func TestExtractVisual_EarlyBucketClampsToZero(t *testing.T) {
	cands, err := ExtractVisual(types.LabelResult{Labels: []types.LabelDetection{
		det("Running", 90, 500),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].Start != 0 {
		t.Fatalf("expected start clamped to 0, got %v", cands[0].Start)
	}
}
