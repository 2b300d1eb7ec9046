package types

import (
	"testing"
)

func TestParseTranscript(t *testing.T) {
	raw := []byte(`{"results":{
		"transcripts":[{"transcript":"what a goal."}],
		"items":[
			{"type":"pronunciation","start_time":"1.00","end_time":"1.20","alternatives":[{"content":"what","confidence":"0.98"}]},
			{"type":"pronunciation","start_time":"1.25","end_time":"1.30","alternatives":[{"content":"a","confidence":"0.95"}]},
			{"type":"pronunciation","start_time":"1.40","end_time":"1.80","alternatives":[{"content":"goal"}]},
			{"type":"punctuation","alternatives":[{"content":"."}]},
			{"type":"pronunciation","start_time":"2.0","end_time":"2.4","alternatives":[]}
		]}}`)

	tr, err := ParseTranscript(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.FullText != "what a goal." {
		t.Fatalf("unexpected full text %q", tr.FullText)
	}
	// The no-alternatives item is skipped.
	if len(tr.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(tr.Items))
	}

	first := tr.Items[0]
	if first.Type != ItemPronunciation || first.Content != "what" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if !first.HasTimestamp || first.StartTime != 1.0 || first.EndTime != 1.2 {
		t.Fatalf("unexpected first item timing: %+v", first)
	}
	if first.Confidence != 0.98 {
		t.Fatalf("unexpected first item confidence: %v", first.Confidence)
	}

	// Missing confidence falls back to 0.9.
	if tr.Items[2].Confidence != 0.9 {
		t.Fatalf("expected default confidence 0.9, got %v", tr.Items[2].Confidence)
	}

	p := tr.Items[3]
	if p.Type != ItemPunctuation || p.Content != "." || p.HasTimestamp {
		t.Fatalf("unexpected punctuation item: %+v", p)
	}
}

func TestParseTranscript_Invalid(t *testing.T) {
	if _, err := ParseTranscript([]byte("not json")); err == nil {
		t.Fatalf("expected an error for malformed input")
	}
}

func TestParseTranscript_Empty(t *testing.T) {
	tr, err := ParseTranscript([]byte(`{"results":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Items) != 0 || tr.FullText != "" {
		t.Fatalf("expected empty transcript, got %+v", tr)
	}
}

func TestKeyMomentsRoundTrip(t *testing.T) {
	in := KeyMoments{{Start: 1.5, End: 4.5, Score: 0.8}, {Start: 10, End: 14, Score: 0.6}}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var out KeyMoments
	if err := out.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v vs %+v", in, out)
	}
	if got := out.TotalDuration(); got != 7 {
		t.Fatalf("expected total duration 7, got %v", got)
	}
}
