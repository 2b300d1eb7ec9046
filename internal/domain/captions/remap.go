// Package captions re-derives a subtitle track for the edited output: words
// are collected from the source transcript, translated onto the concatenated
// timeline, and packed into readable chunks.
package captions

import (
	"strings"

	"github.com/jianxion/highlightAI/internal/types"
)

const (
	// maxChunkWords closes a caption once it holds this many words.
	maxChunkWords = 5
	// maxChunkSpanSeconds closes a caption once it spans this long.
	maxChunkSpanSeconds = 3.0
)

type timedWord struct {
	Start float64
	End   float64
	Text  string
}

// Remap maps the transcript's words onto the edited-output timeline defined
// by the selected moments and groups them into caption entries. Returns nil
// when the transcript has no timestamped words or none of them fall inside a
// selected moment; the caller then skips subtitles entirely.
func Remap(tr types.Transcript, moments []types.KeyMoment) []types.CaptionEntry {
	words := collectWords(tr)
	if len(words) == 0 {
		return nil
	}

	// Each moment contributes its contained words shifted so that the
	// moment's start lands at the current output cursor; the cursor then
	// advances by the moment's length, matching how the transcoder butts
	// the clips together.
	var mapped []timedWord
	outputCursor := 0.0
	for _, m := range moments {
		for _, w := range words {
			if m.Start <= w.Start && w.Start < m.End {
				mapped = append(mapped, timedWord{
					Start: outputCursor + (w.Start - m.Start),
					End:   outputCursor + (w.End - m.Start),
					Text:  w.Text,
				})
			}
		}
		outputCursor += m.Duration()
	}
	if len(mapped) == 0 {
		return nil
	}

	return packChunks(mapped)
}

func collectWords(tr types.Transcript) []timedWord {
	var out []timedWord
	for _, it := range tr.Items {
		if it.Type != types.ItemPronunciation || !it.HasTimestamp {
			continue
		}
		text := strings.TrimSpace(it.Content)
		if text == "" {
			continue
		}
		out = append(out, timedWord{Start: it.StartTime, End: it.EndTime, Text: text})
	}
	return out
}

func packChunks(words []timedWord) []types.CaptionEntry {
	var entries []types.CaptionEntry
	var chunk []string
	chunkStart := 0.0

	for i, w := range words {
		if len(chunk) == 0 {
			chunkStart = w.Start
		}
		chunk = append(chunk, w.Text)

		span := w.End - chunkStart
		if len(chunk) >= maxChunkWords || span >= maxChunkSpanSeconds || i == len(words)-1 {
			entries = append(entries, types.CaptionEntry{
				Start: chunkStart,
				End:   w.End,
				Text:  strings.Join(chunk, " "),
			})
			chunk = chunk[:0]
		}
	}
	return entries
}
