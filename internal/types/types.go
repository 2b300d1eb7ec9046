package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// ItemType distinguishes the two kinds of transcript items the speech
// service emits.
type ItemType string

const (
	ItemPronunciation ItemType = "pronunciation"
	ItemPunctuation   ItemType = "punctuation"
)

// TranscriptItem is one element of the word-level transcript. Pronunciation
// items carry timestamps; punctuation items are zero-duration markers.
type TranscriptItem struct {
	Type         ItemType
	StartTime    float64
	EndTime      float64
	Content      string
	Confidence   float64
	HasTimestamp bool
}

// Transcript is the parsed speech-service result: the ordered item sequence
// plus the full transcript text used for title context.
type Transcript struct {
	Items    []TranscriptItem
	FullText string
}

// transcribeResult mirrors the speech service's JSON. Times and confidences
// arrive as decimal strings.
type transcribeResult struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
		Items []struct {
			Type         string `json:"type"`
			StartTime    string `json:"start_time"`
			EndTime      string `json:"end_time"`
			Alternatives []struct {
				Content    string `json:"content"`
				Confidence string `json:"confidence"`
			} `json:"alternatives"`
		} `json:"items"`
	} `json:"results"`
}

// ParseTranscript decodes a speech-service result document. Items without
// alternatives are skipped rather than failing the whole parse.
func ParseTranscript(raw []byte) (Transcript, error) {
	var doc transcribeResult
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Transcript{}, err
	}

	tr := Transcript{Items: make([]TranscriptItem, 0, len(doc.Results.Items))}
	if len(doc.Results.Transcripts) > 0 {
		tr.FullText = doc.Results.Transcripts[0].Transcript
	}

	for _, it := range doc.Results.Items {
		if len(it.Alternatives) == 0 {
			continue
		}
		item := TranscriptItem{
			Type:    ItemType(it.Type),
			Content: it.Alternatives[0].Content,
		}
		if c, err := strconv.ParseFloat(it.Alternatives[0].Confidence, 64); err == nil {
			item.Confidence = c
		} else {
			// The service occasionally omits confidence on low-energy words.
			item.Confidence = 0.9
		}
		if st, err := strconv.ParseFloat(it.StartTime, 64); err == nil {
			if en, err := strconv.ParseFloat(it.EndTime, 64); err == nil {
				item.StartTime = st
				item.EndTime = en
				item.HasTimestamp = true
			}
		}
		tr.Items = append(tr.Items, item)
	}
	return tr, nil
}

// LabelDetection is one visual label hit at a point in time.
type LabelDetection struct {
	Name        string
	Confidence  float64 // 0-100
	TimestampMs int64
}

// LabelResult is the parsed vision-service output for one video.
type LabelResult struct {
	Labels         []LabelDetection
	DurationMillis int64
}

// CandidateSource marks which extractor proposed a candidate.
type CandidateSource string

const (
	SourceAudio    CandidateSource = "audio"
	SourceVisual   CandidateSource = "visual"
	SourceFallback CandidateSource = "fallback"
)

// Candidate is a scored interval proposed by one extractor, in source-video
// seconds. Keyword and Labels are provenance carried for logging.
type Candidate struct {
	Start   float64
	End     float64
	Score   float64
	Source  CandidateSource
	Keyword string
	Labels  []string
}

// KeyMoment is one selected interval of the edit decision list.
type KeyMoment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// Duration returns the moment's length in seconds.
func (m KeyMoment) Duration() float64 { return m.End - m.Start }

// KeyMoments is stored on the video record as a JSON text column.
type KeyMoments []KeyMoment

func (k KeyMoments) Value() (driver.Value, error) {
	if k == nil {
		return nil, nil
	}
	return json.Marshal(k)
}

func (k *KeyMoments) Scan(value any) error {
	if value == nil {
		*k = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("keymoments: unsupported column type")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, k)
}

// TotalDuration sums the moment lengths in seconds.
func (k KeyMoments) TotalDuration() float64 {
	var total float64
	for _, m := range k {
		total += m.Duration()
	}
	return total
}

// CaptionEntry is one subtitle block, expressed in the edited-output
// timeline (seconds since the concatenated result begins).
type CaptionEntry struct {
	Start float64
	End   float64
	Text  string
}

// VideoStatus is the lifecycle state of a video record.
type VideoStatus string

const (
	StatusUploading VideoStatus = "UPLOADING"
	StatusUploaded  VideoStatus = "UPLOADED"
	StatusAnalyzing VideoStatus = "ANALYZING"
	StatusEditing   VideoStatus = "EDITING"
	StatusCompleted VideoStatus = "COMPLETED"
	StatusError     VideoStatus = "ERROR"
)

// Pipeline phases recorded alongside status transitions.
const (
	PhaseAnalysis      = "ANALYSIS"
	PhaseConsolidation = "CONSOLIDATION"
	PhaseTranscode     = "MEDIACONVERT"
)

// VideoRecord tracks one uploaded video through the pipeline.
type VideoRecord struct {
	ID             uint        `gorm:"primaryKey"`
	VideoID        string      `gorm:"uniqueIndex;not null"`
	Status         VideoStatus `gorm:"index"`
	Phase          string
	Bucket         string
	Key            string
	UploadedSize   int64
	SpeechJobID    string
	VisionJobID    string
	TranscodeJobID string
	KeyMoments     KeyMoments `gorm:"type:text"`
	KeyMomentsCnt  int
	Title          string
	OutputKey      string
	Error          string
	StartedAt      *time.Time
	ConsolidatedAt *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VideoUpdate is a typed partial update for a video record. Nil fields are
// left untouched; the store applies exactly the fields that are set.
type VideoUpdate struct {
	Status         *VideoStatus
	Phase          *string
	Bucket         *string
	Key            *string
	UploadedSize   *int64
	SpeechJobID    *string
	VisionJobID    *string
	TranscodeJobID *string
	KeyMoments     KeyMoments
	KeyMomentsCnt  *int
	Title          *string
	OutputKey      *string
	Error          *string
	StartedAt      *time.Time
	ConsolidatedAt *time.Time
	CompletedAt    *time.Time
}

// Ptr is a small helper for building VideoUpdate literals.
func Ptr[T any](v T) *T { return &v }
