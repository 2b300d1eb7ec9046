// Package ports defines the interfaces for every external collaborator. The
// core never reaches for ambient clients; everything is injected so the
// pipeline is fully testable with fakes.
package ports

import (
	"context"

	"github.com/jianxion/highlightAI/internal/domain/clipplan"
	"github.com/jianxion/highlightAI/internal/types"
)

// JobState is the normalized lifecycle of a managed analysis or transcode job.
type JobState string

const (
	JobRunning   JobState = "RUNNING"
	JobSucceeded JobState = "SUCCEEDED"
	JobFailed    JobState = "FAILED"
)

// SpeechAnalyzer starts and tracks managed speech-to-text jobs. The word
// level result document lands in the object store under resultKey.
type SpeechAnalyzer interface {
	// StartJob is idempotent: starting an already-running job name is not
	// an error.
	StartJob(ctx context.Context, jobName, mediaRef, resultKey string) error
	JobStatus(ctx context.Context, jobName string) (JobState, error)
}

// VisionAnalyzer starts and tracks managed label-detection jobs.
type VisionAnalyzer interface {
	StartJob(ctx context.Context, mediaRef string) (jobID string, err error)
	// GetResult reports the job state; the label result is only meaningful
	// once the state is JobSucceeded.
	GetResult(ctx context.Context, jobID string) (types.LabelResult, JobState, error)
}

// Transcoder submits clip-extraction/concatenation jobs.
type Transcoder interface {
	CreateJob(ctx context.Context, job clipplan.Job, metadata map[string]string) (jobID string, err error)
}

// ObjectStore holds raw videos, transcripts, subtitles and overlay images.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// VideoStore is the per-video status record store. Update applies only the
// fields set on the partial update.
type VideoStore interface {
	Get(ctx context.Context, videoID string) (*types.VideoRecord, error)
	Create(ctx context.Context, rec *types.VideoRecord) error
	Update(ctx context.Context, videoID string, update types.VideoUpdate) error
}

// TitleGenerator proposes a short factual title from sampled frames and a
// transcript excerpt.
type TitleGenerator interface {
	Suggest(ctx context.Context, frames [][]byte, transcriptExcerpt string) (string, error)
}

// FrameSampler extracts a handful of downscaled stills from a local video
// file, JPEG-encoded.
type FrameSampler interface {
	Sample(ctx context.Context, videoPath string, count int) ([][]byte, error)
}

// OverlayRenderer rasterizes a title onto a transparent full-frame canvas,
// PNG-encoded.
type OverlayRenderer interface {
	Render(title string) ([]byte, error)
}
