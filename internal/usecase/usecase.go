// Package usecase holds the three orchestration steps of the pipeline:
// Analyze kicks off the managed analysis jobs, Consolidate fuses their
// results into a highlight reel and submits the transcode job, Finalize
// records the transcode outcome. Each step is one synchronous invocation per
// video with no shared state between invocations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jianxion/highlightAI/internal/domain/captions"
	"github.com/jianxion/highlightAI/internal/domain/clipplan"
	"github.com/jianxion/highlightAI/internal/domain/highlights"
	"github.com/jianxion/highlightAI/internal/ports"
	"github.com/jianxion/highlightAI/internal/types"
)

// Error taxonomy. ErrNotReady is a normal early return (the orchestration
// retriggers later); everything else aborts the pipeline for the video.
var (
	ErrNotReady         = errors.New("analysis job not ready")
	ErrUpstreamFailed   = errors.New("analysis job failed")
	ErrTimeout          = errors.New("timed out waiting for analysis job")
	ErrMalformedJobName = errors.New("malformed analysis job name")
)

// speechJobPrefix encodes the video ID into the speech job name.
const speechJobPrefix = "transcribe-"

const (
	visionPollInterval = 2 * time.Second
	visionPollAttempts = 150
	titleFrameCount    = 5
	transcriptExcerpt  = 2000
	defaultTitle       = "Highlight Video"
	// defaultDurationSec stands in when the vision metadata lacks a duration.
	defaultDurationSec = 300.0
)

// Deps are the injected collaborators. Sleep defaults to time.Sleep; tests
// override it to simulate polling without real delays.
type Deps struct {
	Speech     ports.SpeechAnalyzer
	Vision     ports.VisionAnalyzer
	Transcoder ports.Transcoder
	Store      ports.ObjectStore
	Videos     ports.VideoStore
	Titles     ports.TitleGenerator
	Frames     ports.FrameSampler
	Overlay    ports.OverlayRenderer
	Log        zerolog.Logger
	Sleep      func(time.Duration)
}

// Usecase runs the pipeline steps against a raw-video and an edited-video
// bucket.
type Usecase struct {
	d            Deps
	rawBucket    string
	editedBucket string
}

func New(d Deps, rawBucket, editedBucket string) *Usecase {
	if d.Sleep == nil {
		d.Sleep = time.Sleep
	}
	return &Usecase{d: d, rawBucket: rawBucket, editedBucket: editedBucket}
}

// SpeechJobName returns the job name that encodes the video ID.
func SpeechJobName(videoID string) string { return speechJobPrefix + videoID }

// VideoIDFromJobName recovers the video ID from a speech job name.
func VideoIDFromJobName(jobName string) (string, error) {
	if !strings.HasPrefix(jobName, speechJobPrefix) {
		return "", fmt.Errorf("%w: %q", ErrMalformedJobName, jobName)
	}
	id := strings.TrimPrefix(jobName, speechJobPrefix)
	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedJobName, jobName)
	}
	return id, nil
}

func transcriptKey(videoID string) string { return "transcripts/" + videoID + ".json" }
func subtitleKey(videoID string) string   { return "subtitles/" + videoID + ".srt" }
func overlayKey(videoID string) string    { return "overlays/" + videoID + "_title.png" }

// AnalyzeInput is the upload-complete message for one video.
type AnalyzeInput struct {
	VideoID  string
	Bucket   string
	Key      string
	FileSize int64
}

// Analyze starts the speech and label-detection jobs and records them on the
// video record. Both jobs run asynchronously; completion notifications
// trigger Consolidate later.
func (u *Usecase) Analyze(ctx context.Context, in AnalyzeInput) error {
	if in.VideoID == "" || in.Bucket == "" || in.Key == "" {
		return fmt.Errorf("analyze: missing videoId, bucket or key")
	}
	log := u.d.Log.With().Str("videoId", in.VideoID).Logger()

	jobName := SpeechJobName(in.VideoID)
	mediaRef := objectRef(in.Bucket, in.Key)

	if err := u.d.Speech.StartJob(ctx, jobName, mediaRef, transcriptKey(in.VideoID)); err != nil {
		return fmt.Errorf("start speech job: %w", err)
	}
	log.Info().Str("job", jobName).Msg("speech job started")

	visionJobID, err := u.d.Vision.StartJob(ctx, mediaRef)
	if err != nil {
		return fmt.Errorf("start vision job: %w", err)
	}
	log.Info().Str("job", visionJobID).Msg("vision job started")

	now := time.Now().UTC()
	err = u.d.Videos.Update(ctx, in.VideoID, types.VideoUpdate{
		Status:       types.Ptr(types.StatusAnalyzing),
		Phase:        types.Ptr(types.PhaseAnalysis),
		Bucket:       types.Ptr(in.Bucket),
		Key:          types.Ptr(in.Key),
		UploadedSize: types.Ptr(in.FileSize),
		SpeechJobID:  types.Ptr(jobName),
		VisionJobID:  types.Ptr(visionJobID),
		StartedAt:    &now,
	})
	if err != nil {
		return fmt.Errorf("record analysis jobs: %w", err)
	}
	return nil
}

// ConsolidateInput is the speech-completion notification.
type ConsolidateInput struct {
	JobName   string
	JobStatus string
}

// ConsolidateResult summarizes a successful consolidation.
type ConsolidateResult struct {
	VideoID        string
	TranscodeJobID string
	KeyMoments     types.KeyMoments
	Title          string
}

// Consolidate fuses the analysis results for the video encoded in the job
// name and submits the transcode job. A non-terminal upstream status returns
// ErrNotReady without touching the record; any other failure marks the
// record ERROR and is returned to the caller so infrastructure retry policy
// applies.
func (u *Usecase) Consolidate(ctx context.Context, in ConsolidateInput) (res ConsolidateResult, err error) {
	if in.JobStatus != "" && in.JobStatus != "COMPLETED" {
		return res, fmt.Errorf("%w: speech job status %s", ErrNotReady, in.JobStatus)
	}

	videoID, err := VideoIDFromJobName(in.JobName)
	if err != nil {
		return res, err
	}
	log := u.d.Log.With().Str("videoId", videoID).Logger()

	defer func() {
		if err != nil && !errors.Is(err, ErrNotReady) {
			u.markError(ctx, videoID, types.PhaseConsolidation, err)
		}
	}()

	rec, err := u.d.Videos.Get(ctx, videoID)
	if err != nil {
		return res, fmt.Errorf("load video record: %w", err)
	}

	state, err := u.d.Speech.JobStatus(ctx, rec.SpeechJobID)
	if err != nil {
		return res, fmt.Errorf("speech job status: %w", err)
	}
	switch state {
	case ports.JobSucceeded:
	case ports.JobFailed:
		return res, fmt.Errorf("%w: speech job %s", ErrUpstreamFailed, rec.SpeechJobID)
	default:
		return res, fmt.Errorf("%w: speech job %s still %s", ErrNotReady, rec.SpeechJobID, state)
	}

	raw, err := u.d.Store.Get(ctx, u.rawBucket, transcriptKey(videoID))
	if err != nil {
		return res, fmt.Errorf("fetch transcript: %w", err)
	}
	transcript, err := types.ParseTranscript(raw)
	if err != nil {
		return res, fmt.Errorf("parse transcript: %w", err)
	}

	labels, err := u.waitForVision(ctx, rec.VisionJobID)
	if err != nil {
		return res, err
	}

	duration := float64(labels.DurationMillis) / 1000.0
	if duration <= 0 {
		duration = defaultDurationSec
	}
	log.Info().Float64("durationSec", duration).Msg("consolidating analysis results")

	moments := u.selectMoments(transcript, labels, duration, log)
	log.Info().Int("moments", len(moments)).
		Float64("totalSec", moments.TotalDuration()).
		Msg("edit decision list ready")

	srtRef := ""
	track := captions.Remap(transcript, moments)
	if srt := captions.RenderSRT(track); srt != "" {
		key := subtitleKey(videoID)
		if err := u.d.Store.Put(ctx, u.rawBucket, key, []byte(srt), "application/x-subrip"); err != nil {
			return res, fmt.Errorf("upload subtitles: %w", err)
		}
		srtRef = objectRef(u.rawBucket, key)
		log.Info().Int("captions", len(track)).Str("key", key).Msg("subtitles uploaded")
	} else {
		log.Info().Msg("no captions: transcript empty or no words inside selected moments")
	}

	title := u.generateTitle(ctx, rec, transcript, log)

	overlayRef := ""
	if png, oerr := u.d.Overlay.Render(title); oerr != nil {
		log.Warn().Err(oerr).Msg("overlay rendering failed, proceeding without")
	} else {
		key := overlayKey(videoID)
		if perr := u.d.Store.Put(ctx, u.editedBucket, key, png, "image/png"); perr != nil {
			log.Warn().Err(perr).Msg("overlay upload failed, proceeding without")
		} else {
			overlayRef = objectRef(u.editedBucket, key)
		}
	}

	outputName := videoID + "_" + clipplan.SanitizeTitle(title) + "_highlights"
	job := clipplan.Build(
		objectRef(rec.Bucket, rec.Key),
		moments,
		objectRef(u.editedBucket, outputName),
		srtRef,
		overlayRef,
	)
	jobID, err := u.d.Transcoder.CreateJob(ctx, job, map[string]string{"videoId": videoID})
	if err != nil {
		return res, fmt.Errorf("create transcode job: %w", err)
	}
	log.Info().Str("job", jobID).Msg("transcode job created")

	now := time.Now().UTC()
	err = u.d.Videos.Update(ctx, videoID, types.VideoUpdate{
		Status:         types.Ptr(types.StatusEditing),
		Phase:          types.Ptr(types.PhaseTranscode),
		TranscodeJobID: types.Ptr(jobID),
		KeyMoments:     moments,
		KeyMomentsCnt:  types.Ptr(len(moments)),
		Title:          types.Ptr(title),
		ConsolidatedAt: &now,
	})
	if err != nil {
		return res, fmt.Errorf("record editing status: %w", err)
	}

	return ConsolidateResult{
		VideoID:        videoID,
		TranscodeJobID: jobID,
		KeyMoments:     moments,
		Title:          title,
	}, nil
}

// selectMoments runs extraction, fusion, clamping and the single fallback
// augmentation pass. Extractor failures degrade to empty candidate lists.
func (u *Usecase) selectMoments(tr types.Transcript, labels types.LabelResult, duration float64, log zerolog.Logger) types.KeyMoments {
	audio, err := highlights.ExtractAudio(tr)
	if err != nil {
		log.Warn().Err(err).Msg("audio extraction degraded to empty")
		audio = nil
	}
	visual, err := highlights.ExtractVisual(labels)
	if err != nil {
		log.Warn().Err(err).Msg("visual extraction degraded to empty")
		visual = nil
	}
	log.Info().Int("audio", len(audio)).Int("visual", len(visual)).Msg("candidates extracted")

	moments := highlights.Select(append(audio, visual...), duration)
	moments = highlights.ClampToDuration(moments, duration)

	if len(moments) == 0 {
		log.Info().Msg("no usable moments, generating fallback clips")
		moments = highlights.Fallback(duration)
	}
	moments = highlights.Reselect(moments, duration)

	// One augmentation pass only: union with fallback and re-cap. A short
	// video can legitimately stay under the floor.
	if types.KeyMoments(moments).TotalDuration() < 15 {
		log.Info().Msg("selection under 15s floor, augmenting with fallback clips")
		moments = append(moments, highlights.Fallback(duration)...)
		moments = highlights.Reselect(moments, duration)
	}
	return moments
}

// waitForVision polls the label-detection job until it reaches a terminal
// state, every 2 seconds, bounded. This is the only blocking point in the
// pipeline.
func (u *Usecase) waitForVision(ctx context.Context, jobID string) (types.LabelResult, error) {
	for attempt := 0; attempt < visionPollAttempts; attempt++ {
		res, state, err := u.d.Vision.GetResult(ctx, jobID)
		if err != nil {
			return types.LabelResult{}, fmt.Errorf("vision job status: %w", err)
		}
		switch state {
		case ports.JobSucceeded:
			return res, nil
		case ports.JobFailed:
			return types.LabelResult{}, fmt.Errorf("%w: vision job %s", ErrUpstreamFailed, jobID)
		}
		u.d.Sleep(visionPollInterval)
	}
	return types.LabelResult{}, fmt.Errorf("%w: vision job %s after %s",
		ErrTimeout, jobID, time.Duration(visionPollAttempts)*visionPollInterval)
}

// generateTitle samples frames from the raw video and asks the title service
// for a short factual title. Every failure degrades to the default title;
// title generation never aborts the pipeline.
func (u *Usecase) generateTitle(ctx context.Context, rec *types.VideoRecord, tr types.Transcript, log zerolog.Logger) string {
	video, err := u.d.Store.Get(ctx, rec.Bucket, rec.Key)
	if err != nil {
		log.Warn().Err(err).Msg("title: fetching raw video failed")
		return defaultTitle
	}

	tmp, err := os.CreateTemp("", "highlightai-*"+filepath.Ext(rec.Key))
	if err != nil {
		log.Warn().Err(err).Msg("title: temp file failed")
		return defaultTitle
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(video); err != nil {
		tmp.Close()
		log.Warn().Err(err).Msg("title: writing temp video failed")
		return defaultTitle
	}
	tmp.Close()

	frames, err := u.d.Frames.Sample(ctx, tmp.Name(), titleFrameCount)
	if err != nil || len(frames) == 0 {
		log.Warn().Err(err).Msg("title: frame sampling failed")
		return defaultTitle
	}

	excerpt := "No speech detected."
	if tr.FullText != "" {
		excerpt = tr.FullText
		if len(excerpt) > transcriptExcerpt {
			excerpt = excerpt[:transcriptExcerpt]
		}
	}

	title, err := u.d.Titles.Suggest(ctx, frames, excerpt)
	if err != nil || strings.TrimSpace(title) == "" {
		log.Warn().Err(err).Msg("title: generation failed, using default")
		return defaultTitle
	}
	return cleanTitle(title)
}

func cleanTitle(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// FinalizeInput is the transcode-completion notification.
type FinalizeInput struct {
	VideoID   string
	JobStatus string
	OutputKey string
	ErrorMsg  string
}

// Finalize records the transcode outcome. Non-terminal statuses are ignored.
func (u *Usecase) Finalize(ctx context.Context, in FinalizeInput) error {
	if in.VideoID == "" {
		return fmt.Errorf("finalize: missing videoId")
	}
	now := time.Now().UTC()

	switch in.JobStatus {
	case "COMPLETE", "COMPLETED":
		return u.d.Videos.Update(ctx, in.VideoID, types.VideoUpdate{
			Status:      types.Ptr(types.StatusCompleted),
			OutputKey:   types.Ptr(in.OutputKey),
			CompletedAt: &now,
		})
	case "ERROR", "FAILED":
		msg := in.ErrorMsg
		if msg == "" {
			msg = "transcode job failed"
		}
		return u.d.Videos.Update(ctx, in.VideoID, types.VideoUpdate{
			Status: types.Ptr(types.StatusError),
			Phase:  types.Ptr(types.PhaseTranscode),
			Error:  types.Ptr(msg),
		})
	default:
		u.d.Log.Info().Str("videoId", in.VideoID).Str("status", in.JobStatus).
			Msg("transcode job not terminal, ignoring")
		return nil
	}
}

func (u *Usecase) markError(ctx context.Context, videoID, phase string, cause error) {
	uerr := u.d.Videos.Update(ctx, videoID, types.VideoUpdate{
		Status: types.Ptr(types.StatusError),
		Phase:  types.Ptr(phase),
		Error:  types.Ptr(cause.Error()),
	})
	if uerr != nil {
		u.d.Log.Error().Err(uerr).Str("videoId", videoID).Msg("failed to record error status")
	}
}

func objectRef(bucket, key string) string { return bucket + "/" + key }
