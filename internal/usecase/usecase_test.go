package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianxion/highlightAI/internal/domain/clipplan"
	"github.com/jianxion/highlightAI/internal/ports"
	"github.com/jianxion/highlightAI/internal/types"
)

type fakeSpeech struct {
	startErr  error
	state     ports.JobState
	stateErr  error
	startedAs string
}

func (f *fakeSpeech) StartJob(ctx context.Context, jobName, mediaRef, resultKey string) error {
	f.startedAs = jobName
	return f.startErr
}

func (f *fakeSpeech) JobStatus(ctx context.Context, jobName string) (ports.JobState, error) {
	return f.state, f.stateErr
}

type fakeVision struct {
	jobID    string
	startErr error
	result   types.LabelResult
	states   []ports.JobState // consumed per GetResult call; last repeats
	calls    int
}

func (f *fakeVision) StartJob(ctx context.Context, mediaRef string) (string, error) {
	return f.jobID, f.startErr
}

func (f *fakeVision) GetResult(ctx context.Context, jobID string) (types.LabelResult, ports.JobState, error) {
	i := f.calls
	if i >= len(f.states) {
		i = len(f.states) - 1
	}
	f.calls++
	state := f.states[i]
	if state == ports.JobSucceeded {
		return f.result, state, nil
	}
	return types.LabelResult{}, state, nil
}

type fakeTranscoder struct {
	jobID   string
	err     error
	lastJob clipplan.Job
	called  bool
}

func (f *fakeTranscoder) CreateJob(ctx context.Context, job clipplan.Job, metadata map[string]string) (string, error) {
	f.called = true
	f.lastJob = job
	return f.jobID, f.err
}

type fakeStore struct {
	objects map[string][]byte
	getErr  map[string]error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, getErr: map[string]error{}}
}

func (f *fakeStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	ref := bucket + "/" + key
	if err := f.getErr[ref]; err != nil {
		return nil, err
	}
	b, ok := f.objects[ref]
	if !ok {
		return nil, fmt.Errorf("object %s not found", ref)
	}
	return b, nil
}

func (f *fakeStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[bucket+"/"+key] = body
	return nil
}

type fakeVideos struct {
	records map[string]*types.VideoRecord
	updates []types.VideoUpdate
	getErr  error
}

func newFakeVideos(recs ...*types.VideoRecord) *fakeVideos {
	f := &fakeVideos{records: map[string]*types.VideoRecord{}}
	for _, r := range recs {
		f.records[r.VideoID] = r
	}
	return f
}

func (f *fakeVideos) Get(ctx context.Context, videoID string) (*types.VideoRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.records[videoID]
	if !ok {
		return nil, errors.New("video not found")
	}
	return r, nil
}

func (f *fakeVideos) Create(ctx context.Context, rec *types.VideoRecord) error {
	f.records[rec.VideoID] = rec
	return nil
}

func (f *fakeVideos) Update(ctx context.Context, videoID string, upd types.VideoUpdate) error {
	f.updates = append(f.updates, upd)
	return nil
}

func (f *fakeVideos) lastStatus() types.VideoStatus {
	for i := len(f.updates) - 1; i >= 0; i-- {
		if f.updates[i].Status != nil {
			return *f.updates[i].Status
		}
	}
	return ""
}

type fakeTitles struct {
	title string
	err   error
}

func (f *fakeTitles) Suggest(ctx context.Context, frames [][]byte, excerpt string) (string, error) {
	return f.title, f.err
}

type fakeFrames struct {
	frames [][]byte
	err    error
}

func (f *fakeFrames) Sample(ctx context.Context, videoPath string, count int) ([][]byte, error) {
	return f.frames, f.err
}

type fakeOverlay struct {
	png []byte
	err error
}

func (f *fakeOverlay) Render(title string) ([]byte, error) {
	return f.png, f.err
}

const transcriptJSON = `{"results":{
	"transcripts":[{"transcript":"what an amazing goal right there"}],
	"items":[
		{"type":"pronunciation","start_time":"40.0","end_time":"40.3","alternatives":[{"content":"what","confidence":"0.95"}]},
		{"type":"pronunciation","start_time":"40.4","end_time":"40.6","alternatives":[{"content":"an","confidence":"0.95"}]},
		{"type":"pronunciation","start_time":"40.7","end_time":"41.2","alternatives":[{"content":"amazing","confidence":"0.9"}]},
		{"type":"pronunciation","start_time":"41.3","end_time":"41.8","alternatives":[{"content":"goal","confidence":"0.9"}]},
		{"type":"punctuation","alternatives":[{"content":"!"}]}
	]}}`

type fixture struct {
	speech  *fakeSpeech
	vision  *fakeVision
	trans   *fakeTranscoder
	store   *fakeStore
	videos  *fakeVideos
	sleeps  int
	usecase *Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		speech: &fakeSpeech{state: ports.JobSucceeded},
		vision: &fakeVision{
			jobID:  "vision-1",
			states: []ports.JobState{ports.JobSucceeded},
			result: types.LabelResult{
				DurationMillis: 120_000,
				Labels: []types.LabelDetection{
					{Name: "Sports", Confidence: 92, TimestampMs: 60_000},
				},
			},
		},
		trans:  &fakeTranscoder{jobID: "mc-1"},
		store:  newFakeStore(),
		videos: newFakeVideos(&types.VideoRecord{
			VideoID:     "v1",
			Status:      types.StatusAnalyzing,
			Bucket:      "raw",
			Key:         "uploads/v1.mp4",
			SpeechJobID: "transcribe-v1",
			VisionJobID: "vision-1",
		}),
	}
	f.store.objects["raw/transcripts/v1.json"] = []byte(transcriptJSON)
	f.store.objects["raw/uploads/v1.mp4"] = []byte("fake video bytes")

	deps := Deps{
		Speech:     f.speech,
		Vision:     f.vision,
		Transcoder: f.trans,
		Store:      f.store,
		Videos:     f.videos,
		Titles:     &fakeTitles{title: "Epic FPS Victory"},
		Frames:     &fakeFrames{frames: [][]byte{{1}, {2}, {3}, {4}, {5}}},
		Overlay:    &fakeOverlay{png: []byte("png")},
		Log:        zerolog.Nop(),
		Sleep:      func(time.Duration) { f.sleeps++ },
	}
	f.usecase = New(deps, "raw", "edited")
	return f
}

func TestConsolidate_HappyPath(t *testing.T) {
	f := newFixture(t)

	res, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{
		JobName:   "transcribe-v1",
		JobStatus: "COMPLETED",
	})
	require.NoError(t, err)

	assert.Equal(t, "v1", res.VideoID)
	assert.Equal(t, "mc-1", res.TranscodeJobID)
	assert.Equal(t, "Epic FPS Victory", res.Title)
	require.NotEmpty(t, res.KeyMoments)
	assert.LessOrEqual(t, res.KeyMoments.TotalDuration(), 22.0)

	// Subtitles and overlay uploaded.
	assert.Contains(t, f.store.objects, "raw/subtitles/v1.srt")
	assert.Contains(t, f.store.objects, "edited/overlays/v1_title.png")

	// Transcode job carries the preset and the sanitized destination.
	require.True(t, f.trans.called)
	assert.Equal(t, 1080, f.trans.lastJob.Width)
	assert.Equal(t, "raw/uploads/v1.mp4", f.trans.lastJob.InputFile)
	assert.Equal(t, "edited/v1_Epic_FPS_Victory_highlights", f.trans.lastJob.Destination)
	assert.NotEmpty(t, f.trans.lastJob.Clips)

	assert.Equal(t, types.StatusEditing, f.videos.lastStatus())
}

func TestConsolidate_NotificationNotTerminal(t *testing.T) {
	f := newFixture(t)

	_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{
		JobName:   "transcribe-v1",
		JobStatus: "IN_PROGRESS",
	})
	require.ErrorIs(t, err, ErrNotReady)
	assert.Empty(t, f.videos.updates, "record must not be touched")
	assert.False(t, f.trans.called)
}

func TestConsolidate_SpeechStillRunning(t *testing.T) {
	f := newFixture(t)
	f.speech.state = ports.JobRunning

	_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.ErrorIs(t, err, ErrNotReady)
	// Not-ready is a normal early return, never an ERROR write.
	assert.NotEqual(t, types.StatusError, f.videos.lastStatus())
}

func TestConsolidate_SpeechFailed(t *testing.T) {
	f := newFixture(t)
	f.speech.state = ports.JobFailed

	_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.ErrorIs(t, err, ErrUpstreamFailed)
	assert.Equal(t, types.StatusError, f.videos.lastStatus())
}

func TestConsolidate_VisionFailed(t *testing.T) {
	f := newFixture(t)
	f.vision.states = []ports.JobState{ports.JobFailed}

	_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.ErrorIs(t, err, ErrUpstreamFailed)
	assert.Equal(t, types.StatusError, f.videos.lastStatus())
}

func TestConsolidate_VisionPollsThenSucceeds(t *testing.T) {
	f := newFixture(t)
	f.vision.states = []ports.JobState{ports.JobRunning, ports.JobRunning, ports.JobSucceeded}

	_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.vision.calls)
	assert.Equal(t, 2, f.sleeps)
}

func TestConsolidate_VisionTimeout(t *testing.T) {
	f := newFixture(t)
	f.vision.states = []ports.JobState{ports.JobRunning}

	_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 150, f.vision.calls)
	assert.Equal(t, types.StatusError, f.videos.lastStatus())
}

func TestConsolidate_MalformedJobName(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"", "transcribe-", "something-v1"} {
		_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: name})
		require.ErrorIs(t, err, ErrMalformedJobName, "job name %q", name)
	}
	assert.Empty(t, f.videos.updates)
}

func TestConsolidate_TitleDegradesToDefault(t *testing.T) {
	f := newFixture(t)
	f.store.getErr["raw/uploads/v1.mp4"] = errors.New("gone")

	res, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.NoError(t, err)
	assert.Equal(t, "Highlight Video", res.Title)
	assert.True(t, strings.HasSuffix(f.trans.lastJob.Destination, "v1_Highlight_Video_highlights"))
}

func TestConsolidate_FallbackWhenNoSignal(t *testing.T) {
	f := newFixture(t)
	f.store.objects["raw/transcripts/v1.json"] = []byte(`{"results":{"transcripts":[{"transcript":""}],"items":[]}}`)
	f.vision.result = types.LabelResult{DurationMillis: 10_000}

	res, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.NoError(t, err)
	require.Len(t, res.KeyMoments, 1)
	assert.Equal(t, 0.0, res.KeyMoments[0].Start)
	assert.Equal(t, 5.0, res.KeyMoments[0].End)
}

func TestConsolidate_NoCaptionsWhenTranscriptEmpty(t *testing.T) {
	f := newFixture(t)
	f.store.objects["raw/transcripts/v1.json"] = []byte(`{"results":{"transcripts":[{"transcript":""}],"items":[]}}`)

	_, err := f.usecase.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.NoError(t, err)
	assert.NotContains(t, f.store.objects, "raw/subtitles/v1.srt")
	assert.Empty(t, f.trans.lastJob.SubtitleRef)
	assert.Nil(t, f.trans.lastJob.CaptionStyle)
}

func TestConsolidate_OverlayFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	deps := Deps{
		Speech:     f.speech,
		Vision:     f.vision,
		Transcoder: f.trans,
		Store:      f.store,
		Videos:     f.videos,
		Titles:     &fakeTitles{title: "T"},
		Frames:     &fakeFrames{frames: [][]byte{{1}}},
		Overlay:    &fakeOverlay{err: errors.New("render broke")},
		Log:        zerolog.Nop(),
		Sleep:      func(time.Duration) {},
	}
	uc := New(deps, "raw", "edited")

	_, err := uc.Consolidate(context.Background(), ConsolidateInput{JobName: "transcribe-v1"})
	require.NoError(t, err)
	assert.Nil(t, f.trans.lastJob.Overlay)
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)

	err := f.usecase.Analyze(context.Background(), AnalyzeInput{
		VideoID:  "v1",
		Bucket:   "raw",
		Key:      "uploads/v1.mp4",
		FileSize: 123,
	})
	require.NoError(t, err)

	assert.Equal(t, "transcribe-v1", f.speech.startedAs)
	require.Len(t, f.videos.updates, 1)
	upd := f.videos.updates[0]
	require.NotNil(t, upd.Status)
	assert.Equal(t, types.StatusAnalyzing, *upd.Status)
	require.NotNil(t, upd.VisionJobID)
	assert.Equal(t, "vision-1", *upd.VisionJobID)
}

func TestAnalyze_MissingFields(t *testing.T) {
	f := newFixture(t)
	err := f.usecase.Analyze(context.Background(), AnalyzeInput{VideoID: "v1"})
	require.Error(t, err)
	assert.Empty(t, f.videos.updates)
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus types.VideoStatus
		wantUpdate bool
	}{
		{"complete", "COMPLETE", types.StatusCompleted, true},
		{"completed alias", "COMPLETED", types.StatusCompleted, true},
		{"error", "ERROR", types.StatusError, true},
		{"failed alias", "FAILED", types.StatusError, true},
		{"non-terminal ignored", "PROGRESSING", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.usecase.Finalize(context.Background(), FinalizeInput{
				VideoID:   "v1",
				JobStatus: tt.status,
				OutputKey: "v1_out.mp4",
			})
			require.NoError(t, err)
			if !tt.wantUpdate {
				assert.Empty(t, f.videos.updates)
				return
			}
			assert.Equal(t, tt.wantStatus, f.videos.lastStatus())
		})
	}
}

func TestVideoIDFromJobName(t *testing.T) {
	id, err := VideoIDFromJobName("transcribe-abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	assert.Equal(t, "transcribe-abc", SpeechJobName("abc"))
}
