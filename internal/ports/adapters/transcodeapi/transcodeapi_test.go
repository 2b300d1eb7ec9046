package transcodeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianxion/highlightAI/internal/domain/clipplan"
	"github.com/jianxion/highlightAI/internal/types"
)

func sampleJob() clipplan.Job {
	return clipplan.Build(
		"raw/uploads/v1.mp4",
		[]types.KeyMoment{{Start: 10, End: 15}},
		"edited/v1_out",
		"",
		"",
	)
}

func TestCreateJob(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/jobs", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(createJobResponse{JobID: "mc-7"})
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	id, err := a.CreateJob(context.Background(), sampleJob(), map[string]string{"videoId": "v1"})
	require.NoError(t, err)
	assert.Equal(t, "mc-7", id)

	assert.Equal(t, "raw/uploads/v1.mp4", got["inputFile"])
	assert.NotEmpty(t, got["clientRequestToken"])
	meta, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v1", meta["videoId"])
}

func TestCreateJob_FreshTokenPerSubmission(t *testing.T) {
	tokens := map[string]struct{}{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		tokens[req["clientRequestToken"].(string)] = struct{}{}
		json.NewEncoder(w).Encode(createJobResponse{JobID: "mc-7"})
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	for i := 0; i < 3; i++ {
		_, err := a.CreateJob(context.Background(), sampleJob(), nil)
		require.NoError(t, err)
	}
	assert.Len(t, tokens, 3)
}

func TestCreateJob_NoClips(t *testing.T) {
	a := New("http://unused", "")
	_, err := a.CreateJob(context.Background(), clipplan.Job{}, nil)
	require.Error(t, err)
}

func TestCreateJob_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	_, err := a.CreateJob(context.Background(), sampleJob(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
