package visionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianxion/highlightAI/internal/ports"
)

func TestStartJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/label-detection", r.URL.Path)
		var req startJobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "raw/uploads/v1.mp4", req.MediaUri)
		assert.Equal(t, 70.0, req.MinConfidence)
		json.NewEncoder(w).Encode(startJobResponse{JobID: "job-42"})
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	id, err := a.StartJob(context.Background(), "raw/uploads/v1.mp4")
	require.NoError(t, err)
	assert.Equal(t, "job-42", id)
}

func TestStartJob_EmptyJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(startJobResponse{})
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	_, err := a.StartJob(context.Background(), "ref")
	require.Error(t, err)
}

func TestGetResult_Running(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobStatus":"IN_PROGRESS"}`)
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	_, state, err := a.GetResult(context.Background(), "job-42")
	require.NoError(t, err)
	assert.Equal(t, ports.JobRunning, state)
}

func TestGetResult_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobStatus":"FAILED"}`)
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	_, state, err := a.GetResult(context.Background(), "job-42")
	require.NoError(t, err)
	assert.Equal(t, ports.JobFailed, state)
}

func TestGetResult_PaginatedSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/label-detection/job-42", r.URL.Path)
		if r.URL.Query().Get("nextToken") == "" {
			fmt.Fprint(w, `{
				"jobStatus":"SUCCEEDED",
				"videoMetadata":{"durationMillis":120000},
				"labels":[{"timestamp":1000,"label":{"name":"Sports","confidence":92.5}}],
				"nextToken":"page2"
			}`)
			return
		}
		fmt.Fprint(w, `{
			"jobStatus":"SUCCEEDED",
			"videoMetadata":{"durationMillis":120000},
			"labels":[{"timestamp":2000,"label":{"name":"Running","confidence":88.0}}]
		}`)
	}))
	defer srv.Close()

	a := New(srv.URL, "")
	res, state, err := a.GetResult(context.Background(), "job-42")
	require.NoError(t, err)
	assert.Equal(t, ports.JobSucceeded, state)
	assert.Equal(t, int64(120000), res.DurationMillis)
	require.Len(t, res.Labels, 2)
	assert.Equal(t, "Sports", res.Labels[0].Name)
	assert.Equal(t, int64(1000), res.Labels[0].TimestampMs)
	assert.Equal(t, 92.5, res.Labels[0].Confidence)
	assert.Equal(t, "Running", res.Labels[1].Name)
}
