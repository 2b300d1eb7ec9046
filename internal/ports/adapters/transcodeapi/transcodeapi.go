// Package transcodeapi is the HTTP client for the managed transcoding
// service that extracts and concatenates the clip ranges.
package transcodeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jianxion/highlightAI/internal/domain/clipplan"
)

const requestTimeout = 30 * time.Second

type Adapter struct {
	baseURL string
	key     string
	client  *http.Client
}

func New(baseURL, apiKey string) *Adapter {
	return &Adapter{
		baseURL: normalizeBaseURL(baseURL),
		key:     apiKey,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type createJobRequest struct {
	clipplan.Job
	Metadata           map[string]string `json:"metadata,omitempty"`
	ClientRequestToken string            `json:"clientRequestToken"`
}

type createJobResponse struct {
	JobID string `json:"jobId"`
}

// CreateJob submits the job description. The client request token makes a
// retried submission idempotent on the service side.
func (a *Adapter) CreateJob(ctx context.Context, job clipplan.Job, metadata map[string]string) (string, error) {
	if len(job.Clips) == 0 {
		return "", fmt.Errorf("transcodeapi: job has no clip ranges")
	}

	body, err := json.Marshal(createJobRequest{
		Job:                job,
		Metadata:           metadata,
		ClientRequestToken: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if a.key != "" {
		req.Header.Set("Authorization", "Bearer "+a.key)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create transcode job: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("create transcode job: status %d: %s", resp.StatusCode, string(b))
	}

	var out createJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode job response: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("create transcode job: empty job id")
	}
	return out.JobID, nil
}

func normalizeBaseURL(u string) string {
	for len(u) > 0 && u[len(u)-1] == '/' {
		u = u[:len(u)-1]
	}
	return u
}
