// Package speechapi is the HTTP client for the managed speech-to-text
// service. Jobs run asynchronously; the word-level result document is
// written by the service to the shared object store.
package speechapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jianxion/highlightAI/internal/ports"
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

type startJobRequest struct {
	JobName      string `json:"jobName"`
	MediaUri     string `json:"mediaUri"`
	LanguageCode string `json:"languageCode"`
	OutputKey    string `json:"outputKey"`
}

// StartJob submits a transcription job. A conflict response means a job with
// this name already exists, which counts as success: job names encode the
// video ID, so a retriggered upload must not fail here.
func (a *Adapter) StartJob(ctx context.Context, jobName, mediaRef, resultKey string) error {
	body, err := json.Marshal(startJobRequest{
		JobName:      jobName,
		MediaUri:     mediaRef,
		LanguageCode: "en-US",
		OutputKey:    resultKey,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/transcriptions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("start transcription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("start transcription: %s", readError(resp))
	}
	return nil
}

type jobStatusResponse struct {
	TranscriptionJobStatus string `json:"transcriptionJobStatus"`
}

// JobStatus reports the normalized state of a transcription job.
func (a *Adapter) JobStatus(ctx context.Context, jobName string) (ports.JobState, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", a.baseURL+"/v1/transcriptions/"+jobName, nil)
	if err != nil {
		return "", err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get transcription job: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("get transcription job: %s", readError(resp))
	}

	var out jobStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode transcription job: %w", err)
	}

	switch out.TranscriptionJobStatus {
	case "COMPLETED":
		return ports.JobSucceeded, nil
	case "FAILED":
		return ports.JobFailed, nil
	default:
		return ports.JobRunning, nil
	}
}

func (a *Adapter) setHeaders(req *http.Request) {
	if a.key != "" {
		req.Header.Set("Authorization", "Bearer "+a.key)
	}
	req.Header.Set("Content-Type", "application/json")
}

func readError(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(b) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, string(b))
}

func normalizeBaseURL(u string) string {
	for len(u) > 0 && u[len(u)-1] == '/' {
		u = u[:len(u)-1]
	}
	return u
}
