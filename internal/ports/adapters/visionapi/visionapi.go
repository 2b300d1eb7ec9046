// Package visionapi is the HTTP client for the managed label-detection
// service. Results are paginated; GetResult concatenates all pages once the
// job has succeeded.
package visionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jianxion/highlightAI/internal/ports"
	"github.com/jianxion/highlightAI/internal/types"
)

const requestTimeout = 30 * time.Second

// minDetectionConfidence is passed to the service; the extractor applies its
// own, stricter filter on top.
const minDetectionConfidence = 70

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
	MediaUri      string   `json:"mediaUri"`
	MinConfidence float64  `json:"minConfidence"`
	Features      []string `json:"features"`
}

type startJobResponse struct {
	JobID string `json:"jobId"`
}

// StartJob submits a label-detection job and returns the service's job ID.
func (a *Adapter) StartJob(ctx context.Context, mediaRef string) (string, error) {
	body, err := json.Marshal(startJobRequest{
		MediaUri:      mediaRef,
		MinConfidence: minDetectionConfidence,
		Features:      []string{"GENERAL_LABELS"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/label-detection", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("start label detection: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("start label detection: %s", readError(resp))
	}

	var out startJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode start response: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("start label detection: empty job id")
	}
	return out.JobID, nil
}

type resultPage struct {
	JobStatus     string `json:"jobStatus"`
	VideoMetadata struct {
		DurationMillis int64 `json:"durationMillis"`
	} `json:"videoMetadata"`
	Labels []struct {
		TimestampMs int64 `json:"timestamp"`
		Label       struct {
			Name       string  `json:"name"`
			Confidence float64 `json:"confidence"`
		} `json:"label"`
	} `json:"labels"`
	NextToken string `json:"nextToken"`
}

// GetResult fetches the job state and, once succeeded, every result page.
func (a *Adapter) GetResult(ctx context.Context, jobID string) (types.LabelResult, ports.JobState, error) {
	var res types.LabelResult
	token := ""

	for {
		page, err := a.fetchPage(ctx, jobID, token)
		if err != nil {
			return types.LabelResult{}, "", err
		}

		switch page.JobStatus {
		case "SUCCEEDED":
		case "FAILED":
			return types.LabelResult{}, ports.JobFailed, nil
		default:
			return types.LabelResult{}, ports.JobRunning, nil
		}

		res.DurationMillis = page.VideoMetadata.DurationMillis
		for _, l := range page.Labels {
			res.Labels = append(res.Labels, types.LabelDetection{
				Name:        l.Label.Name,
				Confidence:  l.Label.Confidence,
				TimestampMs: l.TimestampMs,
			})
		}

		if page.NextToken == "" {
			return res, ports.JobSucceeded, nil
		}
		token = page.NextToken
	}
}

func (a *Adapter) fetchPage(ctx context.Context, jobID, token string) (resultPage, error) {
	endpoint := a.baseURL + "/v1/label-detection/" + url.PathEscape(jobID)
	if token != "" {
		endpoint += "?nextToken=" + url.QueryEscape(token)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return resultPage{}, err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return resultPage{}, fmt.Errorf("get label detection: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resultPage{}, fmt.Errorf("get label detection: %s", readError(resp))
	}

	var page resultPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return resultPage{}, fmt.Errorf("decode label detection: %w", err)
	}
	return page, nil
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
