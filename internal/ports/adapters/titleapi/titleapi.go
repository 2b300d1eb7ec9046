// Package titleapi proposes video titles through an OpenAI-style
// chat-completions endpoint that accepts inline images.
package titleapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const requestTimeout = 90 * time.Second

type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = "gemini-flash-latest"
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Minute}}
}

// Suggest sends the sampled frames plus the transcript excerpt and returns
// the model's title, quotes and newlines stripped. The caller treats any
// error as "use the default title".
func (a *Adapter) Suggest(ctx context.Context, frames [][]byte, transcriptExcerpt string) (string, error) {
	if len(frames) == 0 {
		return "", errors.New("titleapi: no frames")
	}

	parts := []map[string]any{
		{"type": "text", "text": buildPrompt(len(frames), transcriptExcerpt)},
	}
	for _, f := range frames {
		parts = append(parts, map[string]any{
			"type": "image_url",
			"image_url": map[string]any{
				"url": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(f),
			},
		})
	}

	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": parts},
		},
		"temperature": 0.3,
		"top_p":       0.8,
		"max_tokens":  50,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", a.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("titleapi timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("titleapi status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("titleapi status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("titleapi: empty choices")
	}

	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}

	title := strings.ReplaceAll(content, `"`, "")
	title = strings.ReplaceAll(title, "'", "")
	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("titleapi: empty title")
	}
	return title, nil
}

func buildPrompt(frameCount int, transcriptExcerpt string) string {
	if strings.TrimSpace(transcriptExcerpt) == "" {
		transcriptExcerpt = "No speech detected."
	}
	return fmt.Sprintf(`You are a professional video editor analyzing video content.

VIDEO FRAMES: You will see %d frames from the video.
AUDIO TRANSCRIPT: %s

TASK: Create a single, engaging, factual title (max 12 words) for this video clip.

INSTRUCTIONS:
1. Describe EXACTLY what you see happening in the frames
2. Be specific and accurate - avoid generic terms
3. If this is a video game, mention the game type (FPS, battle royale, etc.)
4. If this is real life, describe the actual activity or event
5. Use action-oriented language
6. Do NOT use placeholder phrases or generic examples
7. Be factual and objective

OUTPUT: Only the title text, nothing else.`, frameCount, transcriptExcerpt)
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("titleapi: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("titleapi: unexpected content type %T", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
