package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

const (
	maxRetries  = 3
	initialWait = time.Second
	maxWait     = 20 * time.Second
)

// Client talks to the OpenAI API (or any compatible endpoint) for Whisper
// transcription and GPT classification. Transient failures are retried
// with exponential backoff.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string

	whisperModel string
	chatModel    string
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		// Whisper uploads of hour-long audio are slow; the per-request
		// timeout has to cover them.
		httpClient:   &http.Client{Timeout: 10 * time.Minute},
		apiKey:       apiKey,
		baseURL:      baseURL,
		whisperModel: "whisper-1",
		chatModel:    "gpt-4",
	}
}

// post sends body with the given content type and decodes the JSON
// response into out, retrying transient failures. The body is buffered
// up front so each attempt can resend it.
func (c *Client) post(ctx context.Context, path, contentType string, body []byte, out any) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			wait := initialWait << (attempt - 1)
			if wait > maxWait {
				wait = maxWait
			}
			log.Printf("openai: retrying %s (attempt %d/%d) after %s: %v", path, attempt, maxRetries, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retryable, err := c.doOnce(ctx, path, contentType, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, path, contentType string, body []byte, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("openai: %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
		return isRetryableStatus(resp.StatusCode), err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("openai: %s: decode response: %w", path, err)
	}
	return false, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
