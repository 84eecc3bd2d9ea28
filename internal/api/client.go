package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwulff/transcript-review/internal/observability"
	"github.com/jwulff/transcript-review/internal/transcript"
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Options tune a Client. Zero values pick defaults.
type Options struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	HTTPClient     *http.Client
}

// Client talks to the backend under baseURL + "/api".
type Client struct {
	baseURL        string
	http           *http.Client
	maxAttempts    int
	initialBackoff time.Duration
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := opts.InitialBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/") + "/api",
		http:           hc,
		maxAttempts:    attempts,
		initialBackoff: backoff,
	}
}

// AudioURL returns the streaming URL for an audio file.
func (c *Client) AudioURL(name string) string {
	return c.baseURL + "/audio/" + url.PathEscape(name)
}

// ListAudioFiles returns every audio file known to the backend.
func (c *Client) ListAudioFiles(ctx context.Context) ([]AudioFile, error) {
	var resp AudioFilesResponse
	if err := c.get(ctx, "audio-files", "/audio-files", &resp); err != nil {
		return nil, err
	}
	return resp.AudioFiles, nil
}

// Transcribe starts transcription of name. It is not retried.
func (c *Client) Transcribe(ctx context.Context, name string) (TranscribeResponse, error) {
	var resp TranscribeResponse
	err := c.do(ctx, http.MethodPost, "transcribe", "/transcribe/"+url.PathEscape(name), &resp)
	return resp, err
}

// Transcript fetches the transcript for name.
func (c *Client) Transcript(ctx context.Context, name string) (*transcript.Transcript, error) {
	var tr transcript.Transcript
	if err := c.get(ctx, "transcript", "/transcript/"+url.PathEscape(name), &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Status returns the job status for name.
func (c *Client) Status(ctx context.Context, name string) (StatusResponse, error) {
	var resp StatusResponse
	err := c.get(ctx, "status", "/status/"+url.PathEscape(name), &resp)
	return resp, err
}

// Health reports whether the backend is up and its models are loaded.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.get(ctx, "health", "/health", &resp)
	return resp, err
}

// get performs an idempotent request with retries on network errors and 5xx.
func (c *Client) get(ctx context.Context, endpoint, path string, out any) error {
	backoff := c.initialBackoff
	var err error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		err = c.do(ctx, http.MethodGet, endpoint, path, out)
		if err == nil || !retryable(err) || attempt == c.maxAttempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := observability.NewRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logger := observability.Logger()
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		observability.RecordAPIRequest(endpoint, 0, elapsed)
		logger.Warn().Err(err).Str("request_id", requestID).Str("method", method).
			Str("path", path).Dur("latency", elapsed).Msg("backend request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	observability.RecordAPIRequest(endpoint, resp.StatusCode, elapsed)
	logger.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("latency", elapsed).Msg("backend request")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	// Transport failures (connection refused, reset) are wrapped url.Errors.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
