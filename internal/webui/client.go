// Package webui is a minimal client for the Stable Diffusion WebUI REST API
// (the /sdapi/v1 endpoints served by AUTOMATIC1111 compatible servers).
package webui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is where a locally started WebUI listens with --api.
const DefaultBaseURL = "http://127.0.0.1:7860"

// Config holds the resolved client settings.
type Config struct {
	BaseURL string
	// Auth is "user:password" for servers started with --api-auth.
	Auth        string
	HTTPTimeout time.Duration
	Retry       RetryPolicy
	// RatePerSecond paces requests; zero or negative disables pacing.
	RatePerSecond float64
	Logger        *zerolog.Logger
}

// Client talks to one WebUI server. It is safe for sequential use.
type Client struct {
	baseURL    string
	auth       string
	httpClient *http.Client
	retry      RetryPolicy
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("webui %s: %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("webui %s: status %d", e.Endpoint, e.Status)
}

// NewClient constructs a Client. A zero HTTPTimeout selects 10 minutes,
// since grid requests render many images in one call.
func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	retry := cfg.Retry
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		baseURL:    base,
		auth:       strings.TrimSpace(cfg.Auth),
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
		log:        zerolog.Nop(),
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return c
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// HTTPTimeout returns the configured HTTP timeout.
func (c *Client) HTTPTimeout() time.Duration { return c.httpClient.Timeout }

// Retry returns the configured RetryPolicy.
func (c *Client) Retry() RetryPolicy { return c.retry }

// Txt2Img submits a text-to-image request and decodes the returned images.
func (c *Client) Txt2Img(ctx context.Context, req Txt2ImgRequest) (Result, error) {
	var zero Result
	if strings.TrimSpace(req.Prompt) == "" {
		return zero, errors.New("prompt is required")
	}
	var resp txt2ImgResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sdapi/v1/txt2img", req, &resp); err != nil {
		return zero, err
	}
	if len(resp.Images) == 0 {
		return zero, errors.New("webui returned no images")
	}
	out := Result{Info: resp.Info, Parameters: resp.Parameters, Images: make([][]byte, 0, len(resp.Images))}
	for i, s := range resp.Images {
		b, err := decodeImage(s)
		if err != nil {
			return zero, fmt.Errorf("decode image %d: %w", i+1, err)
		}
		out.Images = append(out.Images, b)
	}
	out.Image = out.Images[0]
	return out, nil
}

// Checkpoints lists the models the server can load.
func (c *Client) Checkpoints(ctx context.Context) ([]Model, error) {
	var models []Model
	if err := c.doJSON(ctx, http.MethodGet, "/sdapi/v1/sd-models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// doJSON performs one API call with the retry policy: transient network
// errors, 429 and 5xx are retried with exponential backoff or Retry-After.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = b
	}
	endpoint := c.baseURL + path
	attempts := c.retry.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
		if err != nil {
			return fmt.Errorf("new request: %w", err)
		}
		if body != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		httpReq.Header.Set("Accept", "application/json")
		if user, pass, ok := strings.Cut(c.auth, ":"); ok {
			httpReq.SetBasicAuth(user, pass)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("http do: %w", err)
			if attempt < attempts-1 && ctx.Err() == nil && isRetryableError(err) {
				if werr := c.wait(ctx, attempt, 0, backoffDuration(c.retry.Backoff, attempt), endpoint, err.Error()); werr != nil {
					return werr
				}
				continue
			}
			return lastErr
		}
		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response body: %w", readErr)
			if attempt < attempts-1 && isRetryableError(readErr) {
				if werr := c.wait(ctx, attempt, resp.StatusCode, backoffDuration(c.retry.Backoff, attempt), endpoint, readErr.Error()); werr != nil {
					return werr
				}
				continue
			}
			return lastErr
		}
		c.log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Dur("elapsed", time.Since(start)).
			Msg("webui response")

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = &StatusError{Endpoint: path, Status: resp.StatusCode, Message: errorMessage(respBody)}
			if attempt < attempts-1 && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) {
				d, ok := retryAfterDuration(resp.Header.Get("Retry-After"), time.Now())
				if !ok {
					d = backoffDuration(c.retry.Backoff, attempt)
				}
				if werr := c.wait(ctx, attempt, resp.StatusCode, d, endpoint, lastErr.Error()); werr != nil {
					return werr
				}
				continue
			}
			return lastErr
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w; body: %s", err, truncate(string(respBody), 500))
		}
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return errors.New("webui request failed without a specific error")
}

func (c *Client) wait(ctx context.Context, attempt, status int, d time.Duration, endpoint, reason string) error {
	c.log.Warn().
		Str("endpoint", endpoint).
		Int("attempt", attempt+1).
		Int("max", c.retry.MaxRetries+1).
		Int("status", status).
		Dur("backoff", d).
		Str("error", truncate(reason, 300)).
		Msg("retrying webui request")
	return sleepFunc(ctx, d)
}

// errorMessage extracts a human readable message from a FastAPI error body.
func errorMessage(body []byte) string {
	var obj map[string]any
	if json.Unmarshal(body, &obj) == nil {
		for _, k := range []string{"detail", "error", "errors"} {
			if s, ok := obj[k].(string); ok && s != "" {
				return s
			}
		}
		if d, ok := obj["detail"]; ok && d != nil {
			if b, err := json.Marshal(d); err == nil {
				return truncate(string(b), 500)
			}
		}
	}
	return truncate(strings.TrimSpace(string(body)), 500)
}

// isRetryableError returns true for transient network errors and timeouts.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe)
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if _, rest, ok := strings.Cut(s, ","); ok {
			s = rest
		}
	}
	return base64.StdEncoding.DecodeString(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
