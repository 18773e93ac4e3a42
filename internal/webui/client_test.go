//nolint:errcheck // Tests elide error checks on JSON encoders where not relevant to the assertion under test.
package webui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/sdutils/internal/testutil"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	orig := sleepFunc
	var slept []time.Duration
	sleepFunc = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	t.Cleanup(func() { sleepFunc = orig })
	return &slept
}

func TestTxt2Img_HappyPath(t *testing.T) {
	srv := testutil.NewFakeWebUI(t)
	c := NewClient(Config{BaseURL: srv.URL + "/", Auth: "alice:s3cret"})
	res, err := c.Txt2Img(context.Background(), Txt2ImgRequest{
		Prompt:      "a castle",
		Seed:        555,
		SamplerName: "Euler a",
		Steps:       20,
		CFGScale:    7,
		Width:       512,
		Height:      512,
		ScriptName:  "X/Y/Z Plot",
		ScriptArgs:  []any{1, "555", 10, "a.ckpt,b.ckpt", 0, "", true, false, false, false, 0},
		SendImages:  true,
	})
	if err != nil {
		t.Fatalf("Txt2Img: %v", err)
	}
	if !bytes.Equal(res.Image, srv.Image) || len(res.Images) != 1 {
		t.Fatalf("image mismatch: got %d bytes", len(res.Image))
	}
	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests", len(reqs))
	}
	r := reqs[0]
	if r["prompt"] != "a castle" || r["seed"].(float64) != 555 || r["sampler_name"] != "Euler a" || r["script_name"] != "X/Y/Z Plot" {
		t.Fatalf("unexpected payload: %+v", r)
	}
	args := r["script_args"].([]any)
	if len(args) != 11 || args[3] != "a.ckpt,b.ckpt" || args[6] != true {
		t.Fatalf("unexpected script args: %v", args)
	}
	if auth := srv.Auth(); len(auth) != 1 || auth[0] != "alice:s3cret" {
		t.Fatalf("auth=%v", auth)
	}
}

func TestTxt2Img_RequiresPrompt(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := c.Txt2Img(context.Background(), Txt2ImgRequest{Prompt: "  "}); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

// TestTxt2Img_NoRetryByDefault asserts a 5xx aborts immediately with zero retries.
func TestTxt2Img_NoRetryByDefault(t *testing.T) {
	srv := testutil.NewFakeWebUI(t)
	srv.FailOn = 1
	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Txt2Img(context.Background(), Txt2ImgRequest{Prompt: "x"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err=%v; want StatusError", err)
	}
	if se.Status != http.StatusInternalServerError || se.Message != "fake failure" {
		t.Fatalf("unexpected status error: %+v", se)
	}
	if n := len(srv.Requests()); n != 1 {
		t.Fatalf("got %d attempts; want 1", n)
	}
}

// TestTxt2Img_RetriesOn503ThenSucceeds covers the opt-in retry policy with Retry-After.
func TestTxt2Img_RetriesOn503ThenSucceeds(t *testing.T) {
	slept := noSleep(t)
	png := testutil.PNG(t, 2, 2)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if n == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"images": []string{"data:image/png;base64," + base64.StdEncoding.EncodeToString(png)}})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: RetryPolicy{MaxRetries: 2, Backoff: 100 * time.Millisecond}})
	res, err := c.Txt2Img(context.Background(), Txt2ImgRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Txt2Img: %v", err)
	}
	if !bytes.Equal(res.Image, png) {
		t.Fatalf("data URL image not decoded")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls=%d; want 3", calls)
	}
	want := []time.Duration{3 * time.Second, 200 * time.Millisecond}
	if len(*slept) != 2 || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Fatalf("slept=%v; want %v", *slept, want)
	}
}

func TestTxt2Img_NoRetryOn4xx(t *testing.T) {
	noSleep(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"detail": []map[string]any{{"msg": "field required"}}})
	}))
	defer srv.Close()
	c := NewClient(Config{BaseURL: srv.URL, Retry: RetryPolicy{MaxRetries: 3}})
	_, err := c.Txt2Img(context.Background(), Txt2ImgRequest{Prompt: "x"})
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusUnprocessableEntity {
		t.Fatalf("err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d; want 1", calls)
	}
	if se.Message == "" {
		t.Fatalf("expected detail in message")
	}
}

func TestTxt2Img_NoImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"images": []string{}})
	}))
	defer srv.Close()
	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.Txt2Img(context.Background(), Txt2ImgRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error when no images returned")
	}
}

func TestCheckpoints(t *testing.T) {
	srv := testutil.NewFakeWebUI(t)
	srv.Models = []map[string]any{
		{"title": "model_gs5.ckpt [abc123]", "model_name": "model_gs5", "filename": "/m/model_gs5.ckpt"},
	}
	c := NewClient(Config{BaseURL: srv.URL})
	models, err := c.Checkpoints(context.Background())
	if err != nil {
		t.Fatalf("Checkpoints: %v", err)
	}
	if len(models) != 1 || models[0].ModelName != "model_gs5" {
		t.Fatalf("models=%+v", models)
	}
	if !HasCheckpoint(models, "model_gs5.ckpt") || HasCheckpoint(models, "other.ckpt") {
		t.Fatalf("HasCheckpoint mismatch")
	}
}

func TestRateLimit_PacesRequests(t *testing.T) {
	srv := testutil.NewFakeWebUI(t)
	c := NewClient(Config{BaseURL: srv.URL, RatePerSecond: 20})
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Txt2Img(context.Background(), Txt2ImgRequest{Prompt: "x"}); err != nil {
			t.Fatalf("Txt2Img: %v", err)
		}
	}
	// burst of 1 at 20 rps: the 2nd and 3rd call wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("requests not paced: %v", elapsed)
	}
}

func TestRetryAfterDuration(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if d, ok := retryAfterDuration("2", now); !ok || d != 2*time.Second {
		t.Fatalf("seconds: %v %v", d, ok)
	}
	if d, ok := retryAfterDuration(now.Add(5*time.Second).Format(http.TimeFormat), now); !ok || d != 5*time.Second {
		t.Fatalf("http-date: %v %v", d, ok)
	}
	if _, ok := retryAfterDuration("soon", now); ok {
		t.Fatalf("garbage accepted")
	}
	if backoffDuration(0, 0) != 200*time.Millisecond || backoffDuration(time.Second, 10) != 10*time.Second {
		t.Fatalf("unexpected backoff durations")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{Retry: RetryPolicy{MaxRetries: -3}})
	if c.BaseURL() != DefaultBaseURL || c.HTTPTimeout() != 10*time.Minute || c.Retry().MaxRetries != 0 {
		t.Fatalf("defaults: %s %v %+v", c.BaseURL(), c.HTTPTimeout(), c.Retry())
	}
}
