package testutil

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeWebUI is an httptest server speaking the subset of the WebUI API the
// tools use: POST /sdapi/v1/txt2img and GET /sdapi/v1/sd-models.
type FakeWebUI struct {
	*httptest.Server

	mu       sync.Mutex
	requests    []map[string]any
	auth        []string
	modelsCalls int

	// Image is returned (base64) for every successful txt2img call.
	Image []byte
	// Models is served from sd-models.
	Models []map[string]any
	// FailOn makes the n-th txt2img call (1-based) answer FailStatus.
	FailOn     int
	FailStatus int
}

// NewFakeWebUI starts a fake server returning a small PNG. It is closed
// automatically at test cleanup.
func NewFakeWebUI(t *testing.T) *FakeWebUI {
	t.Helper()
	f := &FakeWebUI{Image: PNG(t, 8, 8), FailStatus: http.StatusInternalServerError}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeWebUI) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, pass, ok := r.BasicAuth(); ok {
		f.auth = append(f.auth, user+":"+pass)
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/sdapi/v1/sd-models":
		f.modelsCalls++
		models := f.Models
		if models == nil {
			models = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(models)
	case r.Method == http.MethodPost && r.URL.Path == "/sdapi/v1/txt2img":
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{"detail": "bad json: " + err.Error()})
			return
		}
		f.requests = append(f.requests, req)
		if f.FailOn > 0 && len(f.requests) == f.FailOn {
			w.WriteHeader(f.FailStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "RuntimeError", "detail": "fake failure"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"images":     []string{base64.StdEncoding.EncodeToString(f.Image)},
			"parameters": req,
			"info":       `{"seed": 1}`,
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"detail": "Not Found"})
	}
}

// Requests returns the decoded txt2img bodies received so far.
func (f *FakeWebUI) Requests() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, len(f.requests))
	copy(out, f.requests)
	return out
}

// Auth returns the basic auth credentials seen, as "user:pass".
func (f *FakeWebUI) Auth() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...)
}

// ModelsCalls returns how many times sd-models was requested.
func (f *FakeWebUI) ModelsCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modelsCalls
}
