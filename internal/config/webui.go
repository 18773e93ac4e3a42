package config

import (
	"fmt"
	"time"
)

const (
	DefaultBaseURL      = "http://127.0.0.1:7860"
	DefaultHTTPTimeout  = 10 * time.Minute
	DefaultRetryBackoff = 500 * time.Millisecond
)

// WebUIFlags carries the WebUI related flag values together with whether
// each one was explicitly set on the command line.
type WebUIFlags struct {
	BaseURL         string
	BaseURLSet      bool
	Auth            string
	AuthSet         bool
	HTTPTimeout     time.Duration
	HTTPTimeoutSet  bool
	HTTPRetries     int
	HTTPRetriesSet  bool
	RetryBackoff    time.Duration
	RetryBackoffSet bool
	Rate            float64
	RateSet         bool
}

// WebUI is the resolved connection configuration.
type WebUI struct {
	BaseURL      string
	Auth         string
	HTTPTimeout  time.Duration
	HTTPRetries  int
	RetryBackoff time.Duration
	Rate         float64

	// Sources records where each value came from, keyed by setting name.
	Sources map[string]string
}

// ResolveWebUI resolves the WebUI settings with precedence
// flag > env > file > default.
func ResolveWebUI(fl WebUIFlags, file WebUIFile) (WebUI, error) {
	out := WebUI{Sources: map[string]string{}}
	var src string
	var err error

	out.BaseURL, src = ResolveString(fl.BaseURL, fl.BaseURLSet, EnvBaseURL, file.BaseURL, DefaultBaseURL)
	out.Sources["base_url"] = src
	out.Auth, src = ResolveString(fl.Auth, fl.AuthSet, EnvAuth, file.Auth, "")
	out.Sources["auth"] = src

	if out.HTTPTimeout, src, err = ResolveDuration(fl.HTTPTimeout, fl.HTTPTimeoutSet, EnvHTTPTimeout, file.HTTPTimeout, DefaultHTTPTimeout); err != nil {
		return WebUI{}, fmt.Errorf("invalid http timeout: %w", err)
	}
	out.Sources["http_timeout"] = src
	if out.HTTPTimeout <= 0 {
		return WebUI{}, fmt.Errorf("invalid http timeout: must be > 0")
	}

	if out.HTTPRetries, src, err = ResolveInt(fl.HTTPRetries, fl.HTTPRetriesSet, EnvHTTPRetries, file.HTTPRetries, 0); err != nil {
		return WebUI{}, fmt.Errorf("invalid http retries: %w", err)
	}
	out.Sources["http_retries"] = src
	if out.HTTPRetries < 0 {
		return WebUI{}, fmt.Errorf("invalid http retries: must be >= 0")
	}

	if out.RetryBackoff, src, err = ResolveDuration(fl.RetryBackoff, fl.RetryBackoffSet, EnvRetryBackoff, file.RetryBackoff, DefaultRetryBackoff); err != nil {
		return WebUI{}, fmt.Errorf("invalid http retry backoff: %w", err)
	}
	out.Sources["http_retry_backoff"] = src

	if out.Rate, src, err = ResolveFloat(fl.Rate, fl.RateSet, "", file.Rate, 0); err != nil {
		return WebUI{}, err
	}
	out.Sources["rate"] = src
	if out.Rate < 0 {
		return WebUI{}, fmt.Errorf("invalid rate: must be >= 0")
	}
	return out, nil
}
