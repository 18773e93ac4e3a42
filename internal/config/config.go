// Package config resolves tool settings from flags, environment variables,
// an optional YAML file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source labels where a resolved value came from.
const (
	SourceFlag    = "flag"
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "default"
)

// Environment variables understood by the WebUI settings.
const (
	EnvBaseURL      = "WEBUI_BASE_URL"
	EnvAuth         = "WEBUI_AUTH"
	EnvHTTPTimeout  = "WEBUI_HTTP_TIMEOUT"
	EnvHTTPRetries  = "WEBUI_HTTP_RETRIES"
	EnvRetryBackoff = "WEBUI_HTTP_RETRY_BACKOFF"
)

// File is the YAML configuration file layout. Every field is optional;
// pointers distinguish "absent" from zero values.
//
//	webui:
//	  base_url: http://127.0.0.1:7860
//	  auth: user:password
//	  http_timeout: 10m
//	  http_retries: 0
//	grid:
//	  ckpt_folder: models/Stable-diffusion
//	  baseline_ckpt: SDv1-5.ckpt
//	  sampler: Euler a
//	  steps: 20
type File struct {
	WebUI WebUIFile `yaml:"webui"`
	Grid  GridFile  `yaml:"grid"`
}

type WebUIFile struct {
	BaseURL      *string  `yaml:"base_url"`
	Auth         *string  `yaml:"auth"`
	HTTPTimeout  *string  `yaml:"http_timeout"`
	HTTPRetries  *int     `yaml:"http_retries"`
	RetryBackoff *string  `yaml:"http_retry_backoff"`
	Rate         *float64 `yaml:"rate"`
}

type GridFile struct {
	Filename     *string  `yaml:"filename"`
	CkptFolder   *string  `yaml:"ckpt_folder"`
	BaselineCkpt *string  `yaml:"baseline_ckpt"`
	OutputFolder *string  `yaml:"output_folder"`
	Sampler      *string  `yaml:"sampler"`
	Steps        *int     `yaml:"steps"`
	Seed         *int     `yaml:"seed"`
	CFGScale     *float64 `yaml:"cfg_scale"`
	Width        *int     `yaml:"width"`
	Height       *int     `yaml:"height"`
	Timestamp    *bool    `yaml:"timestamp"`
}

// LoadFile parses a YAML config file. Unknown keys are rejected. An empty
// path returns a zero File.
func LoadFile(path string) (File, error) {
	var f File
	if strings.TrimSpace(path) == "" {
		return f, nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return f, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = fh.Close() }()
	dec := yaml.NewDecoder(fh)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables that are already set are left untouched.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func resolve[T any](flagVal T, flagSet bool, envKey string, parse func(string) (T, error), fileVal *T, def T) (T, string, error) {
	if flagSet {
		return flagVal, SourceFlag, nil
	}
	if envKey != "" {
		if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
			v, err := parse(s)
			if err != nil {
				var zero T
				return zero, SourceEnv, fmt.Errorf("%s: %w", envKey, err)
			}
			return v, SourceEnv, nil
		}
	}
	if fileVal != nil {
		return *fileVal, SourceFile, nil
	}
	return def, SourceDefault, nil
}

// ResolveString applies flag > env > file > default to a string setting.
func ResolveString(flagVal string, flagSet bool, envKey string, fileVal *string, def string) (string, string) {
	v, src, _ := resolve(flagVal, flagSet, envKey, func(s string) (string, error) { return s, nil }, fileVal, def)
	return v, src
}

// ResolveInt applies flag > env > file > default to an int setting.
func ResolveInt(flagVal int, flagSet bool, envKey string, fileVal *int, def int) (int, string, error) {
	return resolve(flagVal, flagSet, envKey, func(s string) (int, error) { return strconv.Atoi(s) }, fileVal, def)
}

// ResolveFloat applies flag > env > file > default to a float setting.
func ResolveFloat(flagVal float64, flagSet bool, envKey string, fileVal *float64, def float64) (float64, string, error) {
	return resolve(flagVal, flagSet, envKey, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }, fileVal, def)
}

// ResolveBool applies flag > env > file > default to a bool setting.
func ResolveBool(flagVal bool, flagSet bool, envKey string, fileVal *bool, def bool) (bool, string, error) {
	return resolve(flagVal, flagSet, envKey, strconv.ParseBool, fileVal, def)
}

// ResolveDuration applies flag > env > file > default to a duration. Env and
// file values accept Go duration strings or plain seconds.
func ResolveDuration(flagVal time.Duration, flagSet bool, envKey string, fileVal *string, def time.Duration) (time.Duration, string, error) {
	var fv *time.Duration
	if fileVal != nil {
		d, err := ParseDurationFlexible(*fileVal)
		if err != nil {
			return 0, SourceFile, err
		}
		fv = &d
	}
	return resolve(flagVal, flagSet, envKey, ParseDurationFlexible, fv, def)
}

// ParseDurationFlexible accepts either standard Go duration strings (e.g., "500ms", "2s")
// or plain integers meaning seconds (e.g., "30" -> 30s).
func ParseDurationFlexible(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration seconds: %d", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration: %q", s)
}

// MaskSecret returns a redacted representation showing only the last 4
// characters. Empty input returns an empty string.
func MaskSecret(s string) string {
	k := strings.TrimSpace(s)
	if k == "" {
		return ""
	}
	if len(k) <= 4 {
		return "****"
	}
	return "****" + k[len(k)-4:]
}
