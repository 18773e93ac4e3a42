package corpus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

const defaultTransformTimeout = 250 * time.Millisecond

// Transform rewrites captions with a user supplied JavaScript expression.
// The current caption is bound to the global "caption"; the expression's
// value becomes the new caption. null, undefined or an empty string drop
// the caption from the pool.
//
//	caption.toLowerCase()
//	caption.replace(/^a photo of /, "")
type Transform struct {
	prog    *goja.Program
	timeout time.Duration
}

// NewTransform compiles expr once; a zero timeout selects 250ms per caption.
func NewTransform(expr string, timeout time.Duration) (*Transform, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("transform expression is empty")
	}
	prog, err := goja.Compile("transform", expr, true)
	if err != nil {
		return nil, fmt.Errorf("compile transform: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTransformTimeout
	}
	return &Transform{prog: prog, timeout: timeout}, nil
}

// Eval applies the expression to one caption in a fresh runtime. ok is
// false when the caption should be dropped.
func (t *Transform) Eval(caption string) (out string, ok bool, err error) {
	vm := goja.New()
	if err := vm.Set("caption", caption); err != nil {
		return "", false, fmt.Errorf("bind caption: %w", err)
	}
	timer := time.AfterFunc(t.timeout, func() { vm.Interrupt("timeout") })
	v, runErr := vm.RunProgram(t.prog)
	timer.Stop()
	if runErr != nil {
		var ie *goja.InterruptedError
		if errors.As(runErr, &ie) {
			return "", false, fmt.Errorf("transform %q: exceeded %s", caption, t.timeout)
		}
		return "", false, fmt.Errorf("transform %q: %w", caption, runErr)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", false, nil
	}
	s := v.String()
	if s == "" {
		return "", false, nil
	}
	return s, true, nil
}

// Apply runs Eval over the pool and returns the surviving captions in order.
func (t *Transform) Apply(pool []string) ([]string, error) {
	out := make([]string, 0, len(pool))
	for _, c := range pool {
		s, ok, err := t.Eval(c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}
