package prompttest

import (
	"errors"
	"fmt"
	"strings"
)

// AxisKind names one of the plot axes understood by the WebUI "X/Y/Z Plot"
// script. The numeric value is the index the script expects in its
// positional arguments, so the constant order must not change.
type AxisKind int

const (
	AxisNothing AxisKind = iota
	AxisSeed
	AxisVarSeed
	AxisVarStrength
	AxisSteps
	AxisHiresSteps
	AxisCFGScale
	AxisPromptSR
	AxisPromptOrder
	AxisSampler
	AxisCheckpointName
	AxisSigmaChurn
	AxisSigmaMin
	AxisSigmaMax
	AxisSigmaNoise
	AxisEta
	AxisClipSkip
	AxisDenoising
	AxisHiresUpscaler
	AxisVAE
	AxisStyles

	axisKindCount
)

// ErrUnknownAxis is returned when a label does not name a known axis kind.
var ErrUnknownAxis = errors.New("unknown axis kind")

var axisLabels = [axisKindCount]string{
	AxisNothing:        "Nothing",
	AxisSeed:           "Seed",
	AxisVarSeed:        "Var. seed",
	AxisVarStrength:    "Var. strength",
	AxisSteps:          "Steps",
	AxisHiresSteps:     "Hires steps",
	AxisCFGScale:       "CFG Scale",
	AxisPromptSR:       "Prompt S/R",
	AxisPromptOrder:    "Prompt order",
	AxisSampler:        "Sampler",
	AxisCheckpointName: "Checkpoint name",
	AxisSigmaChurn:     "Sigma Churn",
	AxisSigmaMin:       "Sigma min",
	AxisSigmaMax:       "Sigma max",
	AxisSigmaNoise:     "Sigma noise",
	AxisEta:            "Eta",
	AxisClipSkip:       "Clip skip",
	AxisDenoising:      "Denoising",
	AxisHiresUpscaler:  "Hires upscaler",
	AxisVAE:            "VAE",
	AxisStyles:         "Styles",
}

// AxisKinds returns every axis kind in index order.
func AxisKinds() []AxisKind {
	out := make([]AxisKind, 0, axisKindCount)
	for k := AxisNothing; k < axisKindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseAxisKind resolves a label such as "Prompt S/R" to its AxisKind.
// Matching is exact after trimming surrounding whitespace; an empty label
// means AxisNothing.
func ParseAxisKind(label string) (AxisKind, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return AxisNothing, nil
	}
	for i, l := range axisLabels {
		if l == s {
			return AxisKind(i), nil
		}
	}
	return AxisNothing, fmt.Errorf("%w: %q", ErrUnknownAxis, label)
}

// Valid reports whether k is one of the defined axis kinds.
func (k AxisKind) Valid() bool { return k >= AxisNothing && k < axisKindCount }

// Index is the positional value the plot script expects for this axis.
func (k AxisKind) Index() int { return int(k) }

func (k AxisKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("AxisKind(%d)", int(k))
	}
	return axisLabels[k]
}

// MarshalText encodes the axis as its label so JSON files stay readable.
func (k AxisKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAxis, int(k))
	}
	return []byte(axisLabels[k]), nil
}

func (k *AxisKind) UnmarshalText(b []byte) error {
	v, err := ParseAxisKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
