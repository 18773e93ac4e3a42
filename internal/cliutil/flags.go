// Package cliutil holds the flag and output helpers shared by the command
// line tools.
package cliutil

import (
	"flag"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/sdutils/internal/config"
)

// stringFlexFlag wires a string destination and records if it was set via flag.
type stringFlexFlag struct {
	dst *string
	set *bool
}

func (f *stringFlexFlag) String() string {
	if f == nil || f.dst == nil {
		return ""
	}
	return *f.dst
}

func (f *stringFlexFlag) Set(s string) error {
	if f.dst != nil {
		*f.dst = s
	}
	if f.set != nil {
		*f.set = true
	}
	return nil
}

// intFlexFlag wires an int destination and records if it was set via flag.
type intFlexFlag struct {
	dst *int
	set *bool
}

func (f *intFlexFlag) String() string {
	if f == nil || f.dst == nil {
		return "0"
	}
	return strconv.Itoa(*f.dst)
}

func (f *intFlexFlag) Set(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if f.dst != nil {
		*f.dst = v
	}
	if f.set != nil {
		*f.set = true
	}
	return nil
}

// float64FlexFlag wires a float64 destination and records if it was set via flag.
type float64FlexFlag struct {
	dst *float64
	set *bool
}

func (f *float64FlexFlag) String() string {
	if f == nil || f.dst == nil {
		return "0"
	}
	return strconv.FormatFloat(*f.dst, 'g', -1, 64)
}

func (f *float64FlexFlag) Set(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	if f.dst != nil {
		*f.dst = v
	}
	if f.set != nil {
		*f.set = true
	}
	return nil
}

// durationFlexFlag accepts Go durations or plain seconds.
type durationFlexFlag struct {
	dst *time.Duration
	set *bool
}

func (f *durationFlexFlag) String() string {
	if f == nil || f.dst == nil {
		return ""
	}
	return f.dst.String()
}

func (f *durationFlexFlag) Set(s string) error {
	d, err := config.ParseDurationFlexible(s)
	if err != nil {
		return err
	}
	if f.dst != nil {
		*f.dst = d
	}
	if f.set != nil {
		*f.set = true
	}
	return nil
}

// boolFlexFlag wires a bool destination and records if it was set via flag.
type boolFlexFlag struct {
	dst *bool
	set *bool
}

func (b *boolFlexFlag) String() string {
	if b == nil || b.dst == nil {
		return "false"
	}
	return strconv.FormatBool(*b.dst)
}

func (b *boolFlexFlag) Set(s string) error {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if b.dst != nil {
		*b.dst = v
	}
	if b.set != nil {
		*b.set = true
	}
	return nil
}

func (b *boolFlexFlag) IsBoolFlag() bool { return true }

// The Var helpers register one value under every given name, so a short
// and a long spelling share a destination. set may be nil.

func StringVar(fs *flag.FlagSet, dst *string, set *bool, usage string, names ...string) {
	for _, n := range names {
		fs.Var(&stringFlexFlag{dst: dst, set: set}, n, usage)
	}
}

func IntVar(fs *flag.FlagSet, dst *int, set *bool, usage string, names ...string) {
	for _, n := range names {
		fs.Var(&intFlexFlag{dst: dst, set: set}, n, usage)
	}
}

func Float64Var(fs *flag.FlagSet, dst *float64, set *bool, usage string, names ...string) {
	for _, n := range names {
		fs.Var(&float64FlexFlag{dst: dst, set: set}, n, usage)
	}
}

func DurationVar(fs *flag.FlagSet, dst *time.Duration, set *bool, usage string, names ...string) {
	for _, n := range names {
		fs.Var(&durationFlexFlag{dst: dst, set: set}, n, usage)
	}
}

func BoolVar(fs *flag.FlagSet, dst *bool, set *bool, usage string, names ...string) {
	for _, n := range names {
		fs.Var(&boolFlexFlag{dst: dst, set: set}, n, usage)
	}
}
