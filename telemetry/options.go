// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package telemetry

import (
	"log/slog"

	"github.com/ranjhana07/MINE/internal/wallclock"
)

type (
	// Option represents a single store option.
	Option interface{ store(*Options) }

	// Options are the resolved store options.
	Options struct {
		Capacity int
		Clock    wallclock.WallClock
		Logger   *slog.Logger
	}

	// WithCapacity sets the sliding window capacity of every series.
	WithCapacity int

	// WithClock sets the clock used to timestamp appends.
	WithClock struct{ wallclock.WallClock }

	// This option is not used directly; see WithLogger below.
	withLogger struct{ *slog.Logger }
)

// DefaultCapacity is the window capacity used when none is configured.
const DefaultCapacity = 100

// Apply resolves the provided list of options.
func (o *Options) Apply(opts []Option, rest ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.store(o)
		}
	}
	for _, opt := range rest {
		if opt != nil {
			opt.store(o)
		}
	}
}

func (o *Options) store(opt *Options) {
	if o != nil {
		*opt = *o
	}
}

func (o WithCapacity) store(opt *Options) {
	opt.Capacity = int(o)
}

func (o WithClock) store(opt *Options) {
	opt.Clock = o.WallClock
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) Option {
	return withLogger{logger}
}

func (o withLogger) store(opt *Options) {
	opt.Logger = o.Logger
}
