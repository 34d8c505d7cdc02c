// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/ranjhana07/MINE/internal/log"
)

type logger struct{ log.Logger }

func (l *logger) attempt(ctx context.Context, task string, n uint64) {
	l.Log(ctx, slog.LevelDebug, task+" attempt", slog.Uint64("attempt", n))
}

// Failures carry the task error's own attributes, e.g. a CONNACK reason code.
func (l *logger) wait(
	ctx context.Context,
	task string,
	n uint64,
	interval time.Duration,
	err error,
) {
	l.Err(ctx, slog.LevelDebug, task+" backing off", err,
		slog.Uint64("attempt", n),
		slog.Duration("interval", interval),
	)
}

func (l *logger) complete(
	ctx context.Context,
	task string,
	n uint64,
	err error,
) {
	if err == nil {
		l.Log(ctx, slog.LevelInfo, task+" succeeded", slog.Uint64("attempts", n))
		return
	}
	l.Err(ctx, slog.LevelWarn, task+" abandoned", err,
		slog.Uint64("attempts", n),
	)
}
