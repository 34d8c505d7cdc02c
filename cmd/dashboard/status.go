// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ranjhana07/MINE/ingest"
	"github.com/ranjhana07/MINE/telemetry"
)

const placeholder = "---"

type connection interface {
	State() ingest.ConnectionState
	Stats() ingest.Stats
}

// status logs one line describing the latest reading of every group.
func status(
	ctx context.Context,
	log *slog.Logger,
	conn connection,
	store *telemetry.Store,
) {
	views := store.SnapshotAll()
	log.LogAttrs(ctx, slog.LevelInfo, "status", statusAttrs(conn, views)...)
}

func statusAttrs(
	conn connection,
	views map[telemetry.Group]telemetry.GroupView,
) []slog.Attr {
	gas := views[telemetry.Gas]
	r := gas.Latest.Reading
	stats := conn.Stats()

	attrs := []slog.Attr{
		slog.String("mqtt", conn.State().String()),
		slog.Int("points", gas.Len()),
		slog.Uint64("received", stats.Received),
		slog.Uint64("dropped", stats.Dropped),
	}
	if gas.Latest.Timestamp.IsZero() {
		return append(attrs, slog.String("latest", placeholder))
	}

	return append(attrs,
		slog.Group("gas",
			slog.Float64("lpg", r.LPG),
			slog.Float64("ch4", r.CH4),
			slog.Float64("propane", r.Propane),
			slog.Float64("butane", r.Butane),
			slog.Float64("h2", r.H2),
		),
		slog.Group("health",
			slog.String("heart_rate", intOrPlaceholder(r.HeartRate)),
			slog.String("spo2", floatOrPlaceholder(r.SpO2, 1)),
			slog.Int("gsr", r.GSR),
			slog.Int("stress", r.Stress),
		),
		slog.Group("environmental",
			slog.String("temperature", floatOrPlaceholder(r.Temperature, 1)),
			slog.String("humidity", floatOrPlaceholder(r.Humidity, 1)),
		),
		slog.Group("gps",
			slog.String("lat", strconv.FormatFloat(r.Lat, 'f', 6, 64)),
			slog.String("lon", strconv.FormatFloat(r.Lon, 'f', 6, 64)),
			slog.Float64("alt", r.Alt),
			slog.Int("sat", r.Sat),
		),
		slog.Time("at", gas.Latest.Timestamp),
	)
}

func intOrPlaceholder(v int) string {
	if v == telemetry.AbsentInt {
		return placeholder
	}
	return strconv.Itoa(v)
}

func floatOrPlaceholder(v float64, prec int) string {
	if v == telemetry.AbsentFloat {
		return placeholder
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
