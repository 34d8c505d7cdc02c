// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/ranjhana07/MINE/ingest"
	"github.com/ranjhana07/MINE/internal/config"
	"github.com/ranjhana07/MINE/telemetry"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closer, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.File != "" {
		log.Info("using config file", "path", cfg.File)
	}

	store := telemetry.New(
		telemetry.WithCapacity(cfg.Store.Capacity),
		telemetry.WithLogger(log),
	)

	client, err := ingest.NewClientFromSettings(store, &cfg.MQTT,
		ingest.WithReconnect(cfg.Reconnect.Policy(log)),
		ingest.WithLogger(log),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	// A failed connection is logged by the client; the dashboard keeps
	// serving whatever it has, which is nothing yet.
	_ = client.Connect(ctx)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down...")
			return client.Disconnect()
		case <-ticker.C:
			status(ctx, log, client, store)
		}
	}
}

func newLogger(cfg config.Log) (*slog.Logger, io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	if cfg.File == "" {
		if cfg.Format == "json" {
			h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: level,
			})
			return slog.New(h), io.NopCloser(nil), nil
		}
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
		return slog.New(h), io.NopCloser(nil), nil
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), w, nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), w, nil
}
