// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ranjhana07/MINE/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFileLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dashboard.log")

	log, closer, err := newLogger(config.Log{
		Level:     "debug",
		Format:    "json",
		File:      file,
		MaxSizeMB: 1,
	})
	require.NoError(t, err)

	log.Debug("reading appended", "lpg", 12.5)
	require.NoError(t, closer.Close())

	out, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(out), `"msg":"reading appended"`)
	require.Contains(t, string(out), `"lpg":12.5`)
}

func TestLoggerRejectsBadLevel(t *testing.T) {
	_, _, err := newLogger(config.Log{Level: "chatty", Format: "text"})
	require.Error(t, err)
}
