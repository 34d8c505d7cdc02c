// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest_test

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/stretchr/testify/require"
)

const (
	brokerUserName = "gary"
	brokerPassword = "pineapple"
)

type (
	brokerConfig struct {
		ledger    *auth.Ledger
		tlsConfig *tls.Config
	}

	// mochi panics when closed twice; tests close brokers early to simulate
	// an outage.
	testBroker struct {
		*mochi.Server
		once sync.Once
	}
)

func (b *testBroker) Close() error {
	var err error
	b.once.Do(func() { err = b.Server.Close() })
	return err
}

// Spin up an in-process MQTT broker whose inline client can publish test
// telemetry.
func startBroker(t *testing.T, port uint16, cfg brokerConfig) *testBroker {
	broker := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	if cfg.ledger != nil {
		require.NoError(t, broker.AddHook(
			new(auth.Hook),
			&auth.Options{Ledger: cfg.ledger},
		))
	} else {
		require.NoError(t, broker.AddHook(&auth.AllowHook{}, nil))
	}

	require.NoError(t, broker.AddListener(listeners.NewTCP(listeners.Config{
		Type:      "tcp",
		ID:        fmt.Sprintf("t%d", port),
		Address:   fmt.Sprintf("localhost:%d", port),
		TLSConfig: cfg.tlsConfig,
	})))
	require.NoError(t, broker.Serve())

	b := &testBroker{Server: broker}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func credentialsLedger() *auth.Ledger {
	return &auth.Ledger{
		// Auth disallows all by default
		Auth: auth.AuthRules{
			{
				Username: auth.RString(brokerUserName),
				Password: auth.RString(brokerPassword),
				Allow:    true,
			},
		},
	}
}
