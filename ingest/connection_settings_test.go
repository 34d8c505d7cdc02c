// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/ranjhana07/MINE/ingest"
	"github.com/ranjhana07/MINE/telemetry"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	cs, err := ingest.ParseConnectionString(
		"HostName=broker.example.com;" +
			"TcpPort=8884;" +
			"UseTls=true;" +
			"Username=miner;" +
			"Password=secret;" +
			"ClientId=helmet01;" +
			"Topic=LOKI_2005;" +
			"QoS=1;" +
			"KeepAlive=PT30S;" +
			"ConnectionTimeout=PT5S;",
	)
	require.NoError(t, err)
	require.Equal(t, &ingest.ConnectionSettings{
		HostName:          "broker.example.com",
		Port:              8884,
		UseTLS:            true,
		Username:          "miner",
		Password:          "secret",
		ClientID:          "helmet01",
		Topic:             "LOKI_2005",
		QoS:               1,
		KeepAlive:         30 * time.Second,
		ConnectionTimeout: 5 * time.Second,
	}, cs)
}

func TestParseConnectionStringDefaults(t *testing.T) {
	cs, err := ingest.ParseConnectionString("hostname=localhost")
	require.NoError(t, err)

	def := ingest.DefaultConnectionSettings()
	def.HostName = "localhost"
	require.Equal(t, &def, cs)
	require.Equal(t, ingest.DefaultPort, cs.Port)
	require.Equal(t, ingest.DefaultTopic, cs.Topic)
	require.True(t, cs.UseTLS)
	require.Equal(t, 60*time.Second, cs.KeepAlive)
}

func TestParseConnectionStringErrors(t *testing.T) {
	for name, connStr := range map[string]string{
		"missing host":       "TcpPort=1883",
		"bad port":           "HostName=localhost;TcpPort=99999",
		"bad bool":           "HostName=localhost;UseTls=maybe",
		"bad duration":       "HostName=localhost;KeepAlive=60",
		"qos 2":              "HostName=localhost;QoS=2",
		"wildcard topic":     "HostName=localhost;Topic=LOKI/#",
		"cert without key":   "HostName=localhost;CertFile=cert.pem",
		"tls option without": "HostName=localhost;UseTls=false;CAFile=ca.pem",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ingest.ParseConnectionString(connStr)
			var iae *ingest.InvalidArgumentError
			require.ErrorAs(t, err, &iae)
		})
	}
}

func TestNewClientFromSettings(t *testing.T) {
	cs := ingest.DefaultConnectionSettings()
	cs.HostName = "localhost"
	cs.ClientID = "helmet01"
	cs.Topic = "LOKI_2005"

	client, err := ingest.NewClientFromSettings(telemetry.New(), &cs)
	require.NoError(t, err)
	require.Equal(t, "helmet01", client.ID())
	require.Equal(t, "LOKI_2005", client.Topic())
	require.Equal(t, ingest.Disconnected, client.State())

	_, err = ingest.NewClientFromSettings(nil, &cs)
	require.Error(t, err)

	cs.HostName = ""
	_, err = ingest.NewClientFromSettings(telemetry.New(), &cs)
	require.Error(t, err)
}

func TestGeneratedClientIDIsValid(t *testing.T) {
	a := ingest.NewClient(telemetry.New(), ingest.TCPConnection("localhost", 1))
	b := ingest.NewClient(telemetry.New(), ingest.TCPConnection("localhost", 1))

	require.NotEqual(t, a.ID(), b.ID())
	require.LessOrEqual(t, len(a.ID()), 23)
	require.Regexp(t, "^[0-9A-Za-z]+$", a.ID())
}

func TestSettingsLogRedactsPassword(t *testing.T) {
	cs := ingest.DefaultConnectionSettings()
	cs.HostName = "localhost"
	cs.Username = "miner"
	cs.Password = "hunter2"
	cs.InsecureSkipVerify = true

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := ingest.NewClientFromSettings(telemetry.New(), &cs,
		ingest.WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "mqtt.username=miner")
	require.NotContains(t, out, "hunter2")
	require.Contains(t, out, "TLS certificate verification is disabled")
}
