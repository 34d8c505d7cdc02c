// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

import (
	"log/slog"
	"time"

	"github.com/ranjhana07/MINE/retry"
)

type (
	// ClientOption represents a single ingestion client option.
	ClientOption interface{ client(*ClientOptions) }

	// ClientOptions are the resolved ingestion client options.
	ClientOptions struct {
		ClientID          string
		Username          string
		Password          string
		KeepAlive         time.Duration
		ConnectionTimeout time.Duration
		Topic             string
		QoS               byte

		Decoder       Decoder
		Reconnect     retry.Policy
		OnStateChange func(from, to ConnectionState)
		Logger        *slog.Logger
	}

	// WithClientID sets the MQTT client identifier. A unique one is generated
	// when omitted.
	WithClientID string

	// WithUsername sets the MQTT username.
	WithUsername string

	// WithPassword sets the MQTT password.
	WithPassword string

	// WithKeepAlive sets the MQTT keep-alive interval.
	WithKeepAlive time.Duration

	// WithConnectionTimeout bounds each handshake attempt. Zero disables the
	// bound.
	WithConnectionTimeout time.Duration

	// WithTopic sets the telemetry topic to subscribe to.
	WithTopic string

	// WithQoS sets the subscription QoS (0 or 1).
	WithQoS byte

	// WithDecoder replaces the default JSON payload decoder.
	WithDecoder struct{ Decoder }

	// WithStateChangeHandler registers a callback invoked on every state
	// transition. It runs synchronously on the transitioning goroutine and
	// must not block or call back into the client.
	WithStateChangeHandler func(from, to ConnectionState)

	// These options are not used directly; see the functions below.
	withReconnect struct{ retry.Policy }
	withLogger    struct{ *slog.Logger }
)

// Apply resolves the provided list of options.
func (o *ClientOptions) Apply(opts []ClientOption, rest ...ClientOption) {
	for _, opt := range opts {
		if opt != nil {
			opt.client(o)
		}
	}
	for _, opt := range rest {
		if opt != nil {
			opt.client(o)
		}
	}
}

func (o *ClientOptions) client(opt *ClientOptions) {
	if o != nil {
		*opt = *o
	}
}

func (o WithClientID) client(opt *ClientOptions) {
	opt.ClientID = string(o)
}

func (o WithUsername) client(opt *ClientOptions) {
	opt.Username = string(o)
}

func (o WithPassword) client(opt *ClientOptions) {
	opt.Password = string(o)
}

func (o WithKeepAlive) client(opt *ClientOptions) {
	opt.KeepAlive = time.Duration(o)
}

func (o WithConnectionTimeout) client(opt *ClientOptions) {
	opt.ConnectionTimeout = time.Duration(o)
}

func (o WithTopic) client(opt *ClientOptions) {
	opt.Topic = string(o)
}

func (o WithQoS) client(opt *ClientOptions) {
	opt.QoS = byte(o)
}

func (o WithDecoder) client(opt *ClientOptions) {
	opt.Decoder = o.Decoder
}

func (o WithStateChangeHandler) client(opt *ClientOptions) {
	opt.OnStateChange = o
}

// WithReconnect enables automatic reconnection after a lost connection,
// paced by the given retry policy. Without it a lost connection leaves the
// client Disconnected.
func WithReconnect(policy retry.Policy) ClientOption {
	return withReconnect{policy}
}

func (o withReconnect) client(opt *ClientOptions) {
	opt.Reconnect = o.Policy
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return withLogger{logger}
}

func (o withLogger) client(opt *ClientOptions) {
	opt.Logger = o.Logger
}
