// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrUnsupportedContentType is wrapped by a PayloadError when a message
// declares a content type other than JSON.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// ClientStateError is returned when the operation cannot proceed due to the
// state of the client.
type ClientStateError struct {
	State ConnectionState
}

func (e *ClientStateError) Error() string {
	return fmt.Sprintf("cannot connect while the client is %s", e.State)
}

// ConnectionError indicates an issue opening or using the network connection
// to the MQTT server. It may wrap an underlying error using Go standard error
// wrapping.
type ConnectionError struct {
	wrapped error
	message string
}

func (e *ConnectionError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *ConnectionError) Unwrap() error {
	return e.wrapped
}

// ConnackError indicates that the server rejected the connection with a
// CONNACK carrying an error reason code.
type ConnackError struct {
	ReasonCode byte
	Reason     string
}

func (e *ConnackError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf(
			"received CONNACK packet with error reason code %x: %s",
			e.ReasonCode,
			e.Reason,
		)
	}
	return fmt.Sprintf(
		"received CONNACK packet with error reason code %x",
		e.ReasonCode,
	)
}

// Fatal reports whether retrying the connection cannot help, e.g. bad
// credentials or a banned client.
func (e *ConnackError) Fatal() bool {
	return isFatalConnackReasonCode(e.ReasonCode)
}

// Attrs exposes the reason code for structured logging.
func (e *ConnackError) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("reason_code", int(e.ReasonCode)),
		slog.Bool("fatal", e.Fatal()),
	}
}

// SubackError indicates that the server refused the topic subscription.
type SubackError struct {
	ReasonCode byte
	Topic      string
}

func (e *SubackError) Error() string {
	return fmt.Sprintf(
		"subscription to %q refused with reason code %x",
		e.Topic,
		e.ReasonCode,
	)
}

// Attrs exposes the reason code and topic for structured logging.
func (e *SubackError) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("reason_code", int(e.ReasonCode)),
		slog.String("topic", e.Topic),
	}
}

// DisconnectError indicates that the server closed the session with a
// DISCONNECT packet.
type DisconnectError struct {
	ReasonCode byte
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf(
		"received DISCONNECT packet with reason code %x",
		e.ReasonCode,
	)
}

// Attrs exposes the reason code for structured logging.
func (e *DisconnectError) Attrs() []slog.Attr {
	return []slog.Attr{slog.Int("reason_code", int(e.ReasonCode))}
}

// InvalidArgumentError indicates that the user has provided an invalid value
// for an option. It may wrap an underlying error using Go standard error
// wrapping.
type InvalidArgumentError struct {
	wrapped error
	message string
}

func (e *InvalidArgumentError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.wrapped
}

// PayloadError indicates that an inbound message could not be decoded. The
// message is discarded and the receive loop continues.
type PayloadError struct {
	wrapped error
	message string
}

func (e *PayloadError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *PayloadError) Unwrap() error {
	return e.wrapped
}
