// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

// ConnectionState indicates the current state of the ingestion client.
type ConnectionState int32

const (
	// Disconnected is both the initial state and the state after a failed
	// handshake, a lost connection, or Disconnect.
	Disconnected ConnectionState = iota

	// Connecting indicates a handshake (CONNECT and SUBSCRIBE) in progress.
	Connecting

	// Connected indicates the subscription is active and the receive loop
	// is running.
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	default:
		return "Unknown"
	}
}
