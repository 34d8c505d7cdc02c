// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/ranjhana07/MINE/internal/log"
	"github.com/ranjhana07/MINE/telemetry"
)

type (
	// Appender receives every successfully decoded message. *telemetry.Store
	// satisfies it.
	Appender interface {
		Append(telemetry.RawFields)
	}

	// Client subscribes to the telemetry topic and feeds every decoded
	// message into its Appender from a single receive goroutine.
	Client struct {
		store    Appender
		provider ConnectionProvider
		options  ClientOptions
		log      logger

		state atomic.Int32

		// Incremented for every connection attempt so that callbacks from a
		// superseded paho client can be recognized and ignored.
		attempt atomic.Uint64

		received atomic.Uint64
		appended atomic.Uint64
		dropped  atomic.Uint64

		// Serializes Connect and Disconnect.
		lifecycleMu sync.Mutex
		sess        *session

		// Guards the live paho client. Never held while waiting.
		linkMu sync.Mutex
		link   *link
	}

	// Stats counts inbound messages since the client was created.
	Stats struct {
		Received uint64
		Appended uint64
		Dropped  uint64
	}

	// One receive loop, from Connect until Disconnect or an unrecovered
	// connection loss.
	session struct {
		ctx      context.Context
		cancel   context.CancelFunc
		done     chan struct{}
		incoming chan *paho.Publish
		lost     chan lostEvent
	}

	// One network connection and the paho client driving it.
	link struct {
		pc      *paho.Client
		conn    net.Conn
		attempt uint64
	}

	lostEvent struct {
		attempt uint64
		err     error
	}
)

// NewClient creates an ingestion client that appends to the given store
// using connections from the given provider. The client starts Disconnected.
func NewClient(
	store Appender,
	provider ConnectionProvider,
	opt ...ClientOption,
) *Client {
	c := &Client{
		store:    store,
		provider: provider,
		options: ClientOptions{
			KeepAlive:         defaultKeepAlive,
			ConnectionTimeout: defaultConnectionTimeout,
			Topic:             DefaultTopic,
			Decoder:           JSON{},
		},
	}
	c.options.Apply(opt)

	if c.options.ClientID == "" {
		c.options.ClientID = randomClientID()
	}
	if c.options.Decoder == nil {
		c.options.Decoder = JSON{}
	}
	c.log = logger{log.Wrap(c.options.Logger)}
	return c
}

// ID returns the MQTT client identifier.
func (c *Client) ID() string {
	return c.options.ClientID
}

// Topic returns the subscribed telemetry topic.
func (c *Client) Topic() string {
	return c.options.Topic
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Connected reports whether the subscription is currently active.
func (c *Client) Connected() bool {
	return c.State() == Connected
}

// Stats returns the inbound message counters.
func (c *Client) Stats() Stats {
	return Stats{
		Received: c.received.Load(),
		Appended: c.appended.Load(),
		Dropped:  c.dropped.Load(),
	}
}

func (c *Client) setState(to ConnectionState) {
	from := ConnectionState(c.state.Swap(int32(to)))
	if from == to {
		return
	}
	c.log.Log(context.Background(), slog.LevelDebug, "connection state changed",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
	if c.options.OnStateChange != nil {
		c.options.OnStateChange(from, to)
	}
}

func (c *Client) handle(ctx context.Context, pub *paho.Publish) {
	c.received.Add(1)

	if pub.Topic != c.options.Topic {
		c.dropped.Add(1)
		c.log.Log(ctx, slog.LevelDebug, "ignoring message on unexpected topic",
			slog.String("topic", pub.Topic),
		)
		return
	}

	data := &Data{Payload: pub.Payload}
	if p := pub.Properties; p != nil {
		data.ContentType = p.ContentType
		if p.PayloadFormat != nil {
			data.PayloadFormat = *p.PayloadFormat
		}
	}

	raw, err := c.options.Decoder.Deserialize(data)
	if err != nil {
		c.dropped.Add(1)
		c.log.Err(ctx, slog.LevelWarn, "discarding malformed message", err,
			slog.String("topic", pub.Topic),
			slog.Int("size", len(pub.Payload)),
		)
		return
	}

	c.store.Append(raw)
	c.appended.Add(1)
}

// MQTT client IDs are limited to 23 alphanumeric characters.
func randomClientID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "minearmour" + id[:13]
}
