// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/eclipse/paho.golang/paho"
)

// Connect opens the connection, subscribes to the telemetry topic and starts
// the receive loop. A failed handshake is logged and returned, and leaves the
// client Disconnected; it is never retried here.
func (c *Client) Connect(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if s := c.State(); s != Disconnected {
		return &ClientStateError{State: s}
	}
	if c.options.QoS > 1 {
		return &InvalidArgumentError{message: "QoS must be 0 or 1"}
	}

	// Tear down whatever an unrecovered connection loss left behind.
	c.stop()

	c.setState(Connecting)

	sctx, cancel := context.WithCancel(context.Background())
	s := &session{
		ctx:      sctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		incoming: make(chan *paho.Publish, incomingQueueSize),
		lost:     make(chan lostEvent, 1),
	}

	if err := c.dial(ctx, s); err != nil {
		cancel()
		c.setState(Disconnected)
		c.log.Err(ctx, slog.LevelError, "connection failed", err,
			slog.String("client_id", c.options.ClientID),
		)
		return err
	}

	c.sess = s
	c.setState(Connected)
	c.log.Log(ctx, slog.LevelInfo, "connected",
		slog.String("client_id", c.options.ClientID),
		slog.String("topic", c.options.Topic),
	)

	go c.receive(s)
	return nil
}

// Disconnect stops the receive loop, closes the connection and waits for the
// loop to exit. It is a no-op when there is nothing to disconnect.
func (c *Client) Disconnect() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.sess == nil {
		return nil
	}
	c.stop()
	c.log.Log(context.Background(), slog.LevelInfo, "disconnected")
	return nil
}

// Must be called with the lifecycle lock held.
func (c *Client) stop() {
	s := c.sess
	if s == nil {
		return
	}
	c.sess = nil

	s.cancel()
	<-s.done
	c.closeLink()
	c.setState(Disconnected)
}

// dial performs a single CONNECT and SUBSCRIBE handshake and installs the
// resulting link.
func (c *Client) dial(ctx context.Context, s *session) error {
	attempt := c.attempt.Add(1)

	if c.options.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.ConnectionTimeout)
		defer cancel()
	}

	conn, err := c.provider(ctx)
	if err != nil {
		return err
	}

	pc := paho.NewClient(paho.ClientConfig{
		ClientID: c.options.ClientID,
		Conn:     conn,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			func(pr paho.PublishReceived) (bool, error) {
				c.deliver(s, attempt, pr.Packet)
				return true, nil
			},
		},
		OnClientError: func(err error) {
			c.lose(s, attempt, err)
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			c.log.Packet(context.Background(), "disconnect", d)
			c.lose(s, attempt, &DisconnectError{ReasonCode: d.ReasonCode})
		},
	})

	cp := c.connectPacket()
	c.log.Packet(ctx, "connect", cp)
	connack, err := pc.Connect(ctx, cp)
	c.log.Packet(ctx, "connack", connack)
	if err := connackError(connack, err); err != nil {
		_ = conn.Close()
		return err
	}

	sub := &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{
			Topic: c.options.Topic,
			QoS:   c.options.QoS,
		}},
	}
	c.log.Packet(ctx, "subscribe", sub)
	suback, err := pc.Subscribe(ctx, sub)
	c.log.Packet(ctx, "suback", suback)
	if err := c.subackError(suback, err); err != nil {
		_ = pc.Disconnect(&paho.Disconnect{
			ReasonCode: disconnectNormalDisconnection,
		})
		_ = conn.Close()
		return err
	}

	c.linkMu.Lock()
	c.link = &link{pc: pc, conn: conn, attempt: attempt}
	c.linkMu.Unlock()
	return nil
}

func (c *Client) connectPacket() *paho.Connect {
	cp := &paho.Connect{
		ClientID:   c.options.ClientID,
		CleanStart: true,
		KeepAlive:  uint16(min(c.options.KeepAlive, maxKeepAlive).Seconds()),
	}
	if c.options.Username != "" {
		cp.UsernameFlag = true
		cp.Username = c.options.Username
	}
	if c.options.Password != "" {
		cp.PasswordFlag = true
		cp.Password = []byte(c.options.Password)
	}
	return cp
}

func connackError(connack *paho.Connack, err error) error {
	if connack != nil && connack.ReasonCode >= 0x80 {
		e := &ConnackError{ReasonCode: connack.ReasonCode}
		if connack.Properties != nil {
			e.Reason = connack.Properties.ReasonString
		}
		return e
	}
	if err != nil {
		return &ConnectionError{message: "MQTT connect failed", wrapped: err}
	}
	if connack == nil {
		return &ConnectionError{message: "no CONNACK received"}
	}
	return nil
}

func (c *Client) subackError(suback *paho.Suback, err error) error {
	if suback != nil && len(suback.Reasons) > 0 && suback.Reasons[0] >= 0x80 {
		return &SubackError{
			ReasonCode: suback.Reasons[0],
			Topic:      c.options.Topic,
		}
	}
	if err != nil {
		return &ConnectionError{message: "MQTT subscribe failed", wrapped: err}
	}
	return nil
}

// deliver hands a message from paho to the receive loop. It blocks while the
// loop is busy, which applies backpressure to the connection.
func (c *Client) deliver(s *session, attempt uint64, pub *paho.Publish) {
	if attempt != c.attempt.Load() {
		return
	}
	select {
	case s.incoming <- pub:
	case <-s.ctx.Done():
	}
}

func (c *Client) lose(s *session, attempt uint64, err error) {
	if attempt != c.attempt.Load() {
		return
	}
	// Only the newest loss matters; replace anything still queued.
	ev := lostEvent{attempt: attempt, err: err}
	for {
		select {
		case s.lost <- ev:
			return
		default:
		}
		select {
		case <-s.lost:
		default:
		}
	}
}

// receive is the single consumer of inbound messages. Stopping the session
// takes priority over anything queued.
func (c *Client) receive(s *session) {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		select {
		case <-s.ctx.Done():
			return

		case ev := <-s.lost:
			if ev.attempt != c.attempt.Load() || s.ctx.Err() != nil {
				continue
			}
			c.setState(Disconnected)
			err := ev.err
			if errors.Is(err, io.EOF) {
				err = &ConnectionError{
					message: "server closed connection",
					wrapped: err,
				}
			}
			c.log.Err(s.ctx, slog.LevelWarn, "connection lost", err)

			if !c.reconnect(s) {
				return
			}

		case pub := <-s.incoming:
			if s.ctx.Err() != nil {
				return
			}
			c.handle(s.ctx, pub)
		}
	}
}

// reconnect re-establishes the link when a policy is configured. It returns
// false when the receive loop should exit.
func (c *Client) reconnect(s *session) bool {
	c.closeLink()

	policy := c.options.Reconnect
	if policy == nil {
		c.log.Log(s.ctx, slog.LevelInfo,
			"automatic reconnection disabled; staying disconnected")
		return false
	}

	err := policy.Start(s.ctx, "reconnect",
		func(ctx context.Context) (bool, error) {
			c.setState(Connecting)
			if err := c.dial(ctx, s); err != nil {
				c.setState(Disconnected)
				c.log.Err(ctx, slog.LevelWarn, "reconnect attempt failed", err)
				return isRetryable(err), err
			}
			return false, nil
		},
	)
	if err != nil {
		c.setState(Disconnected)
		if s.ctx.Err() == nil {
			c.log.Err(s.ctx, slog.LevelError, "giving up on reconnection", err)
		}
		return false
	}

	c.setState(Connected)
	c.log.Log(s.ctx, slog.LevelInfo, "reconnected",
		slog.String("client_id", c.options.ClientID),
	)
	return true
}

func (c *Client) closeLink() {
	c.linkMu.Lock()
	l := c.link
	c.link = nil
	c.linkMu.Unlock()

	if l == nil {
		return
	}

	d := &paho.Disconnect{ReasonCode: disconnectNormalDisconnection}
	c.log.Packet(context.Background(), "disconnect", d)
	if err := l.pc.Disconnect(d); err != nil {
		c.log.Err(context.Background(), slog.LevelDebug,
			"error sending disconnect", err)
	}
	_ = l.conn.Close()
}

func isRetryable(err error) bool {
	var connack *ConnackError
	if errors.As(err, &connack) {
		return !connack.Fatal()
	}
	var suback *SubackError
	if errors.As(err, &suback) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
