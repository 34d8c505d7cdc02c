// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"os"
	"strconv"

	"github.com/eclipse/paho.golang/packets"
)

// ConnectionProvider is a function that returns a net.Conn connected to an
// MQTT server that is ready to read to and write from. Note that the returned
// net.Conn must be thread-safe (i.e., concurrent Write calls must not
// interleave).
type ConnectionProvider func(context.Context) (net.Conn, error)

// TLSOption adjusts the TLS configuration before each connection attempt.
type TLSOption func(context.Context, *tls.Config) error

// TCPConnection is a ConnectionProvider that connects to an MQTT server over
// plain TCP. Intended for local brokers and tests.
func TCPConnection(hostname string, port uint16) ConnectionProvider {
	return func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", address(hostname, port))
		if err != nil {
			return nil, &ConnectionError{
				message: "error opening TCP connection",
				wrapped: err,
			}
		}
		return conn, nil
	}
}

// TLSConnection is a ConnectionProvider that connects to an MQTT server with
// TLS over TCP. The server certificate chain and hostname are verified unless
// WithInsecureSkipVerify is given.
func TLSConnection(
	hostname string,
	port uint16,
	opts ...TLSOption,
) ConnectionProvider {
	return func(ctx context.Context) (net.Conn, error) {
		config := &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: hostname,
		}
		for _, opt := range opts {
			if err := opt(ctx, config); err != nil {
				return nil, &ConnectionError{
					message: "error getting TLS configuration",
					wrapped: err,
				}
			}
		}

		d := tls.Dialer{Config: config}
		conn, err := d.DialContext(ctx, "tcp", address(hostname, port))
		if err != nil {
			return nil, &ConnectionError{
				message: "error opening TLS connection",
				wrapped: err,
			}
		}
		return packets.NewThreadSafeConn(conn), nil
	}
}

// WithCA trusts the PEM encoded certificates in the given file instead of the
// system roots.
func WithCA(caFile string) TLSOption {
	return func(_ context.Context, config *tls.Config) error {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return errors.New("no certificates found in CA file " + caFile)
		}
		config.RootCAs = pool
		return nil
	}
}

// WithX509 presents the given client certificate. The files are re-read on
// every connection attempt so rotated certificates are picked up.
func WithX509(certFile, keyFile string) TLSOption {
	return func(_ context.Context, config *tls.Config) error {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return err
		}
		config.Certificates = []tls.Certificate{cert}
		return nil
	}
}

// WithServerName overrides the name used for SNI and certificate
// verification.
func WithServerName(name string) TLSOption {
	return func(_ context.Context, config *tls.Config) error {
		config.ServerName = name
		return nil
	}
}

// WithInsecureSkipVerify disables certificate chain and hostname
// verification. Only use this against development brokers.
func WithInsecureSkipVerify() TLSOption {
	return func(_ context.Context, config *tls.Config) error {
		// #nosec G402
		config.InsecureSkipVerify = true
		return nil
	}
}

func address(hostname string, port uint16) string {
	return net.JoinHostPort(hostname, strconv.Itoa(int(port)))
}
