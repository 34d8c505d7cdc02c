// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ingest

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// ConnectionSettings describes how to reach the broker. The mapstructure tags
// let a configuration loader decode it directly.
type ConnectionSettings struct {
	HostName           string        `mapstructure:"host"`
	Port               uint16        `mapstructure:"port"`
	UseTLS             bool          `mapstructure:"use_tls"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	CAFile             string        `mapstructure:"ca_file"`
	CertFile           string        `mapstructure:"cert_file"`
	KeyFile            string        `mapstructure:"key_file"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	ClientID           string        `mapstructure:"client_id"`
	Topic              string        `mapstructure:"topic"`
	QoS                byte          `mapstructure:"qos"`
	KeepAlive          time.Duration `mapstructure:"keep_alive"`
	ConnectionTimeout  time.Duration `mapstructure:"connection_timeout"`
}

// DefaultConnectionSettings returns the settings used for anything not
// explicitly configured: TLS on port 8883, topic LOKI_2004, 60s keep-alive.
func DefaultConnectionSettings() ConnectionSettings {
	return ConnectionSettings{
		Port:              DefaultPort,
		UseTLS:            true,
		Topic:             DefaultTopic,
		KeepAlive:         defaultKeepAlive,
		ConnectionTimeout: defaultConnectionTimeout,
	}
}

// ParseConnectionString reads settings from a semicolon separated connection
// string, starting from the defaults. Keys are case-insensitive and durations
// use ISO 8601, e.g.
// HostName=broker.example.com;TcpPort=8883;UseTls=true;KeepAlive=PT60S.
func ParseConnectionString(connStr string) (*ConnectionSettings, error) {
	cs := DefaultConnectionSettings()

	for _, param := range strings.Split(strings.TrimSuffix(connStr, ";"), ";") {
		kv := strings.SplitN(param, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])

		var err error
		switch k {
		case "hostname":
			cs.HostName = v
		case "tcpport":
			var port uint64
			port, err = strconv.ParseUint(v, 10, 16)
			cs.Port = uint16(port)
		case "usetls":
			cs.UseTLS, err = strconv.ParseBool(v)
		case "insecureskipverify":
			cs.InsecureSkipVerify, err = strconv.ParseBool(v)
		case "cafile":
			cs.CAFile = v
		case "certfile":
			cs.CertFile = v
		case "keyfile":
			cs.KeyFile = v
		case "username":
			cs.Username = v
		case "password":
			cs.Password = v
		case "clientid":
			cs.ClientID = v
		case "topic":
			cs.Topic = v
		case "qos":
			var qos uint64
			qos, err = strconv.ParseUint(v, 10, 8)
			cs.QoS = byte(qos)
		case "keepalive":
			cs.KeepAlive, err = parseDuration(v)
		case "connectiontimeout":
			cs.ConnectionTimeout, err = parseDuration(v)
		}
		if err != nil {
			return nil, &InvalidArgumentError{
				message: "invalid " + kv[0] + " in connection string",
				wrapped: err,
			}
		}
	}

	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return &cs, nil
}

// Validate checks the settings for consistency.
func (cs *ConnectionSettings) Validate() error {
	switch {
	case cs.HostName == "":
		return &InvalidArgumentError{message: "HostName must not be empty"}
	case cs.Port == 0:
		return &InvalidArgumentError{message: "TcpPort must not be zero"}
	case cs.Topic == "":
		return &InvalidArgumentError{message: "Topic must not be empty"}
	case strings.ContainsAny(cs.Topic, "+#"):
		return &InvalidArgumentError{
			message: "Topic must not contain wildcards",
		}
	case cs.QoS > 1:
		return &InvalidArgumentError{message: "QoS must be 0 or 1"}
	case cs.KeepAlive < 0 || cs.KeepAlive > maxKeepAlive:
		return &InvalidArgumentError{
			message: "KeepAlive must be between 0 and 65535 seconds",
		}
	case (cs.CertFile == "") != (cs.KeyFile == ""):
		return &InvalidArgumentError{
			message: "CertFile and KeyFile must be provided together",
		}
	case !cs.UseTLS && (cs.CAFile != "" || cs.CertFile != "" ||
		cs.InsecureSkipVerify):
		return &InvalidArgumentError{
			message: "TLS options require UseTls=true",
		}
	}
	return nil
}

// ConnectionProvider builds the provider described by the settings.
func (cs *ConnectionSettings) ConnectionProvider() ConnectionProvider {
	if !cs.UseTLS {
		return TCPConnection(cs.HostName, cs.Port)
	}

	var opts []TLSOption
	if cs.CAFile != "" {
		opts = append(opts, WithCA(cs.CAFile))
	}
	if cs.CertFile != "" {
		opts = append(opts, WithX509(cs.CertFile, cs.KeyFile))
	}
	if cs.InsecureSkipVerify {
		opts = append(opts, WithInsecureSkipVerify())
	}
	return TLSConnection(cs.HostName, cs.Port, opts...)
}

// ClientOptions translates the settings into client options.
func (cs *ConnectionSettings) ClientOptions() []ClientOption {
	opts := []ClientOption{
		WithTopic(cs.Topic),
		WithQoS(cs.QoS),
		WithKeepAlive(cs.KeepAlive),
		WithConnectionTimeout(cs.ConnectionTimeout),
	}
	if cs.ClientID != "" {
		opts = append(opts, WithClientID(cs.ClientID))
	}
	// Credentials are only sent as a pair.
	if cs.Username != "" && cs.Password != "" {
		opts = append(opts, WithUsername(cs.Username), WithPassword(cs.Password))
	}
	return opts
}

// LogValue renders the settings without the password.
func (cs ConnectionSettings) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("host", cs.HostName),
		slog.Int("port", int(cs.Port)),
		slog.Bool("use_tls", cs.UseTLS),
		slog.String("topic", cs.Topic),
		slog.Int("qos", int(cs.QoS)),
		slog.Duration("keep_alive", cs.KeepAlive),
	}
	if cs.InsecureSkipVerify {
		attrs = append(attrs, slog.Bool("insecure_skip_verify", true))
	}
	if cs.Username != "" {
		attrs = append(attrs, slog.String("username", cs.Username))
	}
	if cs.Password != "" {
		attrs = append(attrs, slog.String("password", redacted))
	}
	return slog.GroupValue(attrs...)
}

// NewClientFromSettings validates the settings and creates a client for them.
// Explicit options take precedence over the settings.
func NewClientFromSettings(
	store Appender,
	cs *ConnectionSettings,
	opt ...ClientOption,
) (*Client, error) {
	if store == nil {
		return nil, &InvalidArgumentError{message: "store must not be nil"}
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	c := NewClient(store, cs.ConnectionProvider(),
		append(cs.ClientOptions(), opt...)...)

	ctx := context.Background()
	c.log.Log(ctx, slog.LevelInfo, "broker settings", slog.Any("mqtt", *cs))
	if cs.InsecureSkipVerify {
		c.log.Log(ctx, slog.LevelWarn,
			"TLS certificate verification is disabled",
			slog.String("host", cs.HostName),
		)
	}
	return c, nil
}

func parseDuration(v string) (time.Duration, error) {
	d, err := duration.Parse(v)
	if err != nil {
		return 0, err
	}
	return d.ToTimeDuration(), nil
}
