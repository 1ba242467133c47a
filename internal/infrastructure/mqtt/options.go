package mqtt

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ledcord/voicelight/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds a single connection attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// secureSchemes are broker URL schemes that imply TLS.
var secureSchemes = map[string]bool{
	"ssl":   true,
	"tls":   true,
	"mqtts": true,
	"tcps":  true,
	"wss":   true,
}

// brokerURL returns the broker address from cfg and whether it uses TLS.
func brokerURL(cfg config.MQTTConfig) (string, bool, error) {
	if cfg.Broker.URL != "" {
		u, err := url.Parse(cfg.Broker.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", false, fmt.Errorf("%w: %q", ErrInvalidBrokerURL, cfg.Broker.URL)
		}
		return cfg.Broker.URL, secureSchemes[u.Scheme], nil
	}

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port), cfg.Broker.TLS, nil
}

// buildClientOptions creates paho MQTT options from the bridge config.
//
// This configures:
//   - Broker URL (explicit url, or tcp:// / ssl:// from host and port)
//   - Client ID for identification
//   - Authentication credentials (if provided)
//   - Auto-reconnect; retries are spaced up to the configured interval
//   - TLS configuration (if the scheme or tls flag asks for it)
//   - Last Will on the bridge status topic
func buildClientOptions(cfg config.MQTTConfig) (*pahomqtt.ClientOptions, error) {
	broker, secure, err := brokerURL(cfg)
	if err != nil {
		return nil, err
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Commands are fire-and-forget; nothing is owed to us across sessions.
	opts.SetCleanSession(true)

	// Initial connect attempts repeat every interval. After a lost link paho
	// starts at 1s and doubles, so interval is a cap there, not a period.
	interval := cfg.ReconnectInterval()
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(interval)
	opts.SetMaxReconnectInterval(interval)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if secure {
		opts.SetTLSConfig(&tls.Config{
			MinVersion:         tlsMinVersion,
			InsecureSkipVerify: cfg.Broker.InsecureSkipVerify, //nolint:gosec // Opt-in for brokers with self-signed certificates
		})
	}

	opts.SetWill(
		Topics{}.BridgeStatus(cfg.Broker.ClientID),
		statusPayload("offline", cfg.Broker.ClientID, "unexpected_disconnect"),
		1,
		true,
	)

	return opts, nil
}

// statusPayload builds the JSON body published on the bridge status topic.
func statusPayload(status, clientID, reason string) string {
	if reason == "" {
		return fmt.Sprintf(
			`{"status":%q,"client_id":%q,"timestamp":%q}`,
			status, clientID, time.Now().UTC().Format(time.RFC3339),
		)
	}
	return fmt.Sprintf(
		`{"status":%q,"client_id":%q,"reason":%q,"timestamp":%q}`,
		status, clientID, reason, time.Now().UTC().Format(time.RFC3339),
	)
}
