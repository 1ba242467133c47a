package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ledcord/voicelight/internal/infrastructure/config"
)

// State is the broker link state as last reported by paho.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Client wraps paho.mqtt.golang for the bridge.
//
// Connection events from paho drive a single State value instead of
// scattered flags. Reconnection is left entirely to paho; the client only
// records what happened.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	state  atomic.Int32
	closed atomic.Bool

	// connected is closed on the first transition to Connected.
	connected     chan struct{}
	connectedOnce sync.Once

	onConnect      func()
	onDisconnect   func(err error)
	onReconnecting func()
	callbackMu     sync.RWMutex
}

// Connect creates the client and starts connecting in the background.
//
// It does not wait for the broker: paho keeps retrying at the configured
// interval and State moves to Connected once it succeeds. Use WaitConnected
// to block for the first connection.
//
// Returns:
//   - *Client: Client in the Connecting state
//   - error: If the broker settings are unusable
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts, err := buildClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		connected: make(chan struct{}),
	}

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		c.handleReconnecting()
	})

	c.setState(Connecting)
	c.client = pahomqtt.NewClient(opts)
	c.client.Connect()

	return c, nil
}

// WaitConnected blocks until the first successful connection or ctx ends.
func (c *Client) WaitConnected(ctx context.Context) error {
	select {
	case <-c.connected:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
	}
}

// handleConnect is called by paho when the connection is established.
func (c *Client) handleConnect() {
	if c.closed.Load() {
		return
	}
	c.setState(Connected)
	c.connectedOnce.Do(func() { close(c.connected) })

	c.publishStatus("online", "")

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called by paho when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.setState(Disconnected)

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// handleReconnecting is called by paho before each reconnect attempt.
func (c *Client) handleReconnecting() {
	// A Close racing with paho's reconnect loop must win.
	if c.closed.Load() {
		return
	}
	c.setState(Connecting)

	c.callbackMu.RLock()
	callback := c.onReconnecting
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// State returns the current link state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// IsConnected reports whether State is Connected.
func (c *Client) IsConnected() bool {
	return c.State() == Connected
}

// Close publishes a graceful offline status and disconnects.
//
// State becomes Disconnected before anything else so that publishes racing
// with shutdown are rejected rather than queued.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.closed.Swap(true) {
		return nil
	}
	wasConnected := c.IsConnected()
	c.setState(Disconnected)

	if wasConnected {
		// Best effort: the broker publishes the will if this is lost.
		_ = awaitToken(c.publishStatus("offline", "graceful_shutdown"), publishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setState(Disconnected)

	return nil
}

// HealthCheck reports ErrNotConnected unless the link is up.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return fmt.Errorf("%w: state %s", ErrNotConnected, c.State())
	}

	return nil
}

// SetOnConnect sets a callback invoked on initial connect and every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetOnReconnecting sets a callback invoked before each reconnect attempt.
func (c *Client) SetOnReconnecting(callback func()) {
	c.callbackMu.Lock()
	c.onReconnecting = callback
	c.callbackMu.Unlock()
}

// publishTimeout is var so tests can shorten it.
var publishTimeout = defaultPublishTimeout

// awaitToken waits for a paho token and reports its outcome.
func awaitToken(token pahomqtt.Token, timeout time.Duration) error {
	select {
	case <-token.Done():
	case <-time.After(timeout):
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}
