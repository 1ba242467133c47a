package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ledcord/voicelight/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	fallbackBatchSize     = 100
	fallbackFlushInterval = 10 * time.Second
)

// pointWriter is the part of api.WriteAPI the recorder uses.
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Client records lighting cue telemetry to InfluxDB v2.
//
// Points are queued on the library's non-blocking write API and sent in
// batches. Once Close has run, every Record call is a no-op, so components
// holding the client as a recorder never need to know it went away.
type Client struct {
	client   influxdb2.Client
	writeAPI pointWriter
	cfg      config.InfluxDBConfig

	connected atomic.Bool

	errMu   sync.RWMutex
	onError func(err error)
}

// Connect pings the server and opens a batched write API on the configured
// org and bucket. It returns ErrDisabled when the sink is switched off.
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := uint(fallbackBatchSize)
	if cfg.BatchSize > 0 {
		batchSize = uint(cfg.BatchSize)
	}
	flush := fallbackFlushInterval
	if cfg.FlushInterval > 0 {
		flush = time.Duration(cfg.FlushInterval) * time.Second
	}

	opts := influxdb2.DefaultOptions().
		SetBatchSize(batchSize).
		SetFlushInterval(uint(flush.Milliseconds())) // #nosec G115 -- positive by construction
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	c := &Client{
		client:   client,
		writeAPI: writeAPI,
		cfg:      cfg,
	}
	c.connected.Store(true)

	go c.forwardWriteErrors(writeAPI.Errors())

	return c, nil
}

// ping reports an error unless the server answers healthy.
func ping(ctx context.Context, client influxdb2.Client) error {
	healthy, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !healthy {
		return fmt.Errorf("server not healthy")
	}
	return nil
}

// forwardWriteErrors hands batch failures to the registered callback.
// The channel closes when the underlying client is closed.
func (c *Client) forwardWriteErrors(errs <-chan error) {
	for err := range errs {
		c.errMu.RLock()
		callback := c.onError
		c.errMu.RUnlock()

		if callback != nil {
			callback(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		}
	}
}

// SetOnError registers the callback for asynchronous batch failures.
// Errors passed to it wrap ErrWriteFailed.
func (c *Client) SetOnError(callback func(err error)) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.onError = callback
}

// Close flushes queued points and releases the client.
// Safe on a nil client and safe to call more than once.
func (c *Client) Close() error {
	if c == nil || c.writeAPI == nil {
		return nil
	}
	if !c.connected.Swap(false) {
		return nil
	}

	c.writeAPI.Flush()
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// HealthCheck pings the server, bounded by pingTimeout even when ctx has no deadline.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := ping(checkCtx, c.client); err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is open. It does not ping.
func (c *Client) IsConnected() bool {
	return c != nil && c.connected.Load()
}
