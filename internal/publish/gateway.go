package publish

import (
	"errors"
	"time"

	"github.com/ledcord/voicelight/internal/command"
	"github.com/ledcord/voicelight/internal/infrastructure/mqtt"
)

// Broker is the part of the MQTT client the gateway needs.
type Broker interface {
	// IsConnected reports whether the link is currently established.
	IsConnected() bool

	// QoS returns the delivery level to publish with.
	QoS() byte

	// PublishAsync hands a message to the broker client. done is called once
	// with the broker's verdict unless an error is returned.
	PublishAsync(topic string, payload []byte, qos byte, done func(error)) error
}

// Recorder receives one telemetry sample per outcome.
type Recorder interface {
	RecordCue(topic, effect, outcome string, latency time.Duration)
}

// Logger is the logging interface used by the gateway.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Gateway publishes lighting commands with connection-state awareness.
//
// Thread Safety: Publish is safe for concurrent use.
type Gateway struct {
	broker   Broker
	recorder Recorder
	logger   Logger
	now      func() time.Time
}

// NewGateway creates a gateway over broker.
//
// Parameters:
//   - broker: MQTT client used for the actual publish
//   - recorder: Telemetry sink (may be nil)
//   - logger: Logger instance (may be nil)
func NewGateway(broker Broker, recorder Recorder, logger Logger) *Gateway {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Gateway{
		broker:   broker,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish sends cmd to topic without waiting for the broker.
//
// If the link is down the command is dropped and the returned Delivery is
// already resolved as SkippedNotConnected. Otherwise the payload is handed to
// the broker and the Delivery resolves when the broker answers. label names
// the user the command is for and appears on every outcome log line.
func (g *Gateway) Publish(topic string, cmd command.Command, label string) *Delivery {
	d := newDelivery(topic, label)

	if g.broker == nil || !g.broker.IsConnected() {
		g.finish(d, cmd, Outcome{Kind: SkippedNotConnected}, 0)
		return d
	}

	payload, err := command.Encode(cmd)
	if err != nil {
		g.finish(d, cmd, Outcome{Kind: PublishFailed, Err: err}, 0)
		return d
	}

	g.logger.Debug("publishing light command",
		"cue_id", d.ID.String(),
		"topic", topic,
		"label", label,
		"effect", effectOf(cmd),
		"payload", string(payload),
	)

	started := g.now()
	err = g.broker.PublishAsync(topic, payload, g.broker.QoS(), func(err error) {
		latency := g.now().Sub(started)
		if err != nil {
			g.finish(d, cmd, Outcome{Kind: PublishFailed, Err: err}, latency)
			return
		}
		g.finish(d, cmd, Outcome{Kind: Published}, latency)
	})
	if err != nil {
		// The link can drop between the check above and the hand-off.
		if errors.Is(err, mqtt.ErrNotConnected) {
			g.finish(d, cmd, Outcome{Kind: SkippedNotConnected}, 0)
		} else {
			g.finish(d, cmd, Outcome{Kind: PublishFailed, Err: err}, 0)
		}
	}

	return d
}

// finish resolves d, then logs and records the outcome once.
func (g *Gateway) finish(d *Delivery, cmd command.Command, o Outcome, latency time.Duration) {
	if !d.resolve(o) {
		return
	}

	args := []any{
		"cue_id", d.ID.String(),
		"topic", d.Topic,
		"label", d.Label,
		"effect", effectOf(cmd),
	}

	switch o.Kind {
	case Published:
		g.logger.Info("light command published", append(args, "latency", latency)...)
	case SkippedNotConnected:
		g.logger.Warn("mqtt not connected, light command skipped", args...)
	default:
		g.logger.Error("light command publish failed", append(args, "error", o.Err)...)
	}

	if g.recorder != nil {
		g.recorder.RecordCue(d.Topic, effectOf(cmd), o.Kind.String(), latency)
	}
}

func effectOf(cmd command.Command) string {
	if cmd == nil {
		return ""
	}
	return cmd.Label()
}
