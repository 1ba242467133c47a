package presence

import (
	"context"
	"fmt"

	"github.com/ledcord/voicelight/internal/command"
	"github.com/ledcord/voicelight/internal/infrastructure/mqtt"
	"github.com/ledcord/voicelight/internal/lightconfig"
	"github.com/ledcord/voicelight/internal/publish"
)

// ConfigLookup is the part of the configuration store the bridge reads.
type ConfigLookup interface {
	Lookup(ctx context.Context, userID string) (lightconfig.UserLightConfig, bool, error)
}

// Publisher hands a command to the broker without waiting for it.
type Publisher interface {
	Publish(topic string, cmd command.Command, label string) *publish.Delivery
}

// TransitionRecorder receives one telemetry sample per classified transition.
type TransitionRecorder interface {
	RecordTransition(kind string, tracked bool)
}

// Logger is the logging interface used by the bridge.
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

// Bridge maps presence transitions to lighting commands.
type Bridge struct {
	store     ConfigLookup
	publisher Publisher
	topics    mqtt.Topics
	recorder  TransitionRecorder
	logger    Logger
}

// NewBridge creates a presence bridge.
//
// Parameters:
//   - store: Configuration lookup (only enabled rows are returned)
//   - publisher: Gateway the commands are handed to
//   - topics: Builds each device's control topic
//   - recorder: Transition telemetry (may be nil)
//   - logger: Logger instance (may be nil)
func NewBridge(store ConfigLookup, publisher Publisher, topics mqtt.Topics, recorder TransitionRecorder, logger Logger) *Bridge {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Bridge{
		store:     store,
		publisher: publisher,
		topics:    topics,
		recorder:  recorder,
		logger:    logger,
	}
}

// Handle processes one transition to completion.
//
// It returns the Delivery of the published command, or nil when nothing was
// published (ignored, move, untracked or disabled user). The error is non-nil
// only when the configuration lookup or command build failed; the event is
// not retried. Untracked users are logged at debug only.
func (b *Bridge) Handle(ctx context.Context, t Transition) (*publish.Delivery, error) {
	kind := t.Kind()
	if kind == Ignored {
		return nil, nil
	}

	cfg, ok, err := b.store.Lookup(ctx, t.UserID)
	if err != nil {
		b.logger.Error("light config lookup failed", "user_id", t.UserID, "error", err)
		return nil, fmt.Errorf("handling %s for %s: %w", kind, t.UserID, err)
	}
	b.record(kind, ok)
	if !ok {
		b.logger.Debug("no enabled light config", "user_id", t.UserID, "kind", kind.String())
		return nil, nil
	}

	var ck command.Kind
	switch kind {
	case Join:
		ck = command.Join
		b.logger.Info("user joined voice channel", "user", t.Username, "user_id", t.UserID, "channel", t.channel())
	case Leave:
		ck = command.Leave
		b.logger.Info("user left voice channel", "user", t.Username, "user_id", t.UserID, "channel", t.channel())
	default:
		// Moves are logged for tracked users but never light anything.
		b.logger.Info("user moved voice channel",
			"user", t.Username,
			"user_id", t.UserID,
			"from", t.PreviousChannel,
			"to", t.CurrentChannel,
		)
		return nil, nil
	}

	cmd, err := command.Build(cfg, ck)
	if err != nil {
		b.logger.Error("building light command failed", "user_id", t.UserID, "error", err)
		return nil, fmt.Errorf("handling %s for %s: %w", kind, t.UserID, err)
	}

	return b.publisher.Publish(b.topics.LightControl(cfg.Device), cmd, t.label()), nil
}

func (b *Bridge) record(kind Kind, tracked bool) {
	if b.recorder != nil {
		b.recorder.RecordTransition(kind.String(), tracked)
	}
}
