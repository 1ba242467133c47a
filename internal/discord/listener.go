package discord

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ledcord/voicelight/internal/lightconfig"
	"github.com/ledcord/voicelight/internal/presence"
	"github.com/ledcord/voicelight/internal/publish"
)

const (
	// Intents requested from the gateway.
	Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	// defaultQueueSize bounds transitions waiting for Run.
	defaultQueueSize = 64

	// rosterTimeout bounds the roster query made when the session is ready.
	rosterTimeout = 5 * time.Second
)

// ErrMissingToken is returned when the bot token is empty.
var ErrMissingToken = errors.New("discord: bot token is required")

// Handler processes one transition to completion.
type Handler interface {
	Handle(ctx context.Context, t presence.Transition) (*publish.Delivery, error)
}

// Roster lists the enabled lighting configurations.
type Roster interface {
	ListEnabled(ctx context.Context) ([]lightconfig.UserLightConfig, error)
}

// Logger is the logging interface used by the listener.
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

// Listener owns the Discord session and the serial dispatch queue.
//
// Thread Safety:
//   - Gateway callbacks only enqueue; Run is the single consumer.
//   - Open, Run and Close may be called from different goroutines.
type Listener struct {
	session *discordgo.Session
	handler Handler
	roster  Roster
	logger  Logger

	events  chan presence.Transition
	dropped atomic.Int64
}

// New creates a listener for the bot identified by token. The session is not
// opened until Open is called.
//
// Parameters:
//   - token: Bot token, without the "Bot " prefix
//   - handler: Receives transitions one at a time (usually *presence.Bridge)
//   - roster: Enabled configurations logged when the session is ready (may be nil)
//   - logger: Logger instance (may be nil)
func New(token string, handler Handler, roster Roster, logger Logger) (*Listener, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = Intents
	// Handlers run on the gateway goroutine so enqueue order is event order.
	session.SyncEvents = true

	l := newListener(handler, roster, logger)
	l.session = session

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		l.onReady(r)
	})
	session.AddHandler(func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
		l.enqueue(TransitionFromVoiceState(v, channelNamer(s)))
	})

	return l, nil
}

func newListener(handler Handler, roster Roster, logger Logger) *Listener {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Listener{
		handler: handler,
		roster:  roster,
		logger:  logger,
		events:  make(chan presence.Transition, defaultQueueSize),
	}
}

// Open connects to the gateway.
func (l *Listener) Open() error {
	if err := l.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway. Transitions already queued are left for
// Run to drain or discard when its context ends.
func (l *Listener) Close() error {
	if l.session == nil {
		return nil
	}
	if err := l.session.Close(); err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}
	return nil
}

// Run handles queued transitions one at a time until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-l.events:
			// Errors are logged by the handler; the event is not retried.
			_, _ = l.handler.Handle(ctx, t)
		}
	}
}

// Dropped returns how many transitions were discarded because the queue was full.
func (l *Listener) Dropped() int64 {
	return l.dropped.Load()
}

// enqueue never blocks the gateway goroutine.
func (l *Listener) enqueue(t presence.Transition) {
	if t.Kind() == presence.Ignored {
		return
	}
	select {
	case l.events <- t:
	default:
		l.dropped.Add(1)
		l.logger.Warn("transition queue full, dropping event",
			"user_id", t.UserID,
			"kind", t.Kind().String(),
		)
	}
}

func (l *Listener) onReady(r *discordgo.Ready) {
	if r.User != nil {
		l.logger.Info("discord session ready", "bot", r.User.Username, "bot_id", r.User.ID, "guilds", len(r.Guilds))
	}
	if l.roster == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), rosterTimeout)
	defer cancel()

	configs, err := l.roster.ListEnabled(ctx)
	if err != nil {
		l.logger.Error("listing light configs failed", "error", err)
		return
	}

	l.logger.Info("tracking users", "count", len(configs))
	for _, c := range configs {
		l.logger.Info("tracked user",
			"user", c.Username,
			"user_id", c.UserID,
			"device", c.Device,
			"led", c.LED,
			"color", c.Color,
			"join_effect", c.JoinEffect,
		)
	}
}
