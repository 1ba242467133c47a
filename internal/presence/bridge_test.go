package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ledcord/voicelight/internal/infrastructure/mqtt"
	"github.com/ledcord/voicelight/internal/lightconfig"
	"github.com/ledcord/voicelight/internal/publish"
)

// fakeStore serves enabled configs from a map.
type fakeStore struct {
	configs map[string]lightconfig.UserLightConfig
	err     error
	lookups int
}

func (s *fakeStore) Lookup(_ context.Context, userID string) (lightconfig.UserLightConfig, bool, error) {
	s.lookups++
	if s.err != nil {
		return lightconfig.UserLightConfig{}, false, s.err
	}
	cfg, ok := s.configs[userID]
	if !ok || !cfg.Enabled {
		return lightconfig.UserLightConfig{}, false, nil
	}
	return cfg, true, nil
}

// fakeBroker acknowledges every publish immediately.
type fakeBroker struct {
	mu        sync.Mutex
	connected bool
	messages  []brokerMessage
}

type brokerMessage struct {
	topic   string
	payload string
}

func (b *fakeBroker) IsConnected() bool { return b.connected }
func (b *fakeBroker) QoS() byte         { return 1 }

func (b *fakeBroker) PublishAsync(topic string, payload []byte, _ byte, done func(error)) error {
	b.mu.Lock()
	b.messages = append(b.messages, brokerMessage{topic, string(payload)})
	b.mu.Unlock()
	done(nil)
	return nil
}

type fakeRecorder struct {
	samples []string
}

func (r *fakeRecorder) RecordTransition(kind string, tracked bool) {
	if tracked {
		kind += "+tracked"
	}
	r.samples = append(r.samples, kind)
}

func scenarioConfig() lightconfig.UserLightConfig {
	return lightconfig.UserLightConfig{
		UserID:        "u1",
		Username:      "alice",
		Device:        "d1",
		LED:           2,
		Color:         "#FF0000",
		JoinEffect:    "wakeup",
		JoinDuration:  6000,
		NextEffect:    "breathe",
		Speed:         lightconfig.DefaultSpeed,
		Brightness:    lightconfig.DefaultBrightness,
		LeaveEffect:   lightconfig.DefaultLeaveEffect,
		LeaveDuration: lightconfig.DefaultLeaveDuration,
		Enabled:       true,
	}
}

// levelLogger counts messages per level.
type levelLogger struct {
	mu    sync.Mutex
	lines map[string][]string
}

func (l *levelLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lines == nil {
		l.lines = map[string][]string{}
	}
	l.lines[level] = append(l.lines[level], msg)
}

func (l *levelLogger) Debug(msg string, _ ...any) { l.log("DEBUG", msg) }
func (l *levelLogger) Info(msg string, _ ...any)  { l.log("INFO", msg) }
func (l *levelLogger) Warn(msg string, _ ...any)  { l.log("WARN", msg) }
func (l *levelLogger) Error(msg string, _ ...any) { l.log("ERROR", msg) }

type harness struct {
	store    *fakeStore
	broker   *fakeBroker
	recorder *fakeRecorder
	bridge   *Bridge
}

func newHarness(configs ...lightconfig.UserLightConfig) *harness {
	h := &harness{
		store:    &fakeStore{configs: map[string]lightconfig.UserLightConfig{}},
		broker:   &fakeBroker{connected: true},
		recorder: &fakeRecorder{},
	}
	for _, c := range configs {
		h.store.configs[c.UserID] = c
	}
	gateway := publish.NewGateway(h.broker, nil, nil)
	h.bridge = NewBridge(h.store, gateway, mqtt.Topics{}, h.recorder, nil)
	return h
}

func waitPublished(t *testing.T, d *publish.Delivery) publish.Outcome {
	t.Helper()
	if d == nil {
		t.Fatal("Handle() returned no delivery")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	o, err := d.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	return o
}

func TestHandle_Scenarios(t *testing.T) {
	solid := scenarioConfig()
	solid.UserID = "u2"
	solid.JoinEffect = "solid"
	solid.LED = 5
	solid.Color = "#00FF00"
	solid.Brightness = 128

	tests := []struct {
		name        string
		transition  Transition
		wantTopic   string
		wantPayload string
	}{
		{
			name:        "wakeup join",
			transition:  Transition{UserID: "u1", CurrentChannel: "c1"},
			wantTopic:   "lights/d1/control",
			wantPayload: `{"effect":"wakeup","led":2,"color":"#FF0000","duration":6000,"next":"breathe"}`,
		},
		{
			name:        "sleep leave",
			transition:  Transition{UserID: "u1", PreviousChannel: "c1"},
			wantTopic:   "lights/d1/control",
			wantPayload: `{"effect":"sleep","led":2,"duration":4000}`,
		},
		{
			name:        "solid join",
			transition:  Transition{UserID: "u2", CurrentChannel: "c1"},
			wantTopic:   "lights/d1/control",
			wantPayload: `{"leds":[{"index":5,"color":"#00FF00","brightness":128}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(scenarioConfig(), solid)

			d, err := h.bridge.Handle(context.Background(), tt.transition)
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if o := waitPublished(t, d); o.Kind != publish.Published {
				t.Errorf("Outcome = %v, want Published", o)
			}

			if len(h.broker.messages) != 1 {
				t.Fatalf("broker received %d messages, want 1", len(h.broker.messages))
			}
			msg := h.broker.messages[0]
			if msg.topic != tt.wantTopic {
				t.Errorf("topic = %q, want %q", msg.topic, tt.wantTopic)
			}
			if msg.payload != tt.wantPayload {
				t.Errorf("payload = %s, want %s", msg.payload, tt.wantPayload)
			}
		})
	}
}

func TestHandle_MoveNeverPublishes(t *testing.T) {
	tests := []struct {
		userID     string
		wantSample string
	}{
		{"u1", "move+tracked"},
		{"stranger", "move"},
	}

	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			h := newHarness(scenarioConfig())

			d, err := h.bridge.Handle(context.Background(), Transition{
				UserID:          tt.userID,
				PreviousChannel: "c1",
				CurrentChannel:  "c2",
			})
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if d != nil {
				t.Error("Handle() returned a delivery for a move")
			}
			if len(h.broker.messages) != 0 {
				t.Errorf("broker received %d messages, want 0", len(h.broker.messages))
			}
			if len(h.recorder.samples) != 1 || h.recorder.samples[0] != tt.wantSample {
				t.Errorf("recorder samples = %v, want [%s]", h.recorder.samples, tt.wantSample)
			}
		})
	}
}

func TestHandle_IgnoredTransition(t *testing.T) {
	h := newHarness(scenarioConfig())

	d, err := h.bridge.Handle(context.Background(), Transition{UserID: "u1", PreviousChannel: "c1", CurrentChannel: "c1"})
	if err != nil || d != nil {
		t.Errorf("Handle() = %v, %v; want nil, nil", d, err)
	}
	if h.store.lookups != 0 || len(h.recorder.samples) != 0 {
		t.Error("ignored transition should touch neither store nor recorder")
	}
}

func TestHandle_UntrackedUserIsSilent(t *testing.T) {
	h := newHarness(scenarioConfig())

	d, err := h.bridge.Handle(context.Background(), Transition{UserID: "stranger", CurrentChannel: "c1"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if d != nil {
		t.Error("Handle() returned a delivery for an untracked user")
	}
	if len(h.broker.messages) != 0 {
		t.Errorf("broker received %d messages, want 0", len(h.broker.messages))
	}
	if len(h.recorder.samples) != 1 || h.recorder.samples[0] != "join" {
		t.Errorf("recorder samples = %v, want [join]", h.recorder.samples)
	}
}

func TestHandle_DisabledUserIsSilent(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Enabled = false
	h := newHarness(cfg)

	d, err := h.bridge.Handle(context.Background(), Transition{UserID: "u1", CurrentChannel: "c1"})
	if err != nil || d != nil {
		t.Errorf("Handle() = %v, %v; want nil, nil", d, err)
	}
	if len(h.broker.messages) != 0 {
		t.Errorf("broker received %d messages, want 0", len(h.broker.messages))
	}
}

func TestHandle_LookupError(t *testing.T) {
	h := newHarness(scenarioConfig())
	h.store.err = errors.New("database is locked")

	d, err := h.bridge.Handle(context.Background(), Transition{UserID: "u1", CurrentChannel: "c1"})
	if !errors.Is(err, h.store.err) {
		t.Errorf("Handle() error = %v, want wrapped lookup error", err)
	}
	if d != nil {
		t.Error("Handle() returned a delivery after a lookup error")
	}
}

func TestHandle_BrokerDisconnected(t *testing.T) {
	h := newHarness(scenarioConfig())
	h.broker.connected = false

	d, err := h.bridge.Handle(context.Background(), Transition{UserID: "u1", PreviousChannel: "c1"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if o := waitPublished(t, d); o.Kind != publish.SkippedNotConnected {
		t.Errorf("Outcome = %v, want SkippedNotConnected", o)
	}
	if len(h.broker.messages) != 0 {
		t.Errorf("broker received %d messages, want 0", len(h.broker.messages))
	}
}

func TestHandle_CustomTopicPrefix(t *testing.T) {
	h := newHarness(scenarioConfig())
	h.bridge.topics = mqtt.Topics{Prefix: "home/leds"}

	d, err := h.bridge.Handle(context.Background(), Transition{UserID: "u1", CurrentChannel: "c1"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	waitPublished(t, d)
	if got := h.broker.messages[0].topic; got != "home/leds/d1/control" {
		t.Errorf("topic = %q, want home/leds/d1/control", got)
	}
}

func TestHandle_UntrackedUserLogsNothingAtInfo(t *testing.T) {
	transitions := map[string]Transition{
		"join":  {UserID: "stranger", Username: "stranger", CurrentChannel: "c1"},
		"leave": {UserID: "stranger", Username: "stranger", PreviousChannel: "c1"},
		"move":  {UserID: "stranger", Username: "stranger", PreviousChannel: "c1", CurrentChannel: "c2"},
	}

	for name, tr := range transitions {
		t.Run(name, func(t *testing.T) {
			h := newHarness(scenarioConfig())
			logger := &levelLogger{}
			h.bridge.logger = logger

			if _, err := h.bridge.Handle(context.Background(), tr); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := logger.lines["INFO"]; len(got) != 0 {
				t.Errorf("info lines for untracked user = %v, want none", got)
			}
			if len(logger.lines["DEBUG"]) != 1 {
				t.Errorf("debug lines = %v, want one", logger.lines["DEBUG"])
			}
		})
	}
}

func TestHandle_TrackedUserLogsAtInfo(t *testing.T) {
	transitions := map[string]Transition{
		"join":  {UserID: "u1", CurrentChannel: "c1"},
		"leave": {UserID: "u1", PreviousChannel: "c1"},
		"move":  {UserID: "u1", PreviousChannel: "c1", CurrentChannel: "c2"},
	}

	for name, tr := range transitions {
		t.Run(name, func(t *testing.T) {
			h := newHarness(scenarioConfig())
			logger := &levelLogger{}
			h.bridge.logger = logger

			d, err := h.bridge.Handle(context.Background(), tr)
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if d != nil {
				waitPublished(t, d)
			}
			if len(logger.lines["INFO"]) != 1 {
				t.Errorf("info lines = %v, want one", logger.lines["INFO"])
			}
		})
	}
}

func TestHandle_DeliveryLabelNamesUser(t *testing.T) {
	tests := []struct {
		name       string
		transition Transition
		want       string
	}{
		{"username", Transition{UserID: "u1", Username: "alice", CurrentChannel: "c1"}, "alice"},
		{"falls back to id", Transition{UserID: "u1", CurrentChannel: "c1"}, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(scenarioConfig())

			d, err := h.bridge.Handle(context.Background(), tt.transition)
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			waitPublished(t, d)
			if d.Label != tt.want {
				t.Errorf("Label = %q, want %q", d.Label, tt.want)
			}
		})
	}
}
