package publish

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ledcord/voicelight/internal/command"
	"github.com/ledcord/voicelight/internal/infrastructure/mqtt"
)

// fakeBroker captures publishes and lets the test deliver the verdict.
type fakeBroker struct {
	mu        sync.Mutex
	connected bool
	rejectErr error
	published []fakeMessage
}

type fakeMessage struct {
	topic   string
	payload []byte
	qos     byte
	done    func(error)
}

func (b *fakeBroker) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *fakeBroker) QoS() byte { return 1 }

func (b *fakeBroker) PublishAsync(topic string, payload []byte, qos byte, done func(error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rejectErr != nil {
		return b.rejectErr
	}
	b.published = append(b.published, fakeMessage{topic: topic, payload: payload, qos: qos, done: done})
	return nil
}

func (b *fakeBroker) last(t *testing.T) fakeMessage {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.published) == 0 {
		t.Fatal("nothing was published")
	}
	return b.published[len(b.published)-1]
}

type cueSample struct {
	topic, effect, outcome string
}

type fakeRecorder struct {
	mu      sync.Mutex
	samples []cueSample
}

func (r *fakeRecorder) RecordCue(topic, effect, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, cueSample{topic, effect, outcome})
}

// recordingLogger keeps the messages logged at each level.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+msg)
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.log("DEBUG", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.log("INFO", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.log("WARN", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.log("ERROR", msg) }

func sleepCommand() command.Command {
	d := 4000
	return &command.EffectCommand{Effect: "sleep", LED: 3, Duration: &d}
}

func waitOutcome(t *testing.T, d *Delivery) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	o, err := d.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	return o
}

func TestPublish_NotConnectedIsSkipped(t *testing.T) {
	broker := &fakeBroker{connected: false}
	recorder := &fakeRecorder{}
	logger := &recordingLogger{}
	g := NewGateway(broker, recorder, logger)

	d := g.Publish("lights/desk/control", sleepCommand(), "alice")

	o, ok := d.Outcome()
	if !ok {
		t.Fatal("Outcome() not resolved for a skipped publish")
	}
	if o.Kind != SkippedNotConnected {
		t.Errorf("Outcome = %v, want SkippedNotConnected", o)
	}
	if len(broker.published) != 0 {
		t.Errorf("broker received %d messages, want 0", len(broker.published))
	}
	if len(recorder.samples) != 1 || recorder.samples[0].outcome != "skipped_not_connected" {
		t.Errorf("recorder samples = %v", recorder.samples)
	}
	if len(logger.lines) != 1 || logger.lines[0] != "WARN mqtt not connected, light command skipped" {
		t.Errorf("log lines = %v", logger.lines)
	}
}

func TestPublish_NilBrokerIsSkipped(t *testing.T) {
	g := NewGateway(nil, nil, nil)
	o := waitOutcome(t, g.Publish("lights/desk/control", sleepCommand(), "alice"))
	if o.Kind != SkippedNotConnected {
		t.Errorf("Outcome = %v, want SkippedNotConnected", o)
	}
}

func TestPublish_Acknowledged(t *testing.T) {
	broker := &fakeBroker{connected: true}
	recorder := &fakeRecorder{}
	g := NewGateway(broker, recorder, nil)

	d := g.Publish("lights/desk/control", sleepCommand(), "alice")

	if _, ok := d.Outcome(); ok {
		t.Fatal("Outcome() resolved before the broker answered")
	}

	msg := broker.last(t)
	if msg.topic != "lights/desk/control" {
		t.Errorf("topic = %q", msg.topic)
	}
	if string(msg.payload) != `{"effect":"sleep","led":3,"duration":4000}` {
		t.Errorf("payload = %s", msg.payload)
	}
	if msg.qos != 1 {
		t.Errorf("qos = %d, want 1", msg.qos)
	}

	msg.done(nil)

	o := waitOutcome(t, d)
	if o.Kind != Published || o.Err != nil {
		t.Errorf("Outcome = %v, want Published", o)
	}
	if len(recorder.samples) != 1 || recorder.samples[0] != (cueSample{"lights/desk/control", "sleep", "published"}) {
		t.Errorf("recorder samples = %v", recorder.samples)
	}
}

func TestPublish_BrokerError(t *testing.T) {
	broker := &fakeBroker{connected: true}
	g := NewGateway(broker, nil, nil)

	d := g.Publish("lights/desk/control", sleepCommand(), "alice")
	brokerErr := errors.New("not authorized")
	broker.last(t).done(brokerErr)

	o := waitOutcome(t, d)
	if o.Kind != PublishFailed {
		t.Fatalf("Outcome = %v, want PublishFailed", o)
	}
	if !errors.Is(o.Err, brokerErr) {
		t.Errorf("Outcome.Err = %v, want %v", o.Err, brokerErr)
	}
}

func TestPublish_RejectedAtHandOff(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want OutcomeKind
	}{
		{"link dropped", mqtt.ErrNotConnected, SkippedNotConnected},
		{"invalid topic", mqtt.ErrInvalidTopic, PublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &fakeBroker{connected: true, rejectErr: tt.err}
			g := NewGateway(broker, nil, nil)

			o := waitOutcome(t, g.Publish("lights/desk/control", sleepCommand(), "alice"))
			if o.Kind != tt.want {
				t.Errorf("Outcome = %v, want %v", o, tt.want)
			}
		})
	}
}

func TestPublish_EncodeFailure(t *testing.T) {
	broker := &fakeBroker{connected: true}
	g := NewGateway(broker, nil, nil)

	o := waitOutcome(t, g.Publish("lights/desk/control", nil, "alice"))
	if o.Kind != PublishFailed || o.Err == nil {
		t.Errorf("Outcome = %v, want PublishFailed with error", o)
	}
	if len(broker.published) != 0 {
		t.Errorf("broker received %d messages, want 0", len(broker.published))
	}
}

func TestPublish_VerdictResolvesOnce(t *testing.T) {
	broker := &fakeBroker{connected: true}
	recorder := &fakeRecorder{}
	g := NewGateway(broker, recorder, nil)

	d := g.Publish("lights/desk/control", sleepCommand(), "alice")
	msg := broker.last(t)
	msg.done(nil)
	msg.done(errors.New("late failure"))

	if o := waitOutcome(t, d); o.Kind != Published {
		t.Errorf("Outcome = %v, want Published", o)
	}
	if len(recorder.samples) != 1 {
		t.Errorf("recorded %d samples, want 1", len(recorder.samples))
	}
}

func TestDelivery_WaitHonoursContext(t *testing.T) {
	d := newDelivery("lights/desk/control", "join")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestDelivery_IDsAreUnique(t *testing.T) {
	a := newDelivery("t", "join")
	b := newDelivery("t", "join")
	if a.ID == b.ID {
		t.Error("two deliveries share an ID")
	}
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Outcome{Kind: Published}, "published"},
		{Outcome{Kind: SkippedNotConnected}, "skipped_not_connected"},
		{Outcome{Kind: PublishFailed, Err: errors.New("boom")}, "publish_failed: boom"},
		{Outcome{}, "outcome(0)"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
