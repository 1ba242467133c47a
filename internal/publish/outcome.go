package publish

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// OutcomeKind classifies what happened to a published command.
type OutcomeKind int

const (
	// Published means the broker acknowledged the message.
	Published OutcomeKind = iota + 1

	// SkippedNotConnected means the broker link was down and nothing was sent.
	SkippedNotConnected

	// PublishFailed means the command could not be encoded or the broker
	// reported an error.
	PublishFailed
)

// String returns the snake_case name used in logs and telemetry.
func (k OutcomeKind) String() string {
	switch k {
	case Published:
		return "published"
	case SkippedNotConnected:
		return "skipped_not_connected"
	case PublishFailed:
		return "publish_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one publish call. Err is set only for PublishFailed.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	}
	return o.Kind.String()
}

// Delivery tracks a single command from dispatch to its outcome.
//
// The outcome is set exactly once. Skips and encoding failures resolve before
// Publish returns; broker verdicts arrive later from another goroutine.
type Delivery struct {
	// ID correlates the dispatch and verdict log lines.
	ID    uuid.UUID
	Topic string
	Label string

	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func newDelivery(topic, label string) *Delivery {
	return &Delivery{
		ID:    uuid.New(),
		Topic: topic,
		Label: label,
		done:  make(chan struct{}),
	}
}

// resolve records the outcome. Later calls are ignored.
func (d *Delivery) resolve(o Outcome) bool {
	resolved := false
	d.once.Do(func() {
		d.outcome = o
		close(d.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the outcome is known.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Outcome returns the outcome and whether it is known yet.
func (d *Delivery) Outcome() (Outcome, bool) {
	select {
	case <-d.done:
		return d.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the outcome is known or ctx ends.
func (d *Delivery) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-d.done:
		return d.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
