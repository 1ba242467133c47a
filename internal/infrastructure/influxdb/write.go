package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the bridge.
const (
	measurementCue        = "light_cue"
	measurementTransition = "voice_transition"
)

// RecordCue writes the outcome of one lighting command.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - topic: Control topic the command was sent to (e.g., "lights/desk/control")
//   - effect: Effect of the command ("wakeup", "sleep", "static", ...)
//   - outcome: "published", "skipped_not_connected" or "publish_failed"
//   - latency: Time from dispatch to broker verdict (zero for skips)
//
// Example:
//
//	client.RecordCue("lights/desk/control", "wakeup", "published", 12*time.Millisecond)
func (c *Client) RecordCue(topic, effect, outcome string, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		measurementCue,
		map[string]string{
			"topic":   topic,
			"effect":  effect,
			"outcome": outcome,
		},
		map[string]interface{}{
			"count":      1,
			"latency_ms": float64(latency) / float64(time.Millisecond),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordTransition writes one classified voice-presence transition.
//
// Parameters:
//   - kind: "join", "leave" or "move"
//   - tracked: Whether the user had an enabled lighting configuration
func (c *Client) RecordTransition(kind string, tracked bool) {
	if !c.IsConnected() {
		return
	}

	tag := "false"
	if tracked {
		tag = "true"
	}

	point := write.NewPoint(
		measurementTransition,
		map[string]string{
			"kind":    kind,
			"tracked": tag,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
