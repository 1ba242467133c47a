// Package publish sends lighting commands to the broker and reports what
// happened to each one.
//
// Gateway.Publish never blocks on the broker and never returns an error.
// Every call yields a *Delivery whose Outcome is one of:
//   - Published: the broker acknowledged the message
//   - SkippedNotConnected: the link was down, nothing was sent
//   - PublishFailed: encoding failed or the broker reported an error
//
// A skipped command is dropped, not queued. Delivery is at most once from the
// bridge's point of view; the broker's QoS governs what happens after the
// hand-off. Every outcome is logged and, when a Recorder is configured,
// written as telemetry.
package publish
