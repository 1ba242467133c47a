// Package influxdb records lighting cue telemetry to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched point writes and health monitoring.
//
// # Purpose
//
// The sink is optional (influxdb.enabled). When enabled it stores:
//   - light_cue: one point per publish outcome, tagged by topic, effect and outcome
//   - voice_transition: one point per classified join/leave/move
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.RecordCue("lights/desk/control", "wakeup", "published", 8*time.Millisecond)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are reported via a callback.
// Connection and health check errors are returned directly.
package influxdb
