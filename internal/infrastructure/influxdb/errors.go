package influxdb

import "errors"

// Sentinel errors, checked with errors.Is.
var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed wraps the ping failure seen by Connect.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected is returned by HealthCheck after Close.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrWriteFailed wraps batch failures delivered to the SetOnError callback.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
