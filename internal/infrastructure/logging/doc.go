// Package logging provides structured logging for voicelight.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the bridge and the admin tool.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("cue published", "topic", topic)
//	logger.Error("failed to connect", "error", err)
//
// Never log the Discord token or MQTT password.
package logging
