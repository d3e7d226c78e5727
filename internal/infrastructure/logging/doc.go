// Package logging configures the panel's log/slog output.
//
// Entries are JSON by default (text when logging.format is "text") and
// always carry service and version. Attributes whose key contains
// "password", "token" or "secret" are redacted, so an MQTT password or
// InfluxDB token passed by mistake never reaches the log.
//
//	logger := logging.New(cfg.Logging, version)
//	log := logger.Component("session")
//	log.Info("scan started", "duration_ms", 3000)
package logging
