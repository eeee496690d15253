// Package logging provides structured logging for the Smart Bin platform.
//
// Built on the standard library's log/slog, it adds:
//   - Configuration-driven level, format, and destination
//   - Default service/version attributes on every record
//   - A Default() bootstrap logger for use before config is loaded
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("control plane started", "broker", cfg.MQTT.Broker.Host)
//
//	dispatchLog := log.With("component", "dispatch")
//	dispatchLog.Warn("dropped message", "topic", topic)
package logging
