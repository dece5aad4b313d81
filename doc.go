// Package logkit provides a structured, leveled logging pipeline with
// contextual fields, sensitive-data redaction, and pluggable outputs.
//
// # Overview
//
// Every log call builds an immutable Record (message, level, caller origin,
// contextual fields), runs it through an ordered filter pipeline (level
// gating, redaction, custom stages), and dispatches it to every configured
// handler. Handlers own their sink, their own level threshold, and a
// formatter (JSON or human-readable console output).
//
// Quick start
//
//	logger, err := logkit.GetLogger("svc")
//	if err != nil {
//	    panic(err)
//	}
//	logger.Info(ctx, "server started", logkit.Int("port", 8080))
//
//	ctx = logkit.WithContext(ctx, logkit.Fields{"request_id": "r-123"})
//	logger.Info(ctx, "processing request") // carries request_id
//
// # Configuration
//
// GetLogger resolves a preset from the ENVIRONMENT variable (development,
// testing, staging, production) and caches one logger per name. Use
// FromEnvironment or LoadConfigFile for explicit configuration; ApplyEnv
// overlays LOGKIT_* variables. ClearLoggers resets the cache (test isolation).
//
// # Guarantees
//
// Logging never raises into the caller: colliding field keys are dropped,
// sink failures are contained per handler, and filters may redact but not
// fail a call. MeasureTime re-propagates the wrapped operation's error or
// panic unchanged after emitting a timing record.
//
// # Interop
//
// NewSlogHandler adapts a Logger into a log/slog Handler so code written
// against the standard library routes through the same pipeline.
package logkit
