package logkit

import (
	"context"
	"fmt"
	"os"
)

// Logger is the orchestrator user code calls. It is immutable after
// construction and safe for concurrent use; handlers serialize their own
// writes.
type Logger struct {
	name     string
	level    Level
	filters  []Filter
	handlers []Handler
	metrics  *Metrics
}

// NewLogger builds a logger from cfg. Handler construction errors
// (unwritable paths, invalid specs) are surfaced here; after this, logging
// calls never fail into the caller.
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("logkit: config requires a name")
	}
	handlers := make([]Handler, 0, len(cfg.Handlers)+len(cfg.BuiltHandlers))
	for _, spec := range cfg.Handlers {
		h, err := spec.Build()
		if err != nil {
			for _, open := range handlers {
				open.Close()
			}
			return nil, err
		}
		handlers = append(handlers, h)
	}
	handlers = append(handlers, cfg.BuiltHandlers...)
	filters := make([]Filter, 0, len(cfg.Filters)+1)
	filters = append(filters, LevelFilter{Min: cfg.Level})
	filters = append(filters, cfg.Filters...)
	return &Logger{
		name:     cfg.Name,
		level:    cfg.Level,
		filters:  filters,
		handlers: handlers,
		metrics:  cfg.Metrics,
	}, nil
}

// Name returns the logger's registered name.
func (l *Logger) Name() string { return l.name }

// Level returns the pipeline's minimum level.
func (l *Logger) Level() Level { return l.level }

// Debug logs a message at DEBUG.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.logAt(ctx, DebugLevel, msg, nil, 1, fields)
}

// Info logs a message at INFO.
func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.logAt(ctx, InfoLevel, msg, nil, 1, fields)
}

// Warning logs a message at WARNING.
func (l *Logger) Warning(ctx context.Context, msg string, fields ...Field) {
	l.logAt(ctx, WarningLevel, msg, nil, 1, fields)
}

// Error logs a message at ERROR.
func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.logAt(ctx, ErrorLevel, msg, nil, 1, fields)
}

// Critical logs a message at CRITICAL.
func (l *Logger) Critical(ctx context.Context, msg string, fields ...Field) {
	l.logAt(ctx, CriticalLevel, msg, nil, 1, fields)
}

// Exception logs err at ERROR with its type, message, and stack captured
// into the record. It is a no-op when err is nil.
func (l *Logger) Exception(ctx context.Context, err error, msg string, fields ...Field) {
	if err == nil {
		return
	}
	l.logAt(ctx, ErrorLevel, msg, CaptureError(err, 1), 1, fields)
}

// logAt is the single funnel: build the record, run the filter pipeline,
// dispatch to every handler. calldepth counts frames between the user call
// site and logAt's caller.
func (l *Logger) logAt(ctx context.Context, level Level, msg string, cause *CapturedError, calldepth int, fields []Field) {
	if level < l.level {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	l.dispatch(newRecord(ctx, l.name, level, msg, cause, fields, calldepth+1))
}

// dispatch runs the filter pipeline and hands the surviving record to
// every handler.
func (l *Logger) dispatch(r *Record) {
	for _, f := range l.filters {
		if !f.Apply(r) {
			l.metrics.recordFiltered(l.name, r.Level)
			return
		}
	}
	for _, h := range l.handlers {
		if err := h.Write(r); err != nil {
			// a failing sink drops its copy of the record; it must not
			// suppress the other handlers or reach the caller
			l.metrics.recordHandlerError(l.name)
			fmt.Fprintf(os.Stderr, "logkit: handler write failed: %v\n", err)
		}
	}
	l.metrics.recordEmitted(l.name, r.Level)
}

// Close closes every handler. The logger must not be used afterwards.
func (l *Logger) Close() error {
	var first error
	for _, h := range l.handlers {
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
