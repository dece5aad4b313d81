package logkit

import (
	"context"
	"log/slog"
	"runtime"
)

// slogBridge is a slog.Handler that routes records through a Logger's
// filter/handler pipeline, so code written against log/slog shares the
// same gating, redaction, and sinks.
type slogBridge struct {
	logger *Logger
	attrs  []slog.Attr
	group  string
}

// NewSlogHandler adapts logger into a slog.Handler.
//
//	slogger := slog.New(logkit.NewSlogHandler(logger))
//	slogger.Info("listening", "port", 8080)
func NewSlogHandler(logger *Logger) slog.Handler {
	return &slogBridge{logger: logger}
}

// Enabled gates by the logger's pipeline level.
func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return fromSlogLevel(level) >= b.logger.level
}

// Handle converts the slog record and dispatches it. The record's PC
// provides the origin, so call sites survive the translation.
func (b *slogBridge) Handle(ctx context.Context, sr slog.Record) error {
	r := &Record{
		Time:    sr.Time.UTC(),
		Level:   fromSlogLevel(sr.Level),
		Logger:  b.logger.name,
		Message: sr.Message,
		Context: make(map[string]interface{}),
		Extra:   make(map[string]interface{}, sr.NumAttrs()+len(b.attrs)),
	}
	if pc := sr.PC; pc != 0 {
		if fn := runtime.FuncForPC(pc); fn != nil {
			_, line := fn.FileLine(pc)
			module, function := splitFuncName(fn.Name())
			r.Origin = Origin{Module: module, Function: function, Line: line}
		}
	}
	for k, v := range ContextFields(ctx) {
		if _, reserved := reservedAttrs[k]; !reserved {
			r.Context[k] = v
		}
	}
	for i := range b.attrs {
		b.setAttr(r, b.attrs[i])
	}
	sr.Attrs(func(a slog.Attr) bool {
		b.setAttr(r, a)
		return true
	})
	b.logger.dispatch(r)
	return nil
}

func (b *slogBridge) setAttr(r *Record, a slog.Attr) {
	key := a.Key
	if b.group != "" {
		key = b.group + "." + key
	}
	if _, reserved := reservedAttrs[key]; reserved {
		return
	}
	r.Extra[key] = a.Value.Resolve().Any()
}

// WithAttrs returns a copy of the handler with additional base attributes.
func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	nb := *b
	if len(attrs) > 0 {
		nb.attrs = append(append([]slog.Attr{}, b.attrs...), attrs...)
	}
	return &nb
}

// WithGroup returns a copy of the handler that prefixes attribute keys
// with the group name.
func (b *slogBridge) WithGroup(name string) slog.Handler {
	nb := *b
	if name != "" {
		if nb.group != "" {
			nb.group = nb.group + "." + name
		} else {
			nb.group = name
		}
	}
	return &nb
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level <= slog.LevelDebug:
		return DebugLevel
	case level <= slog.LevelInfo:
		return InfoLevel
	case level <= slog.LevelWarn:
		return WarningLevel
	case level <= slog.LevelError:
		return ErrorLevel
	default:
		return CriticalLevel
	}
}
