package logkit

import (
	"io"
	"sync"
)

// Handler owns a sink and the level threshold below which it drops records.
// A handler may be stricter than the logger that dispatches to it, never
// more permissive: records arriving here already passed the pipeline's
// level filter. Write must be safe for concurrent callers.
type Handler interface {
	Write(r *Record) error
	Close() error
}

// StreamHandler writes formatted records to a fixed output stream. Writes
// are serialized so concurrent callers never interleave partial lines.
type StreamHandler struct {
	mu        sync.Mutex
	w         io.Writer
	level     Level
	formatter Formatter
}

// NewStreamHandler returns a handler writing to w at or above level,
// rendered by formatter.
func NewStreamHandler(w io.Writer, level Level, formatter Formatter) *StreamHandler {
	return &StreamHandler{w: w, level: level, formatter: formatter}
}

// NewConsoleHandler returns a StreamHandler on w with a ConsoleFormatter,
// coloring output when w is an interactive terminal.
func NewConsoleHandler(w io.Writer, level Level) *StreamHandler {
	return NewStreamHandler(w, level, &ConsoleFormatter{Color: IsTerminal(w)})
}

func (h *StreamHandler) Write(r *Record) error {
	if r.Level < h.level {
		return nil
	}
	line, err := h.formatter.Format(r)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}

// Close is a no-op: the handler does not own the stream's lifetime.
func (h *StreamHandler) Close() error { return nil }
