package logkit

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// recordingHandler captures dispatched records for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []*Record
}

func (h *recordingHandler) Write(r *Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) Close() error { return nil }

func (h *recordingHandler) all() []*Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Record(nil), h.records...)
}

type failingHandler struct{}

func (failingHandler) Write(r *Record) error { return errors.New("disk full") }
func (failingHandler) Close() error          { return nil }

func newTestLogger(t *testing.T, level Level, handlers ...Handler) *Logger {
	t.Helper()
	logger, err := NewLogger(Config{
		Name:          "svc",
		Level:         level,
		BuiltHandlers: handlers,
		Filters:       []Filter{NewSensitiveDataFilter()},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return logger
}

func TestTestingPresetScenario(t *testing.T) {
	// preset testing gates at WARNING: info is silent, warning renders once
	var buf bytes.Buffer
	sink := NewStreamHandler(&buf, WarningLevel, &ConsoleFormatter{})
	logger := newTestLogger(t, WarningLevel, sink)

	ctx := context.Background()
	logger.Info(ctx, "x")
	if buf.Len() != 0 {
		t.Fatalf("info should produce no output under testing preset: %q", buf.String())
	}
	logger.Warning(ctx, "y", Int("code", 1))
	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected exactly one rendered line, got %q", out)
	}
	if !strings.Contains(out, "y") || !strings.Contains(out, "code=1") {
		t.Fatalf("line = %q", out)
	}
}

func TestLoggerContextScopes(t *testing.T) {
	rec := &recordingHandler{}
	logger := newTestLogger(t, DebugLevel, rec)

	ctx := WithContext(context.Background(), Fields{"request_id": "r1"})
	inner := WithContext(ctx, Fields{"request_id": "r2"})
	logger.Info(inner, "nested")
	logger.Info(ctx, "outer")

	records := rec.all()
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	if records[0].Context["request_id"] != "r2" {
		t.Fatalf("nested context = %v", records[0].Context)
	}
	if records[1].Context["request_id"] != "r1" {
		t.Fatalf("outer context = %v", records[1].Context)
	}
}

func TestLoggerException(t *testing.T) {
	rec := &recordingHandler{}
	logger := newTestLogger(t, DebugLevel, rec)

	logger.Exception(context.Background(), errors.New("boom"), "request failed", Str("route", "/x"))
	logger.Exception(context.Background(), nil, "ignored")

	records := rec.all()
	if len(records) != 1 {
		t.Fatalf("nil error should be a no-op, got %d records", len(records))
	}
	r := records[0]
	if r.Level != ErrorLevel {
		t.Fatalf("level = %v", r.Level)
	}
	if r.Err == nil || r.Err.Message != "boom" || len(r.Err.Frames) == 0 {
		t.Fatalf("captured error = %+v", r.Err)
	}
	if r.Extra["route"] != "/x" {
		t.Fatalf("extra lost: %v", r.Extra)
	}
}

func TestFailingHandlerDoesNotSuppressOthers(t *testing.T) {
	rec := &recordingHandler{}
	logger := newTestLogger(t, DebugLevel, failingHandler{}, rec)

	logger.Info(context.Background(), "still delivered") // must not panic or error
	if len(rec.all()) != 1 {
		t.Fatalf("second handler did not receive the record")
	}
}

func TestLoggerMetrics(t *testing.T) {
	rec := &recordingHandler{}
	m := NewMetrics(nil)
	logger, err := NewLogger(Config{
		Name:          "svc",
		Level:         WarningLevel,
		BuiltHandlers: []Handler{rec, failingHandler{}},
		Metrics:       m,
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	ctx := context.Background()
	logger.Warning(ctx, "kept")
	logger.Warning(ctx, "kept too")

	if got := testutil.ToFloat64(m.emitted.WithLabelValues("svc", "WARNING")); got != 2 {
		t.Fatalf("emitted = %v", got)
	}
	if got := testutil.ToFloat64(m.handlerErrors.WithLabelValues("svc")); got != 2 {
		t.Fatalf("handler errors = %v", got)
	}
}

func TestLoggerFilterOrderShortCircuits(t *testing.T) {
	rec := &recordingHandler{}
	var secondRan bool
	logger, err := NewLogger(Config{
		Name:  "svc",
		Level: DebugLevel,
		Filters: []Filter{
			FilterFunc(func(r *Record) bool { return false }),
			FilterFunc(func(r *Record) bool { secondRan = true; return true }),
		},
		BuiltHandlers: []Handler{rec},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info(context.Background(), "vetoed")
	if secondRan {
		t.Fatalf("veto did not short-circuit later stages")
	}
	if len(rec.all()) != 0 {
		t.Fatalf("vetoed record reached handlers")
	}
}

func TestNewLoggerConfigurationErrors(t *testing.T) {
	if _, err := NewLogger(Config{Level: InfoLevel}); err == nil {
		t.Fatalf("expected error for missing name")
	}
	_, err := NewLogger(Config{
		Name:     "svc",
		Handlers: []HandlerSpec{{Kind: "carrier-pigeon"}},
	})
	if err == nil {
		t.Fatalf("expected error for unknown handler kind")
	}
}
