package logkit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fastjson"
)

func TestJSONFormatterRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), Fields{"request_id": "r1"})
	r := newRecord(ctx, "svc", WarningLevel, "disk low", nil, []Field{
		Str("volume", "/data"),
		Int("free_pct", 7),
		Float64("ratio", 0.25),
		Bool("critical", false),
		Any("hint", nil),
	}, 0)

	line, err := (&JSONFormatter{}).Format(r)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if line[len(line)-1] != '\n' {
		t.Fatalf("expected one newline-terminated record")
	}
	v, err := fastjson.ParseBytes(line)
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if got := string(v.GetStringBytes("level")); got != "WARNING" {
		t.Fatalf("level = %q", got)
	}
	if got := string(v.GetStringBytes("message")); got != "disk low" {
		t.Fatalf("message = %q", got)
	}
	if got := string(v.GetStringBytes("logger")); got != "svc" {
		t.Fatalf("logger = %q", got)
	}
	if got := string(v.GetStringBytes("context", "request_id")); got != "r1" {
		t.Fatalf("context.request_id = %q", got)
	}
	if got := string(v.GetStringBytes("extra", "volume")); got != "/data" {
		t.Fatalf("extra.volume = %q", got)
	}
	if got := v.GetInt("extra", "free_pct"); got != 7 {
		t.Fatalf("extra.free_pct = %d", got)
	}
	if got := v.GetFloat64("extra", "ratio"); got != 0.25 {
		t.Fatalf("extra.ratio = %v", got)
	}
	if v.GetBool("extra", "critical") {
		t.Fatalf("extra.critical should be false")
	}
	if v.Get("extra", "hint").Type() != fastjson.TypeNull {
		t.Fatalf("extra.hint should be null")
	}
	ts := string(v.GetStringBytes("timestamp"))
	parsed, err := time.Parse(TimeLayout, ts)
	if err != nil {
		t.Fatalf("timestamp %q not parseable: %v", ts, err)
	}
	if !parsed.Equal(r.Time.Truncate(time.Microsecond)) {
		t.Fatalf("timestamp round-trip: %v vs %v", parsed, r.Time)
	}
}

func TestJSONFormatterError(t *testing.T) {
	r := newRecord(context.Background(), "svc", ErrorLevel, "failed", CaptureError(errors.New("boom"), 0), nil, 0)
	line, err := (&JSONFormatter{}).Format(r)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	v, err := fastjson.ParseBytes(line)
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if got := string(v.GetStringBytes("error", "message")); got != "boom" {
		t.Fatalf("error.message = %q", got)
	}
	if got := string(v.GetStringBytes("error", "type")); got == "" {
		t.Fatalf("error.type missing")
	}
	if frames := v.GetArray("error", "frames"); len(frames) == 0 {
		t.Fatalf("error.frames missing")
	}
}

func TestJSONFormatterOmitsErrorWhenAbsent(t *testing.T) {
	r := newRecord(context.Background(), "svc", InfoLevel, "ok", nil, nil, 0)
	line, _ := (&JSONFormatter{}).Format(r)
	if strings.Contains(string(line), `"error"`) {
		t.Fatalf("error object present without a captured error")
	}
}

func TestConsoleFormatterLine(t *testing.T) {
	ctx := WithContext(context.Background(), Fields{"request_id": "r1"})
	r := newRecord(ctx, "svc", WarningLevel, "y", nil, []Field{Int("code", 1)}, 0)
	line, err := (&ConsoleFormatter{}).Format(r)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	s := string(line)
	if !strings.Contains(s, "WARNING") || !strings.Contains(s, "svc: y") {
		t.Fatalf("line = %q", s)
	}
	if !strings.Contains(s, "code=1") || !strings.Contains(s, "request_id=r1") {
		t.Fatalf("fields not flattened: %q", s)
	}
	if strings.Contains(s, "\x1b[") {
		t.Fatalf("color emitted without Color set")
	}
	if strings.Count(s, "\n") != 1 {
		t.Fatalf("expected single line, got %q", s)
	}
}

func TestConsoleFormatterColor(t *testing.T) {
	r := newRecord(context.Background(), "svc", ErrorLevel, "x", nil, nil, 0)
	line, _ := (&ConsoleFormatter{Color: true}).Format(r)
	if !strings.Contains(string(line), ansiRed) {
		t.Fatalf("expected ANSI color for ERROR")
	}
}

func TestConsoleFormatterTraceback(t *testing.T) {
	r := newRecord(context.Background(), "svc", ErrorLevel, "failed", CaptureError(errors.New("boom"), 0), nil, 0)
	line, _ := (&ConsoleFormatter{}).Format(r)
	s := string(line)
	if !strings.Contains(s, "\t*errors.errorString: boom\n") {
		t.Fatalf("traceback header missing: %q", s)
	}
	if strings.Count(s, "\n") < 2 {
		t.Fatalf("expected multi-line traceback block")
	}
}

func TestConsoleFormatterRedactedRendering(t *testing.T) {
	r := testRecord(InfoLevel, Fields{"password": "abc123"})
	NewSensitiveDataFilter().Apply(r)
	for _, f := range []Formatter{&ConsoleFormatter{}, &JSONFormatter{}} {
		line, err := f.Format(r)
		if err != nil {
			t.Fatalf("format: %v", err)
		}
		if !strings.Contains(string(line), RedactedValue) {
			t.Fatalf("sentinel missing from %T output", f)
		}
		if strings.Contains(string(line), "abc123") {
			t.Fatalf("secret leaked through %T", f)
		}
	}
}
