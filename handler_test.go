package logkit

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestStreamHandlerThreshold(t *testing.T) {
	var buf bytes.Buffer
	h := NewStreamHandler(&buf, ErrorLevel, &ConsoleFormatter{})
	if err := h.Write(testRecord(WarningLevel, nil)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("record below handler threshold was written")
	}
	if err := h.Write(testRecord(ErrorLevel, nil)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("record at threshold dropped")
	}
}

func TestStreamHandlerConcurrentWritesWholeLines(t *testing.T) {
	var buf bytes.Buffer
	h := NewStreamHandler(&buf, DebugLevel, &ConsoleFormatter{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Write(testRecord(InfoLevel, Fields{"n": j}))
			}
		}()
	}
	wg.Wait()
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 8*50 {
		t.Fatalf("expected 400 whole lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[") {
			t.Fatalf("interleaved partial line: %q", line)
		}
	}
}

func TestStreamHandlerCloseNoop(t *testing.T) {
	h := NewStreamHandler(&bytes.Buffer{}, DebugLevel, &ConsoleFormatter{})
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
