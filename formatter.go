package logkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
)

// Formatter renders a filtered record into its output representation.
type Formatter interface {
	Format(r *Record) ([]byte, error)
}

// TimeLayout is the timestamp layout of the structured formatter: ISO-8601
// UTC with fixed-width fractional seconds, so output is stable under
// re-parsing.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

type jsonError struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Frames  []string `json:"frames"`
}

type jsonRecord struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module"`
	Function  string                 `json:"function"`
	Line      int                    `json:"line"`
	Context   map[string]interface{} `json:"context"`
	Extra     map[string]interface{} `json:"extra"`
	Error     *jsonError             `json:"error,omitempty"`
}

// JSONFormatter emits one self-describing JSON object per line. Map keys
// are rendered in sorted order, so output is deterministic for a given
// record.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(r *Record) ([]byte, error) {
	out := jsonRecord{
		Timestamp: r.Time.UTC().Format(TimeLayout),
		Level:     r.Level.String(),
		Logger:    r.Logger,
		Message:   r.Message,
		Module:    r.Origin.Module,
		Function:  r.Origin.Function,
		Line:      r.Origin.Line,
		Context:   r.Context,
		Extra:     r.Extra,
	}
	if out.Context == nil {
		out.Context = map[string]interface{}{}
	}
	if out.Extra == nil {
		out.Extra = map[string]interface{}{}
	}
	if r.Err != nil {
		out.Error = &jsonError{Type: r.Err.Type, Message: r.Err.Message, Frames: r.Err.Frames}
		if out.Error.Frames == nil {
			out.Error.Frames = []string{}
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// ANSI color codes per level, console formatter only.
const (
	ansiReset  = "\x1b[0m"
	ansiCyan   = "\x1b[36m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiBgRed  = "\x1b[1;31m"
)

func levelColor(l Level) string {
	switch l {
	case DebugLevel:
		return ansiCyan
	case InfoLevel:
		return ansiGreen
	case WarningLevel:
		return ansiYellow
	case ErrorLevel:
		return ansiRed
	case CriticalLevel:
		return ansiBgRed
	default:
		return ansiReset
	}
}

// consoleTimeLayout trades precision for scannable width.
const consoleTimeLayout = "2006-01-02 15:04:05.000"

// ConsoleFormatter renders a record as a single human-readable line:
//
//	[time] LEVEL logger: message | key=value key=value
//
// Context fields precede extra fields, each group in sorted key order. A
// captured error appends an indented traceback block after the line.
type ConsoleFormatter struct {
	// Color enables ANSI coloring of the level token. Handlers writing to
	// an interactive terminal set it via IsTerminal.
	Color bool
}

func (f *ConsoleFormatter) Format(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.WriteString(r.Time.UTC().Format(consoleTimeLayout))
	buf.WriteString("] ")
	if f.Color {
		buf.WriteString(levelColor(r.Level))
		fmt.Fprintf(&buf, "%-8s", r.Level.String())
		buf.WriteString(ansiReset)
	} else {
		fmt.Fprintf(&buf, "%-8s", r.Level.String())
	}
	buf.WriteByte(' ')
	buf.WriteString(r.Logger)
	buf.WriteString(": ")
	buf.WriteString(r.Message)

	if len(r.Context) > 0 || len(r.Extra) > 0 {
		buf.WriteString(" |")
		appendFlat(&buf, r.Context)
		appendFlat(&buf, r.Extra)
	}
	buf.WriteByte('\n')

	if r.Err != nil {
		fmt.Fprintf(&buf, "\t%s: %s\n", r.Err.Type, r.Err.Message)
		for _, frame := range r.Err.Frames {
			fmt.Fprintf(&buf, "\t\t%s\n", frame)
		}
	}
	return buf.Bytes(), nil
}

func appendFlat(buf *bytes.Buffer, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, " %s=%v", k, m[k])
	}
}

// IsTerminal reports whether w is an interactive terminal, used to decide
// console color output.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
