package logkit

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Origin identifies the call site that produced a record.
type Origin struct {
	Module   string
	Function string
	Line     int
}

// CapturedError is an application error stored as data inside a record.
// It is never re-thrown by the logging call itself.
type CapturedError struct {
	Type    string
	Message string
	Frames  []string
}

// Record is the immutable snapshot of one log event. Context and Extra are
// populated at construction time and owned by the record; filters may
// sanitize their values before dispatch, but nothing mutates them after.
type Record struct {
	Time    time.Time
	Level   Level
	Logger  string
	Message string
	Origin  Origin
	Context map[string]interface{}
	Extra   map[string]interface{}
	Err     *CapturedError
}

// reservedAttrs is the fixed set of field names the record itself owns.
// Caller-supplied context or extra keys colliding with one of these are
// dropped at construction, never silently overwritten. Centrally defined:
// this list is the contract boundary against silent data loss.
var reservedAttrs = map[string]struct{}{
	"timestamp": {},
	"level":     {},
	"logger":    {},
	"message":   {},
	"module":    {},
	"function":  {},
	"line":      {},
	"context":   {},
	"extra":     {},
	"error":     {},
}

// newRecord builds a record from the current context frames and the
// caller-supplied fields. Construction never fails: colliding keys are
// dropped so logging cannot become a source of application failure.
// calldepth is the number of stack frames between the user call site and
// this function's caller.
func newRecord(ctx context.Context, logger string, level Level, msg string, cause *CapturedError, fields []Field, calldepth int) *Record {
	r := &Record{
		Time:    time.Now().UTC(),
		Level:   level,
		Logger:  logger,
		Message: msg,
		Origin:  callerOrigin(calldepth + 1),
		Context: make(map[string]interface{}),
		Extra:   make(map[string]interface{}, len(fields)),
		Err:     cause,
	}
	for k, v := range ContextFields(ctx) {
		if _, reserved := reservedAttrs[k]; reserved {
			continue
		}
		r.Context[k] = v
	}
	for _, f := range fields {
		if _, reserved := reservedAttrs[f.Key]; reserved {
			continue
		}
		r.Extra[f.Key] = f.Value
	}
	return r
}

// callerOrigin captures {module, function, line} for the frame skip levels
// above the caller of this function.
func callerOrigin(skip int) Origin {
	pc, _, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Origin{Module: "?", Function: "?"}
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return Origin{Module: "?", Function: "?", Line: line}
	}
	module, function := splitFuncName(fn.Name())
	return Origin{Module: module, Function: function, Line: line}
}

// splitFuncName splits a runtime function name like
// "github.com/acme/svc/store.(*DB).Get" into package path and function.
func splitFuncName(name string) (module, function string) {
	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	if dot < 0 {
		return name, "?"
	}
	dot += slash + 1
	return name[:dot], name[dot+1:]
}

// CaptureError converts a live error into record data: dynamic type name,
// message, and the current stack. skip counts frames above this function's
// caller to omit.
func CaptureError(err error, skip int) *CapturedError {
	if err == nil {
		return nil
	}
	return &CapturedError{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Frames:  stackFrames(skip + 1),
	}
}

func stackFrames(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	out := make([]string, 0, n)
	for {
		f, more := frames.Next()
		// runtime internals (panic plumbing, goroutine entry) are noise
		if !strings.HasPrefix(f.Function, "runtime.") {
			out = append(out, fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line))
		}
		if !more {
			break
		}
	}
	return out
}
