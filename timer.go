package logkit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MeasureTime runs fn inside a timed scope: a DEBUG record on entry, an
// INFO record with elapsed milliseconds on normal exit, and a single ERROR
// record with the elapsed time and captured failure on error or panic. The
// original error is returned unchanged and a panic is re-raised unchanged.
// Elapsed time comes from the monotonic clock.
//
// Each scope carries a generated span_id so its records can be paired, and
// fn receives a context whose frames include the operation fields.
func (l *Logger) MeasureTime(ctx context.Context, op string, fn func(context.Context) error, fields ...Field) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	scoped := make([]Field, 0, len(fields)+2)
	scoped = append(scoped, Str("operation", op), Str("span_id", uuid.NewString()))
	scoped = append(scoped, fields...)

	l.logAt(ctx, DebugLevel, "starting "+op, nil, 1, scoped)
	start := time.Now()

	defer func() {
		if v := recover(); v != nil {
			cause := &CapturedError{
				Type:    fmt.Sprintf("%T", v),
				Message: fmt.Sprint(v),
				Frames:  stackFrames(2),
			}
			l.logAt(ctx, ErrorLevel, "failed "+op, cause, 1, append(scoped, Dur("duration_ms", time.Since(start))))
			panic(v)
		}
	}()

	err = fn(WithContext(ctx, Fields{"operation": op}))
	elapsed := time.Since(start)
	if err != nil {
		l.logAt(ctx, ErrorLevel, "failed "+op, CaptureError(err, 1), 1, append(scoped, Dur("duration_ms", elapsed)))
		return err
	}
	l.logAt(ctx, InfoLevel, "completed "+op, nil, 1, append(scoped, Dur("duration_ms", elapsed)))
	return nil
}
