package logkit

import "context"

// Context frames ride on context.Context, the unit-of-concurrency scope in
// Go. Entering a scope derives a new context carrying one more frame; the
// scope ends when that context stops being used, which covers every exit
// path (returns, early returns, panics) without explicit cleanup. Frames
// from different goroutines never observe each other.

type contextFrameKey struct{}

// contextFrame is one nested scope's contribution to the merged context.
type contextFrame struct {
	parent *contextFrame
	fields Fields
}

// WithContext returns a derived context carrying fields as one additional
// context frame. Records constructed with the derived context see the
// merge of all frames, innermost wins on key collision; the parent
// context's bindings are untouched.
func WithContext(ctx context.Context, fields Fields) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	// snapshot so later caller mutation of the map cannot leak in
	copied := make(Fields, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	parent, _ := ctx.Value(contextFrameKey{}).(*contextFrame)
	return context.WithValue(ctx, contextFrameKey{}, &contextFrame{parent: parent, fields: copied})
}

// ContextFields returns the merged fields of every frame on the context,
// innermost frame winning on key collision. The returned map is a fresh
// copy owned by the caller.
func ContextFields(ctx context.Context) Fields {
	if ctx == nil {
		return Fields{}
	}
	top, _ := ctx.Value(contextFrameKey{}).(*contextFrame)
	if top == nil {
		return Fields{}
	}
	// walk outermost -> innermost so inner assignments overwrite outer ones
	var chain []*contextFrame
	for f := top; f != nil; f = f.parent {
		chain = append(chain, f)
	}
	merged := make(Fields)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].fields {
			merged[k] = v
		}
	}
	return merged
}
