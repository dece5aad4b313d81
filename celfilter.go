package logkit

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// ExpressionFilter evaluates a compiled CEL predicate against each record,
// letting deployments express veto rules ("level == 'DEBUG' &&
// logger.startsWith('noisy')") without writing a Filter implementation.
type ExpressionFilter struct {
	prog    cel.Program
	enabled bool
}

// NewExpressionFilter compiles expr into a filter. An empty expression
// yields a disabled filter that keeps everything. The expression sees the
// variables level, logger, message, module, function (strings), line (int),
// and the context and extra field maps.
func NewExpressionFilter(expr string) (*ExpressionFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &ExpressionFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("level", cel.StringType),
		cel.Variable("logger", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("module", cel.StringType),
		cel.Variable("function", cel.StringType),
		cel.Variable("line", cel.IntType),
		cel.Variable("context", cel.DynType),
		cel.Variable("extra", cel.DynType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return nil, iss2.Err()
	}
	if checked.OutputType().String() != cel.BoolType.String() {
		return nil, fmt.Errorf("logkit: expression must evaluate to bool, got %v", checked.OutputType())
	}
	prog, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	return &ExpressionFilter{prog: prog, enabled: true}, nil
}

// Apply keeps the record when the expression evaluates to true. Evaluation
// errors keep the record: a broken rule must not suppress logging.
func (f *ExpressionFilter) Apply(r *Record) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]interface{}{
		"level":    r.Level.String(),
		"logger":   r.Logger,
		"message":  r.Message,
		"module":   r.Origin.Module,
		"function": r.Origin.Function,
		"line":     int64(r.Origin.Line),
		"context":  r.Context,
		"extra":    r.Extra,
	})
	if err != nil {
		return true
	}
	keep, ok := out.Value().(bool)
	return !ok || keep
}
