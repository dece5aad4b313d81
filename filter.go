package logkit

import "strings"

// RedactedValue replaces the value of any field whose key matches the
// sensitive-data blocklist.
const RedactedValue = "[REDACTED]"

// Filter is one ordered stage of the record pipeline. Apply reports whether
// the record should be kept; a stage may also sanitize field values in
// place before the record is dispatched. Returning false short-circuits the
// remaining stages.
type Filter interface {
	Apply(r *Record) bool
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(r *Record) bool

func (f FilterFunc) Apply(r *Record) bool { return f(r) }

// LevelFilter vetoes records below a minimum level.
type LevelFilter struct {
	Min Level
}

func (f LevelFilter) Apply(r *Record) bool { return r.Level >= f.Min }

// defaultSensitiveKeys are substrings matched case-insensitively against
// field names (never values): a key like "user_password_hint" matches on
// "password".
var defaultSensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"authorization",
	"credential",
	"private_key",
	"ssn",
	"credit_card",
	"cvv",
	"pin",
	"session_id",
	"cookie",
	"csrf_token",
}

// SensitiveDataFilter replaces the values of blocklisted fields with
// RedactedValue. The key survives so consumers can see the field was
// present. It never vetoes a record.
type SensitiveDataFilter struct {
	keys []string
}

// NewSensitiveDataFilter returns a filter over the built-in blocklist plus
// any deployment-specific extra key substrings.
func NewSensitiveDataFilter(extra ...string) *SensitiveDataFilter {
	keys := make([]string, 0, len(defaultSensitiveKeys)+len(extra))
	keys = append(keys, defaultSensitiveKeys...)
	for _, k := range extra {
		keys = append(keys, strings.ToLower(k))
	}
	return &SensitiveDataFilter{keys: keys}
}

func (f *SensitiveDataFilter) Apply(r *Record) bool {
	f.sanitize(r.Context)
	f.sanitize(r.Extra)
	return true
}

func (f *SensitiveDataFilter) sanitize(m map[string]interface{}) {
	for k := range m {
		if f.sensitive(k) {
			m[k] = RedactedValue
		}
	}
}

func (f *SensitiveDataFilter) sensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, sub := range f.keys {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
