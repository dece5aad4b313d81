package logkit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment names a deployment preset.
type Environment string

// Deployment environments
const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// ParseEnvironment parses an environment name.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvDevelopment:
		return EnvDevelopment, nil
	case EnvTesting:
		return EnvTesting, nil
	case EnvStaging:
		return EnvStaging, nil
	case EnvProduction:
		return EnvProduction, nil
	default:
		return EnvDevelopment, fmt.Errorf("logkit: unknown environment %q", s)
	}
}

// CurrentEnvironment reads the ENVIRONMENT variable. Absence or an
// unrecognized value falls back to development rather than failing: the
// variable is a convenience default, unlike an explicitly supplied preset
// name which fails construction.
func CurrentEnvironment() Environment {
	env, err := ParseEnvironment(os.Getenv("ENVIRONMENT"))
	if err != nil {
		return EnvDevelopment
	}
	return env
}

// HandlerKind selects a sink variant.
type HandlerKind string

// Handler kinds
const (
	KindConsole   HandlerKind = "console"
	KindSizeFile  HandlerKind = "size_file"
	KindDailyFile HandlerKind = "daily_file"
)

// FormatKind selects an output representation.
type FormatKind string

// Format kinds
const (
	FormatJSON    FormatKind = "json"
	FormatConsole FormatKind = "console"
)

// HandlerSpec binds a sink to a level threshold and a formatter choice. It
// is declarative; Build materializes the handler (opening files) at logger
// construction.
type HandlerSpec struct {
	Kind     HandlerKind `yaml:"kind" json:"kind"`
	Path     string      `yaml:"path,omitempty" json:"path,omitempty"`
	Level    string      `yaml:"level,omitempty" json:"level,omitempty"`
	Format   FormatKind  `yaml:"format,omitempty" json:"format,omitempty"`
	MaxBytes int64       `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"`
	Backups  int         `yaml:"backups,omitempty" json:"backups,omitempty"`
	Compress bool        `yaml:"compress,omitempty" json:"compress,omitempty"`
}

// Build materializes the spec. Configuration errors (unknown kind,
// unwritable path) surface here, at construction, not at log time.
func (s HandlerSpec) Build() (Handler, error) {
	level := DebugLevel
	if s.Level != "" {
		var err error
		if level, err = ParseLevel(s.Level); err != nil {
			return nil, err
		}
	}
	var formatter Formatter
	switch s.Format {
	case FormatJSON:
		formatter = &JSONFormatter{}
	case FormatConsole, "":
		formatter = &ConsoleFormatter{Color: s.Kind == KindConsole && IsTerminal(os.Stdout)}
	default:
		return nil, fmt.Errorf("logkit: unknown format %q", s.Format)
	}
	switch s.Kind {
	case KindConsole:
		return NewStreamHandler(os.Stdout, level, formatter), nil
	case KindSizeFile:
		if s.Path == "" {
			return nil, fmt.Errorf("logkit: %s handler requires a path", s.Kind)
		}
		return NewSizeRotatingFileHandler(s.Path, level, formatter, RotateOptions{
			MaxBytes: s.MaxBytes, Backups: s.Backups, Compress: s.Compress,
		})
	case KindDailyFile:
		if s.Path == "" {
			return nil, fmt.Errorf("logkit: %s handler requires a path", s.Kind)
		}
		return NewDailyRotatingFileHandler(s.Path, level, formatter, RotateOptions{
			Backups: s.Backups, Compress: s.Compress,
		})
	default:
		return nil, fmt.Errorf("logkit: unknown handler kind %q", s.Kind)
	}
}

// Config is the immutable bundle a logger is built from. Identity for
// caching purposes is (Name, Fingerprint()).
type Config struct {
	Name        string        `yaml:"name" json:"name"`
	Environment Environment   `yaml:"environment,omitempty" json:"environment,omitempty"`
	Level       Level         `yaml:"-" json:"-"`
	LevelName   string        `yaml:"level,omitempty" json:"level,omitempty"`
	Handlers    []HandlerSpec `yaml:"handlers" json:"handlers"`

	// BuiltHandlers are pre-constructed handlers appended after the
	// declarative ones. This is the extension point for custom Handler
	// implementations; like Filters, they carry behavior and are not part
	// of the fingerprint.
	BuiltHandlers []Handler `yaml:"-" json:"-"`

	// Filters run after the built-in level filter, in order. Not part of
	// the fingerprint: filters carry behavior, not declarative identity.
	Filters []Filter `yaml:"-" json:"-"`

	// Metrics, when set, counts emitted/filtered/failed records.
	Metrics *Metrics `yaml:"-" json:"-"`
}

// FromEnvironment returns the named preset. dir is where file handlers
// write; empty means "logs". The presets differ only in level threshold,
// handler set, and rotation policy.
func FromEnvironment(name string, env Environment, dir string) (Config, error) {
	if dir == "" {
		dir = "logs"
	}
	logPath := filepath.Join(dir, name+".log")
	cfg := Config{
		Name:        name,
		Environment: env,
		Filters:     []Filter{NewSensitiveDataFilter()},
	}
	switch env {
	case EnvDevelopment:
		cfg.Level = DebugLevel
		cfg.Handlers = []HandlerSpec{
			{Kind: KindConsole, Level: "debug", Format: FormatConsole},
		}
	case EnvTesting:
		cfg.Level = WarningLevel
		cfg.Handlers = []HandlerSpec{
			{Kind: KindConsole, Level: "warning", Format: FormatConsole},
		}
	case EnvStaging:
		cfg.Level = InfoLevel
		cfg.Handlers = []HandlerSpec{
			{Kind: KindConsole, Level: "info", Format: FormatJSON},
			{Kind: KindSizeFile, Path: logPath, Level: "info", Format: FormatJSON, MaxBytes: 10 << 20, Backups: 5},
		}
	case EnvProduction:
		cfg.Level = InfoLevel
		cfg.Handlers = []HandlerSpec{
			{Kind: KindConsole, Level: "warning", Format: FormatJSON},
			{Kind: KindDailyFile, Path: logPath, Level: "info", Format: FormatJSON, Backups: 14, Compress: true},
		}
	default:
		return Config{}, fmt.Errorf("logkit: unknown environment %q", env)
	}
	return cfg, nil
}

// ApplyEnv overlays LOGKIT_* variables onto cfg: LOGKIT_LEVEL (pipeline
// threshold), LOGKIT_FORMAT (console handler format, json|console), and
// LOGKIT_DIR (directory of file handler paths).
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("LOGKIT_LEVEL"); v != "" {
		if level, err := ParseLevel(v); err == nil {
			cfg.Level = level
		}
	}
	if v := os.Getenv("LOGKIT_FORMAT"); v != "" {
		if f := FormatKind(strings.ToLower(v)); f == FormatJSON || f == FormatConsole {
			for i := range cfg.Handlers {
				if cfg.Handlers[i].Kind == KindConsole {
					cfg.Handlers[i].Format = f
				}
			}
		}
	}
	if v := os.Getenv("LOGKIT_DIR"); v != "" {
		for i := range cfg.Handlers {
			if cfg.Handlers[i].Path != "" {
				cfg.Handlers[i].Path = filepath.Join(v, filepath.Base(cfg.Handlers[i].Path))
			}
		}
	}
}

// LoadConfigFile reads a declarative config from a JSON or YAML file (by
// extension; anything not .json is parsed as YAML).
func LoadConfigFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(b, &cfg)
	} else {
		err = yaml.Unmarshal(b, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("logkit: parse config %s: %w", path, err)
	}
	if cfg.LevelName != "" {
		if cfg.Level, err = ParseLevel(cfg.LevelName); err != nil {
			return Config{}, err
		}
	}
	if cfg.Environment != "" {
		if cfg.Environment, err = ParseEnvironment(string(cfg.Environment)); err != nil {
			return Config{}, err
		}
	}
	cfg.Filters = []Filter{NewSensitiveDataFilter()}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the declarative parts of the config without opening any
// sink.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("logkit: config requires a name")
	}
	if len(c.Handlers) == 0 {
		return fmt.Errorf("logkit: config requires at least one handler")
	}
	for _, h := range c.Handlers {
		switch h.Kind {
		case KindConsole:
		case KindSizeFile, KindDailyFile:
			if h.Path == "" {
				return fmt.Errorf("logkit: %s handler requires a path", h.Kind)
			}
		default:
			return fmt.Errorf("logkit: unknown handler kind %q", h.Kind)
		}
		if h.Level != "" {
			if _, err := ParseLevel(h.Level); err != nil {
				return err
			}
		}
		switch h.Format {
		case "", FormatJSON, FormatConsole:
		default:
			return fmt.Errorf("logkit: unknown format %q", h.Format)
		}
	}
	return nil
}

// Fingerprint is a content hash over the declarative parts of the bundle,
// used with Name as the cache identity.
func (c Config) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|", c.Name, c.Environment, c.Level)
	for _, s := range c.Handlers {
		fmt.Fprintf(h, "%s,%s,%s,%s,%d,%d,%t|", s.Kind, s.Path, s.Level, s.Format, s.MaxBytes, s.Backups, s.Compress)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}
