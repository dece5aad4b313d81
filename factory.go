package logkit

import "sync"

// Registry caches one logger per name for the lifetime of the process, so
// repeated lookups do not re-open sinks. It is an explicit, injectable
// object; the package-level GetLogger/ClearLoggers operate on a process
// default.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	logger      *Logger
	fingerprint string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Get resolves name to a cached logger. Without an explicit config, a
// cached instance is returned as-is and a missing one is built from the
// ENVIRONMENT preset. With an explicit config, the cached instance is
// reused only when its configuration fingerprint matches; otherwise the
// old instance is closed and replaced.
func (r *Registry) Get(name string, config ...Config) (*Logger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cached := r.entries[name]
	if len(config) == 0 {
		if cached != nil {
			return cached.logger, nil
		}
		cfg, err := FromEnvironment(name, CurrentEnvironment(), "")
		if err != nil {
			return nil, err
		}
		ApplyEnv(&cfg)
		return r.register(name, cfg)
	}

	cfg := config[0]
	cfg.Name = name
	if cached != nil && cached.fingerprint == cfg.Fingerprint() {
		return cached.logger, nil
	}
	if cached != nil {
		cached.logger.Close()
		delete(r.entries, name)
	}
	return r.register(name, cfg)
}

// register builds and caches; caller holds r.mu.
func (r *Registry) register(name string, cfg Config) (*Logger, error) {
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	r.entries[name] = &registryEntry{logger: logger, fingerprint: cfg.Fingerprint()}
	return logger, nil
}

// Clear closes every cached logger and empties the registry atomically:
// concurrent Get calls either see the old population or a fresh one, never
// a half-cleared map.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.logger.Close()
	}
	r.entries = make(map[string]*registryEntry)
}

var defaultRegistry = NewRegistry()

// GetLogger resolves name against the process-default registry.
func GetLogger(name string, config ...Config) (*Logger, error) {
	return defaultRegistry.Get(name, config...)
}

// ClearLoggers empties the process-default registry (test isolation).
func ClearLoggers() {
	defaultRegistry.Clear()
}
