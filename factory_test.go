package logkit

import (
	"sync"
	"testing"
)

func TestRegistryCachesByName(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")
	r := NewRegistry()
	defer r.Clear()

	a, err := r.Get("svc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, err := r.Get("svc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical cached instance")
	}
	other, _ := r.Get("other")
	if other == a {
		t.Fatalf("distinct names must not share instances")
	}
}

func TestRegistryClearRebuilds(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")
	r := NewRegistry()
	a, _ := r.Get("svc")
	r.Clear()
	b, err := r.Get("svc")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if a == b {
		t.Fatalf("clear must invalidate cached instances")
	}
	r.Clear()
}

func TestRegistryExplicitConfig(t *testing.T) {
	r := NewRegistry()
	defer r.Clear()

	cfg, _ := FromEnvironment("svc", EnvTesting, "")
	a, err := r.Get("svc", cfg)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// compatible config: cached instance reused
	b, _ := r.Get("svc", cfg)
	if a != b {
		t.Fatalf("matching fingerprint should reuse the instance")
	}
	// incompatible config: rebuilt
	changed := cfg
	changed.Level = CriticalLevel
	c, err := r.Get("svc", changed)
	if err != nil {
		t.Fatalf("get changed: %v", err)
	}
	if c == a {
		t.Fatalf("changed fingerprint should rebuild")
	}
}

func TestRegistryConcurrentGet(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")
	r := NewRegistry()
	defer r.Clear()

	var wg sync.WaitGroup
	loggers := make([]*Logger, 16)
	for i := range loggers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := r.Get("svc")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			loggers[i] = l
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(loggers); i++ {
		if loggers[i] != loggers[0] {
			t.Fatalf("concurrent gets observed different instances")
		}
	}
}

func TestDefaultRegistryHelpers(t *testing.T) {
	t.Setenv("ENVIRONMENT", "testing")
	ClearLoggers()
	defer ClearLoggers()

	a, err := GetLogger("svc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := GetLogger("svc")
	if a != b {
		t.Fatalf("default registry should cache")
	}
	ClearLoggers()
	c, _ := GetLogger("svc")
	if c == a {
		t.Fatalf("ClearLoggers should invalidate the cache")
	}
}
