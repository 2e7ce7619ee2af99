package logger

import (
	"sort"
	"sync"
)

// registry holds named component loggers. Bootstrap seeds it once per
// application start; lookups after that are read-mostly.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

func (r *loggerRegistry) put(name string, l *Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
}

func (r *loggerRegistry) get(name string) (*Logger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loggers[name]
	return l, ok
}

func (r *loggerRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Register stores a named logger in the registry.
func Register(name string, l *Logger) {
	registry.put(name, l)
}

// Get retrieves a named logger. Unregistered names fall back to the
// global logger tagged with the requested component name, so callers
// never need to check registration first.
func Get(name string) *Logger {
	if l, ok := registry.get(name); ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Registered returns the sorted names of all registered loggers.
func Registered() []string {
	return registry.names()
}

// RegisterDefaults seeds the registry with component loggers derived
// from the global logger. Call after Init.
func RegisterDefaults(names ...string) {
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
