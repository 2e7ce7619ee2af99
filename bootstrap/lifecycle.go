package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/observability"
)

// Component is a lifecycle-managed piece of the application, such as an
// HTTP listener or a connection pool. Components that also implement
// observability.HealthChecker are polled for the ready check and the
// health report; the rest are assumed healthy once started.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error
}

// lifecycleEntry holds a component and its started state.
type lifecycleEntry struct {
	component Component
	started   bool
}

// Lifecycle manages component startup and shutdown with deterministic
// ordering. Components are started in registration order and stopped in
// reverse order.
type Lifecycle struct {
	entries []*lifecycleEntry
	lookup  map[string]*lifecycleEntry
	mu      sync.RWMutex
}

// NewLifecycle creates an empty lifecycle.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		entries: make([]*lifecycleEntry, 0),
		lookup:  make(map[string]*lifecycleEntry),
	}
}

// Register adds a component. Components are started in the order they are
// registered, so register dependencies first.
func (l *Lifecycle) Register(c Component) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := c.Name()
	if _, exists := l.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &lifecycleEntry{component: c}
	l.entries = append(l.entries, entry)
	l.lookup[name] = entry

	logger.Debug("Component registered", map[string]interface{}{
		logger.FieldComponent: name,
	})
	return nil
}

// StartAll starts all components in registration order.
func (l *Lifecycle) StartAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger.Info("Starting all components", map[string]interface{}{
		"count": len(l.entries),
	})

	for _, entry := range l.entries {
		name := entry.component.Name()

		logger.Debug("Starting component", map[string]interface{}{logger.FieldComponent: name})
		if err := entry.component.Start(ctx); err != nil {
			logger.Error("Component start failed", map[string]interface{}{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
			return fmt.Errorf("start %s: %w", name, err)
		}

		entry.started = true
		logger.Debug("Component started", map[string]interface{}{logger.FieldComponent: name})
	}

	logger.Info("All components started")
	return nil
}

// StopAll gracefully stops started components in reverse registration order.
// Each component gets its own stop timeout so a hung component cannot stall
// the rest of the shutdown.
func (l *Lifecycle) StopAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger.Info("Stopping all components")

	var errs []error
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if !entry.started {
			continue
		}

		name := entry.component.Name()
		logger.Debug("Stopping component", map[string]interface{}{logger.FieldComponent: name})

		stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			logger.Error("Component stop failed", map[string]interface{}{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
		} else {
			logger.Info("Component stopped", map[string]interface{}{logger.FieldComponent: name})
		}
		entry.started = false
		cancel()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	logger.Info("All components stopped")
	return nil
}

// HealthAll returns health for every registered component in registration
// order. Components that do not implement observability.HealthChecker
// report up.
func (l *Lifecycle) HealthAll(ctx context.Context) []observability.Health {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := make([]observability.Health, 0, len(l.entries))
	for _, entry := range l.entries {
		name := entry.component.Name()
		if hc, ok := entry.component.(observability.HealthChecker); ok {
			h := hc.CheckHealth(ctx)
			if h.Name == "" {
				h.Name = name
			}
			results = append(results, h)
			continue
		}
		results = append(results, observability.Health{
			Name:   name,
			Status: observability.HealthStatusUp,
		})
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (l *Lifecycle) Get(name string) Component {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if entry, exists := l.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// All returns all registered components in registration order.
func (l *Lifecycle) All() []Component {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Component, 0, len(l.entries))
	for _, entry := range l.entries {
		result = append(result, entry.component)
	}
	return result
}

// FuncComponent adapts plain start/stop functions to the Component
// interface. Either function may be nil.
type FuncComponent struct {
	name   string
	start  func(ctx context.Context) error
	stop   func(ctx context.Context) error
	health func(ctx context.Context) observability.Health
}

// NewFuncComponent creates a component from start and stop functions.
func NewFuncComponent(name string, start, stop func(ctx context.Context) error) *FuncComponent {
	return &FuncComponent{name: name, start: start, stop: stop}
}

// WithHealth sets a custom health function.
func (f *FuncComponent) WithHealth(fn func(ctx context.Context) observability.Health) *FuncComponent {
	f.health = fn
	return f
}

// Name returns the component name.
func (f *FuncComponent) Name() string { return f.name }

// Start runs the start function if set.
func (f *FuncComponent) Start(ctx context.Context) error {
	if f.start == nil {
		return nil
	}
	return f.start(ctx)
}

// Stop runs the stop function if set.
func (f *FuncComponent) Stop(ctx context.Context) error {
	if f.stop == nil {
		return nil
	}
	return f.stop(ctx)
}

// CheckHealth reports the custom health if configured, up otherwise.
func (f *FuncComponent) CheckHealth(ctx context.Context) observability.Health {
	if f.health != nil {
		return f.health(ctx)
	}
	return observability.Health{Name: f.name, Status: observability.HealthStatusUp}
}
