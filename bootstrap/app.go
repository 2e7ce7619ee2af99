package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/wirekit/config"
	"github.com/skillsenselab/wirekit/di"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/observability"
	"github.com/skillsenselab/wirekit/version"
)

// App is a generic application harness with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy the Config
// interface. Any struct embedding config.Settings automatically satisfies
// Config.
//
// Startup runs in phases: defaults and profile overrides are applied to the
// config, the config is validated, the logger comes up, the container is
// seeded and the wiring modules register their providers. Run then starts
// the lifecycle components, fires the hooks and blocks until shutdown.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig,
//	    bootstrap.WithModules(storageModule, httpModule),
//	)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    // a.Cfg is *MyConfig, fully typed
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name      string
	Version   string
	RunID     string
	Profile   string
	Cfg       C
	Container *di.Container
	Lifecycle *Lifecycle
	Logger    *logger.Logger
	Summary   *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults and profile overrides, validates the config,
// initializes the logger, seeds the container and applies the wiring
// modules.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	s := cfg.GetSettings()

	o := resolveOptions(opts)

	// Profile overrides land on the settings before validation so the
	// final, effective configuration is what gets checked.
	var prof *Profile
	if o.profile != "" {
		loader := o.profileLoader
		if loader == nil {
			loader = NewFileProfileLoader("./configs/profiles", "./configs", ".")
		}
		p, err := loader.Load(o.profile)
		if err != nil {
			return nil, err
		}
		p.Settings.Apply(s)
		prof = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: config validation: %w", err)
	}

	if s.Version == "" {
		s.Version = version.Short()
	}

	app := &App[C]{
		Name:            s.Name,
		Version:         s.Version,
		RunID:           uuid.NewString(),
		Cfg:             cfg,
		Container:       di.New(),
		Lifecycle:       NewLifecycle(),
		gracefulTimeout: 15 * time.Second,
	}
	if prof != nil {
		app.Profile = prof.Name
	}

	// Apply options (may override logger, container, timeout).
	if o.container != nil {
		app.Container = o.container
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise build from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.New(&s.Logging, s.Name)
		logger.SetGlobalLogger(app.Logger)
	}

	app.Summary = NewSummary(s.Name, s.Version, app.RunID)
	if app.Profile != "" {
		app.Summary.SetProfile(app.Profile)
	}

	if err := app.seed(s); err != nil {
		return nil, err
	}
	if err := app.applyModules(o.modules, prof); err != nil {
		return nil, err
	}

	return app, nil
}

// seed registers the config, its settings and the logger so module
// providers can depend on them.
func (a *App[C]) seed(s *config.Settings) error {
	if err := di.RegisterValue[C](a.Container, a.Cfg); err != nil {
		return fmt.Errorf("bootstrap: register config: %w", err)
	}
	if err := di.RegisterValue(a.Container, s); err != nil {
		return fmt.Errorf("bootstrap: register settings: %w", err)
	}
	if err := di.RegisterValue(a.Container, a.Logger); err != nil {
		return fmt.Errorf("bootstrap: register logger: %w", err)
	}
	return nil
}

// applyModules runs the selected modules against the container and records
// skipped ones in the summary.
func (a *App[C]) applyModules(all []Module, prof *Profile) error {
	selected, err := selectModules(all, prof)
	if err != nil {
		return err
	}

	applied := make(map[string]bool, len(selected))
	for _, m := range selected {
		if err := a.ApplyModule(m); err != nil {
			return err
		}
		applied[m.Name] = true
	}

	for _, m := range all {
		if !applied[m.Name] {
			a.Summary.TrackModule(m.Name, 0, "skipped")
		}
	}
	return nil
}

// ApplyModule runs a single module's registrations against the container,
// bypassing profile selection.
func (a *App[C]) ApplyModule(m Module) error {
	if m.Register == nil {
		return fmt.Errorf("bootstrap: module %s has no register function", m.Name)
	}

	before := len(a.Container.Keys())
	if err := m.Register(a.Container); err != nil {
		return fmt.Errorf("bootstrap: module %s: %w", m.Name, err)
	}
	added := len(a.Container.Keys()) - before

	a.Summary.TrackModule(m.Name, added, "applied")
	a.Logger.Debug("Module applied", map[string]interface{}{
		logger.FieldModule: m.Name,
		"registrations":    added,
	})
	return nil
}

// RegisterComponent adds a component to the application's lifecycle.
func (a *App[C]) RegisterComponent(c Component) error {
	return a.Lifecycle.Register(c)
}

// OnConfigure registers a callback to run during the configure phase.
// Use this to finish wiring that needs started components, such as
// resolving handlers out of the container.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components report up.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var notReady []string
	for _, h := range a.Lifecycle.HealthAll(ctx) {
		if h.Status != observability.HealthStatusUp {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			notReady = append(notReady, detail)
		}
	}
	if len(notReady) > 0 {
		return fmt.Errorf("bootstrap: components not ready: %v", notReady)
	}
	return nil
}

// Health aggregates component health into an application-level report.
func (a *App[C]) Health(ctx context.Context) *observability.AppHealth {
	ah := observability.NewAppHealth(a.Name, a.Version)
	for _, h := range a.Lifecycle.HealthAll(ctx) {
		ah.AddComponent(h)
	}
	return ah
}

// Run executes the full application lifecycle for long-running services:
// start components, fire OnStart hooks, configure, ready check, fire
// OnReady hooks, block on signal, then shut down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Block until shutdown signal
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	// Graceful shutdown
	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run(), it does not block on shutdown signals: it runs the task
// function and gracefully shuts down when the task completes or the
// context is canceled (e.g. via SIGINT/SIGTERM).
//
// Use RunTask for CLI tools, batch jobs and one-shot processes that need
// the same bootstrap infrastructure (config, logger, modules, hooks) but
// have a finite workflow instead of running forever.
//
// Example:
//
//	app, _ := bootstrap.NewApp(&cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return processData(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Set up signal-based cancellation for the task
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	// Execute the task
	taskErr := task(taskCtx)

	// Graceful shutdown
	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// startup performs the common initialization sequence shared by Run and
// RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	fields := map[string]interface{}{
		"name":            a.Name,
		"version":         a.Version,
		logger.FieldRunID: a.RunID,
	}
	if a.Profile != "" {
		fields[logger.FieldProfile] = a.Profile
	}
	a.Logger.Info("Starting application", fields)

	// Phase 1: Initialize, start all registered components
	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("bootstrap: initialization: %w", err)
	}

	// Run OnStart hooks
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("bootstrap: on-start hook: %w", err)
	}

	// Phase 2: Configure, run wiring callbacks
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("bootstrap: configuration: %w", err)
	}

	// Ready check, verify all components are healthy
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	// Run OnReady hooks
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("bootstrap: on-ready hook: %w", err)
	}

	// Display startup summary
	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()

	return nil
}

// initialize starts all registered components (Phase 1).
func (a *App[C]) initialize(ctx context.Context) error {
	a.Logger.Info("Phase 1: Starting components")

	if err := a.Lifecycle.StartAll(ctx); err != nil {
		return err
	}

	for _, h := range a.Lifecycle.HealthAll(ctx) {
		a.Summary.TrackComponent(h.Name, "active", h.Status == observability.HealthStatusUp)
	}

	a.Logger.Info("Phase 1: All components started")
	return nil
}

// DisplaySummary prints the startup summary with live health from the
// lifecycle and the container's registration count.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Lifecycle, a.Container)
}

// configure runs registered configuration callbacks (Phase 2).
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Phase 2: Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}

	a.Logger.Info("Phase 2: Configuration complete")
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context
// cancellation. It returns the received signal, or nil when the context
// ended first.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, starting graceful shutdown", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop gracefully shuts down all components within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	// Run OnStop hooks before stopping components
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		shutdownErr = err
	}

	// Stop all components (reverse order)
	if err := a.Lifecycle.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		shutdownErr = err
	}

	// Close the container (runs registered closers)
	if err := a.Container.Close(); err != nil {
		a.Logger.Error("Container close error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
