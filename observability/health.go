package observability

import "context"

// HealthStatus represents the health state of a component or application.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// AppHealth describes the overall health of an application and the
// container-managed components it started.
type AppHealth struct {
	App        string       `json:"app"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
// Lifecycle-managed components exposing it are polled by the app harness.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthFunc adapts a function to the HealthChecker interface.
type HealthFunc func(ctx context.Context) Health

func (f HealthFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// NewAppHealth creates an AppHealth with status up.
func NewAppHealth(app, version string) *AppHealth {
	return &AppHealth{
		App:     app,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall status
// if needed. Down wins over degraded, degraded over up.
func (ah *AppHealth) AddComponent(ch Health) {
	ah.Components = append(ah.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		ah.Status = HealthStatusDown
	case HealthStatusDegraded:
		if ah.Status != HealthStatusDown {
			ah.Status = HealthStatusDegraded
		}
	}
}
