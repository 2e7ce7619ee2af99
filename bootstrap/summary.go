package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/wirekit/di"
	"github.com/skillsenselab/wirekit/logger"
	"github.com/skillsenselab/wirekit/observability"
)

// ModuleStatus holds the tracked status of a wiring module during bootstrap.
type ModuleStatus struct {
	Name          string
	Registrations int
	Status        string
}

// ComponentStatus holds the tracked status of a component during bootstrap.
type ComponentStatus struct {
	Name    string
	Status  string
	Healthy bool
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	appName         string
	version         string
	runID           string
	profile         string
	startupDuration time.Duration
	modules         []ModuleStatus
	components      []ComponentStatus
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(appName, version, runID string) *Summary {
	return &Summary{
		appName:    appName,
		version:    version,
		runID:      runID,
		modules:    make([]ModuleStatus, 0),
		components: make([]ComponentStatus, 0),
	}
}

// SetProfile records the active wiring profile.
func (s *Summary) SetProfile(name string) {
	s.profile = name
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackModule records a module's bootstrap outcome and how many container
// registrations it contributed.
func (s *Summary) TrackModule(name string, registrations int, status string) {
	s.modules = append(s.modules, ModuleStatus{
		Name:          name,
		Registrations: registrations,
		Status:        status,
	})
}

// TrackComponent adds a component's bootstrap status to the summary.
func (s *Summary) TrackComponent(name, status string, healthy bool) {
	s.components = append(s.components, ComponentStatus{
		Name:    name,
		Status:  status,
		Healthy: healthy,
	})
}

// DisplaySummary prints the bootstrap summary including live health from
// the lifecycle. Both arguments may be nil.
func (s *Summary) DisplaySummary(lc *Lifecycle, c *di.Container) {
	// Header
	fmt.Printf("\n")
	fmt.Printf("🚀 %s v%s started in %.2fs (run %s)\n",
		s.appName, s.version, s.startupDuration.Seconds(), s.runID)
	if s.profile != "" {
		fmt.Printf("   profile: %s\n", s.profile)
	}
	fmt.Printf("\n")

	// Modules
	if len(s.modules) > 0 {
		fmt.Printf("🧩 Modules\n")
		for i, m := range s.modules {
			icon := statusIcon(m.Status, true)
			detail := m.Status
			if m.Status == "applied" {
				detail = fmt.Sprintf("%d registrations", m.Registrations)
			}
			fmt.Printf("   %s %s %s (%s)\n", treePrefix(i, len(s.modules)), icon, m.Name, detail)
		}
		fmt.Printf("\n")
	}

	// Components
	if len(s.components) > 0 {
		fmt.Printf("📦 Components\n")
		healthy := 0
		for i, comp := range s.components {
			icon := statusIcon(comp.Status, comp.Healthy)
			fmt.Printf("   %s %s %s (%s)\n", treePrefix(i, len(s.components)), icon, comp.Name, comp.Status)
			if comp.Healthy {
				healthy++
			}
		}
		fmt.Printf("\n")

		total := len(s.components)
		if healthy == total {
			fmt.Printf("✅ All components healthy (%d/%d)\n", healthy, total)
		} else {
			fmt.Printf("⚠️  Some components have issues (%d/%d healthy)\n", healthy, total)
		}
	}

	if len(s.modules) == 0 && len(s.components) == 0 {
		fmt.Printf("   └── Nothing registered\n")
	}

	// Container registrations
	if c != nil {
		fmt.Printf("\n🔗 Container: %d registrations\n", len(c.Keys()))
	}

	// Named loggers
	if names := logger.Registered(); len(names) > 0 {
		fmt.Printf("📝 Loggers: %s\n", strings.Join(names, ", "))
	}

	// Live health check
	if lc != nil {
		results := lc.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Printf("\n🏥 Health Check\n")
			for i, h := range results {
				icon := healthStatusIcon(h.Status)
				msg := ""
				if h.Message != "" {
					msg = fmt.Sprintf(" (%s)", h.Message)
				}
				fmt.Printf("   %s %s %s: %s%s\n", treePrefix(i, len(results)), icon, h.Name, string(h.Status), msg)
			}
		}
	}

	fmt.Printf("\n")
}

// treePrefix returns the tree branch glyph for item i of n.
func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func statusIcon(status string, healthy bool) string {
	if !healthy {
		return "❌"
	}
	switch status {
	case "active", "applied", "initialized", "connected", "healthy":
		return "✅"
	case "lazy":
		return "⚡"
	case "skipped", "inactive", "disabled":
		return "⏸️"
	case "error", "failed":
		return "❌"
	default:
		return "⚠️"
	}
}

func healthStatusIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}
