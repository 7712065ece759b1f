package loader

import (
	"context"
	"fmt"

	"calendar-mirror/core/reconcile"

	"github.com/gofiber/fiber/v2"
)

// Feature is a pluggable module of the application.
type Feature interface {
	// Name returns the unique name of the feature.
	Name() string
	// IsEnabled reports whether the feature should be loaded.
	IsEnabled() bool
	// Load registers the feature's routes.
	Load(app fiber.Router) error
}

// PublicRoutes is implemented by features exposing routes outside the API key guard.
type PublicRoutes interface {
	// LoadPublic registers the unauthenticated routes.
	LoadPublic(app fiber.Router) error
}

// RunHook is implemented by features that react to reconciliation passes.
type RunHook interface {
	// BeforeRun is called before a pass starts.
	BeforeRun(ctx context.Context, runID string)
	// AfterRun is called once a pass ends, successfully or not. report is never nil.
	AfterRun(ctx context.Context, report *reconcile.Report, err error)
}

// Manager holds the registry of features.
type Manager struct {
	features []Feature
}

// NewManager creates an empty feature manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a feature to the registry.
func (m *Manager) Register(f Feature) {
	m.features = append(m.features, f)
}

// Enabled returns the enabled features in registration order.
func (m *Manager) Enabled() []Feature {
	var out []Feature
	for _, f := range m.features {
		if f.IsEnabled() {
			out = append(out, f)
		}
	}
	return out
}

// LoadAll registers the routes of every enabled feature.
func (m *Manager) LoadAll(app fiber.Router) error {
	for _, f := range m.Enabled() {
		if err := f.Load(app); err != nil {
			return fmt.Errorf("failed to load feature %s: %w", f.Name(), err)
		}
	}
	return nil
}

// LoadPublic registers the public routes of every enabled feature.
func (m *Manager) LoadPublic(app fiber.Router) error {
	for _, f := range m.Enabled() {
		p, ok := f.(PublicRoutes)
		if !ok {
			continue
		}
		if err := p.LoadPublic(app); err != nil {
			return fmt.Errorf("failed to load public routes of %s: %w", f.Name(), err)
		}
	}
	return nil
}

// Hooks returns the run hooks of every enabled feature.
func (m *Manager) Hooks() []RunHook {
	var hooks []RunHook
	for _, f := range m.Enabled() {
		if h, ok := f.(RunHook); ok {
			hooks = append(hooks, h)
		}
	}
	return hooks
}
