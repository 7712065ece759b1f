package mirror

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the sync feature.
func NewFeature(cfg Config, factory Factory, logger *zap.Logger) *Feature {
	svc := NewService(cfg, factory, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "mirror"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the protected routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// LoadPublic registers the health route.
func (f *Feature) LoadPublic(app fiber.Router) error {
	f.handler.RegisterPublicRoutes(app)
	return nil
}

// Service returns the underlying sync service.
func (f *Feature) Service() *Service {
	return f.service
}
