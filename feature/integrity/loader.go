package integrity

import (
	"calendar-mirror/core/storage"
	"calendar-mirror/feature/gcal"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
}

// NewFeature creates the integrity feature.
func NewFeature(client storage.Client, storageCfg storage.Config, db *gorm.DB, google gcal.Config, logger *zap.Logger) *Feature {
	return &Feature{service: NewService(client, storageCfg, db, google, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service).RegisterRoutes(app)
	return nil
}

// Service returns the underlying service.
func (f *Feature) Service() *Service {
	return f.service
}
