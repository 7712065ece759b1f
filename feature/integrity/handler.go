package integrity

import (
	"calendar-mirror/core/logger"
	"calendar-mirror/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for readiness checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = checks.SchemaReport{}
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/credentials", h.HandleCredentialsCheck)
}

// HandleIntegrityCheck runs every check.
// @Summary Run All Readiness Checks
// @Description Checks the Google credentials, the report archive and the run history schema.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Security ApiKeyAuth
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	return c.JSON(h.service.Report(c.Context()))
}

// HandleStorageCheck checks and optionally creates the archive bucket.
// @Summary Check Report Archive
// @Description Checks that the archive bucket exists and counts archived reports. Optionally creates the bucket.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create the bucket when missing"
// @Success 200 {object} checks.StorageReport "Storage Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckStorage(c.Context())
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Exists {
		l.Warn("Archive bucket missing", zap.String("bucket", report.Bucket))

		if fix {
			if err := h.service.FixStorage(c.Context()); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to create bucket",
					"details": err.Error(),
				})
			}
			report.Exists = true
		}
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks the run history schema.
// @Summary Check History Schema
// @Description Checks that the sync_runs table matches the expected model.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleCredentialsCheck checks the Google credential files.
// @Summary Check Google Credentials
// @Description Checks that the client secrets and cached token (or the service account key) are present.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.CredentialsReport "Credentials Report"
// @Security ApiKeyAuth
// @Router /integrity/credentials [get]
func (h *Handler) HandleCredentialsCheck(c *fiber.Ctx) error {
	return c.JSON(h.service.CheckCredentials())
}
