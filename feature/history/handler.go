package history

import (
	"errors"

	"calendar-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for run history.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleList)
	group.Get("/latest", h.HandleLatest)
}

// HandleList returns recent runs.
// @Summary List runs
// @Description Returns the most recent synchronization passes, newest first.
// @Tags history
// @Produce json
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} SyncRun
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /runs [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	runs, err := h.store.List(c.UserContext(), c.QueryInt("limit", DefaultLimit))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if runs == nil {
		runs = []SyncRun{}
	}
	return c.JSON(runs)
}

// HandleLatest returns the latest run.
// @Summary Latest run
// @Description Returns the most recent synchronization pass.
// @Tags history
// @Produce json
// @Success 200 {object} SyncRun
// @Failure 404 {object} map[string]string "No run recorded"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /runs/latest [get]
func (h *Handler) HandleLatest(c *fiber.Ctx) error {
	run, err := h.store.Latest(c.UserContext())
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Reading latest run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(run)
}
