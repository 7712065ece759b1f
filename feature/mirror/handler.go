package mirror

import (
	"calendar-mirror/core/logger"
	"calendar-mirror/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation passes.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the protected routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/sync", h.HandleSync)
}

// RegisterPublicRoutes registers the unauthenticated routes.
func (h *Handler) RegisterPublicRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)
}

// SyncResponse summarizes a pass.
type SyncResponse struct {
	RunID   string            `json:"run_id"`
	DryRun  bool              `json:"dry_run"`
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Deleted int               `json:"deleted"`
	Phase   string            `json:"phase,omitempty"`
	Error   string            `json:"error,omitempty"`
	Report  *reconcile.Report `json:"report,omitempty"`
}

// HealthResponse describes the service state.
type HealthResponse struct {
	Status  string        `json:"status"`
	Running bool          `json:"running"`
	LastRun *SyncResponse `json:"last_run,omitempty"`
}

// HandleSync runs a pass and returns its report.
// @Summary Run a synchronization pass
// @Description Mirrors the source calendar into the mirror calendar. Joins the running pass if there is one.
// @Tags sync
// @Accept json
// @Produce json
// @Param overrides body Overrides false "Per-pass overrides"
// @Success 200 {object} SyncResponse "Pass succeeded"
// @Failure 400 {object} map[string]string "Invalid body"
// @Failure 500 {object} SyncResponse "Pass failed"
// @Security ApiKeyAuth
// @Router /sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var o Overrides
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&o); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body: " + err.Error()})
		}
	}

	report, err := h.service.Sync(c.UserContext(), o)
	resp := summarize(report, true)
	if err != nil {
		l.Error("Triggered pass failed", zap.Error(err))
		resp.Error = err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
	return c.JSON(resp)
}

// HandleHealth reports liveness and the latest pass.
// @Summary Service health
// @Description Returns whether a pass is running and the outcome of the latest one.
// @Tags sync
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ok", Running: h.service.Running()}
	if last := h.service.Last(); last != nil {
		resp.LastRun = summarize(last, false)
	}
	return c.JSON(resp)
}

func summarize(report *reconcile.Report, full bool) *SyncResponse {
	if report == nil {
		return &SyncResponse{}
	}
	created, updated, deleted := report.Counts()
	resp := &SyncResponse{
		RunID:   report.RunID,
		DryRun:  report.DryRun,
		Created: created,
		Updated: updated,
		Deleted: deleted,
		Phase:   string(report.Phase),
		Error:   report.Error,
	}
	if full {
		resp.Report = report
	}
	return resp
}
