// Package v1 provides the caller-facing HTTP handlers for the run API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hqin77/lifepath/internal/domain"
	"github.com/hqin77/lifepath/internal/service"
)

// defaultOwner is used when the caller sends no X-Owner-ID header.
const defaultOwner = "default_user"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/runs", h.CreateRun)
	e.GET("/v1/runs", h.ListRuns)
	e.GET("/v1/runs/:run_id", h.GetRun)
	e.POST("/v1/runs/:run_id/step", h.StepRun)
	e.POST("/v1/runs/:run_id/end", h.EndRun)
	e.PATCH("/v1/runs/:run_id", h.RenameRun)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// ownerID resolves the calling owner from the X-Owner-ID header.
func ownerID(c echo.Context) string {
	if owner := c.Request().Header.Get("X-Owner-ID"); owner != "" {
		return owner
	}
	return defaultOwner
}

// fail maps a service error to its HTTP status and a stable error body.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvalidState:
		status = http.StatusConflict
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
