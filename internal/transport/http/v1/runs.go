package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hqin77/lifepath/internal/domain"
)

// CreateRun creates a new run.
// POST /v1/runs
func (h *Handler) CreateRun(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	res, err := h.service.CreateRun(ctx, ownerID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ListRuns lists the caller's runs.
// GET /v1/runs
func (h *Handler) ListRuns(c echo.Context) error {
	ctx := c.Request().Context()

	limit := intQuery(c, "limit", 50)
	runs, err := h.service.List(ctx, ownerID(c), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": runs})
}

// GetRun gets a run with its timeline.
// GET /v1/runs/:run_id
func (h *Handler) GetRun(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.service.Get(ctx, ownerID(c), c.Param("run_id"), intQuery(c, "node_limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// StepRun advances a manual run by one simulated day.
// POST /v1/runs/:run_id/step
func (h *Handler) StepRun(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.StepRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	node, err := h.service.Step(ctx, ownerID(c), c.Param("run_id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"node": node})
}

// EndRun ends a run and returns the summary. Ending an ended run returns
// the stored summary unchanged.
// POST /v1/runs/:run_id/end
func (h *Handler) EndRun(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.service.End(ctx, ownerID(c), c.Param("run_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"summary": summary})
}

// RenameRun updates a run's title.
// PATCH /v1/runs/:run_id
func (h *Handler) RenameRun(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.RenameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	run, err := h.service.Rename(ctx, ownerID(c), c.Param("run_id"), req.Title)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"run": run})
}

func intQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
