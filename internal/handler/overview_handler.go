package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"expensetracker/internal/service"
)

// OverviewHandler serves the dashboard payload.
type OverviewHandler struct {
	overview service.OverviewService
}

// NewOverviewHandler creates a new overview handler.
func NewOverviewHandler(overview service.OverviewService) *OverviewHandler {
	return &OverviewHandler{overview: overview}
}

// Get godoc
// @Summary Dashboard overview
// @Description Summary, top categories, distribution, trend, recent expenses and budget status in one call.
// @Description With partial=true failed sections are reported in errors instead of failing the request.
// @Tags overview
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Param partial query bool false "Return the sections that succeeded" default(false)
// @Success 200 {object} errors.Envelope{data=service.Overview}
// @Failure 400 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /overview [get]
func (h *OverviewHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	partial := false
	if raw := c.QueryParam("partial"); raw != "" {
		if partial, err = strconv.ParseBool(raw); err != nil {
			return badRequest("invalid partial: must be a boolean", "INVALID_QUERY")
		}
	}

	overview, err := h.overview.Overview(c.Request().Context(), userID, service.ParsePeriod(c.QueryParam("period")), partial)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, overview)
}
