package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"expensetracker/internal/service"
)

// AnalyticsHandler serves the aggregate views.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analytics service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary godoc
// @Summary Spend summary of a window
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Success 200 {object} errors.Envelope{data=service.SummaryStats}
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	stats, err := h.analytics.Summary(c.Request().Context(), userID, service.ParsePeriod(c.QueryParam("period")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats)
}

// TopCategories godoc
// @Summary Categories with the highest spend
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Param limit query int false "Number of categories" default(5)
// @Success 200 {object} errors.Envelope{data=[]service.TopCategory}
// @Failure 400 {object} errors.Envelope
// @Router /analytics/top-categories [get]
func (h *AnalyticsHandler) TopCategories(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", service.DefaultTopCategoriesLimit)
	if err != nil {
		return err
	}
	top, err := h.analytics.TopCategories(c.Request().Context(), userID, service.ParsePeriod(c.QueryParam("period")), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, top)
}

// Distribution godoc
// @Summary Spend per category
// @Description Every category of the user, zero when nothing was spent in the window.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Success 200 {object} errors.Envelope{data=[]service.DistributionEntry}
// @Router /analytics/expense-distribution [get]
func (h *AnalyticsHandler) Distribution(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	entries, err := h.analytics.Distribution(c.Request().Context(), userID, service.ParsePeriod(c.QueryParam("period")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, entries)
}

// MonthlyTrend godoc
// @Summary Spend per month
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param months query int false "Number of months including the current one" default(6)
// @Success 200 {object} errors.Envelope{data=[]service.TrendPoint}
// @Failure 400 {object} errors.Envelope
// @Router /analytics/monthly-trend [get]
func (h *AnalyticsHandler) MonthlyTrend(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	months, err := queryInt(c, "months", service.DefaultTrendMonths)
	if err != nil {
		return err
	}
	points, err := h.analytics.MonthlyTrend(c.Request().Context(), userID, months)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, points)
}
