package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"expensetracker/internal/model"
	"expensetracker/internal/service"
)

// BudgetHandler handles budget endpoints.
type BudgetHandler struct {
	budgets service.BudgetService
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(budgets service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

// BudgetRequest updates the budget settings. The period defaults to monthly.
type BudgetRequest struct {
	MonthlyBudget *decimal.Decimal `json:"monthlyBudget" validate:"required" swaggertype:"number"`
	BudgetPeriod  string           `json:"budgetPeriod" validate:"omitempty,oneof=weekly monthly yearly"`
}

// Get godoc
// @Summary Budget settings
// @Tags budget
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{data=service.BudgetSettings}
// @Router /budget [get]
func (h *BudgetHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	settings, err := h.budgets.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, settings)
}

// Update godoc
// @Summary Update budget settings
// @Tags budget
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "Budget"
// @Success 200 {object} errors.Envelope{data=service.BudgetSettings}
// @Failure 400 {object} errors.Envelope
// @Router /budget [put]
func (h *BudgetHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	settings, err := h.budgets.UpdateSettings(c.Request().Context(), userID, *req.MonthlyBudget, model.BudgetPeriod(req.BudgetPeriod))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, settings)
}

// Status godoc
// @Summary Budget status
// @Description Evaluated over the stored budget period; the period parameter only applies when none is stored.
// @Tags budget
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month or year" default(month)
// @Success 200 {object} errors.Envelope{data=service.BudgetStatus}
// @Router /budget/status [get]
func (h *BudgetHandler) Status(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	status, err := h.budgets.Status(c.Request().Context(), userID, service.ParsePeriod(c.QueryParam("period")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, status)
}
