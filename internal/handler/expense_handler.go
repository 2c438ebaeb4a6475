package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"expensetracker/internal/service"
)

// ExpenseHandler handles expense endpoints.
type ExpenseHandler struct {
	expenses  service.ExpenseService
	analytics service.AnalyticsService
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(expenses service.ExpenseService, analytics service.AnalyticsService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, analytics: analytics}
}

// CreateExpenseRequest represents a new expense. Amount accepts a JSON number or string.
type CreateExpenseRequest struct {
	Title      string           `json:"title" validate:"required,max=255"`
	Amount     *decimal.Decimal `json:"amount" validate:"required" swaggertype:"number"`
	Note       string           `json:"note" validate:"max=2000"`
	CategoryID string           `json:"categoryId" validate:"required,uuid"`
	CreatedAt  *time.Time       `json:"createdAt"`
}

// UpdateExpenseRequest carries the fields an expense update may change.
type UpdateExpenseRequest struct {
	Title  string           `json:"title" validate:"required,max=255"`
	Amount *decimal.Decimal `json:"amount" validate:"required" swaggertype:"number"`
	Note   string           `json:"note" validate:"max=2000"`
}

// List godoc
// @Summary List expenses
// @Description Newest first.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param categoryId query string false "Category ID"
// @Param from query string false "Inclusive lower bound (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Inclusive upper bound (RFC 3339, or YYYY-MM-DD for the whole day)"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} errors.Envelope{data=service.ExpensePage}
// @Failure 400 {object} errors.Envelope
// @Router /expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var q service.ExpenseListQuery
	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest("invalid categoryId", "INVALID_UUID")
		}
		q.CategoryID = &id
	}
	if q.From, err = queryTime(c, "from", false); err != nil {
		return err
	}
	if q.To, err = queryTime(c, "to", true); err != nil {
		return err
	}
	if q.Limit, err = queryInt(c, "limit", 0); err != nil {
		return err
	}
	if q.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	page, err := h.expenses.List(c.Request().Context(), userID, q)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}

// Get godoc
// @Summary Get expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} errors.Envelope{data=model.Expense}
// @Failure 404 {object} errors.Envelope
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	expense, err := h.expenses.Get(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, expense)
}

// Create godoc
// @Summary Record expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "Expense"
// @Success 201 {object} errors.Envelope{data=model.Expense}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	in := service.CreateExpenseInput{
		Title:      req.Title,
		Amount:     *req.Amount,
		Note:       req.Note,
		CategoryID: uuid.MustParse(req.CategoryID),
	}
	if req.CreatedAt != nil {
		in.CreatedAt = *req.CreatedAt
	}

	expense, err := h.expenses.Create(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, expense)
}

// Update godoc
// @Summary Update expense
// @Description Only title, amount and note can change.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body UpdateExpenseRequest true "Expense"
// @Success 200 {object} errors.Envelope{data=model.Expense}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	expense, err := h.expenses.Update(c.Request().Context(), userID, id, service.UpdateExpenseInput{
		Title:  req.Title,
		Amount: *req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, expense)
}

// Delete godoc
// @Summary Delete expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.expenses.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]string{"message": "expense deleted"})
}

// Total godoc
// @Summary All-time total
// @Description Unrounded sum of every expense of the user.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{data=number}
// @Router /expenses/total [get]
func (h *ExpenseHandler) Total(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	total, err := h.analytics.TotalExpenses(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, total)
}

// Daily godoc
// @Summary Daily spend of the current month
// @Description One entry per day of the month, zero when nothing was spent.
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{data=[]service.DailyAmount}
// @Router /expenses/daily [get]
func (h *ExpenseHandler) Daily(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	days, err := h.analytics.DailyExpenses(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, days)
}
