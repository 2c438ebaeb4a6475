package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/service"
)

const (
	defaultSeedCount = 25
	maxSeedCount     = 500
	seedHistory      = 90 * 24 * time.Hour
)

// DemoCategories are created by the seed endpoint when missing.
var DemoCategories = []string{"Food", "Transport", "Housing", "Entertainment", "Health"}

// SeedHandler fills the current user's account with demo data.
type SeedHandler struct {
	categories service.CategoryService
	expenses   service.ExpenseService
	faker      *gofakeit.Faker
}

// NewSeedHandler creates a new seed handler. A zero seed picks a random one.
func NewSeedHandler(categories service.CategoryService, expenses service.ExpenseService, seed int64) *SeedHandler {
	return &SeedHandler{categories: categories, expenses: expenses, faker: gofakeit.New(seed)}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message    string `json:"message"`
	Categories int    `json:"categories"`
	Expenses   int    `json:"expenses"`
}

// SeedExpenses godoc
// @Summary Seed demo expenses
// @Description Creates the demo categories when missing and records random expenses over the last 90 days.
// @Tags seed
// @Produce json
// @Security BearerAuth
// @Param count query int false "Number of expenses" default(25)
// @Success 201 {object} errors.Envelope{data=SeedResponse}
// @Failure 400 {object} errors.Envelope
// @Router /seed/expenses [post]
func (h *SeedHandler) SeedExpenses(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	count, err := queryInt(c, "count", defaultSeedCount)
	if err != nil {
		return err
	}
	if count < 1 || count > maxSeedCount {
		return badRequest("count must be between 1 and 500", "INVALID_QUERY")
	}
	ctx := c.Request().Context()

	created := 0
	for _, name := range DemoCategories {
		_, err := h.categories.Create(ctx, userID, name)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrCategoryExists):
		default:
			return err
		}
	}

	categories, err := h.categories.List(ctx, userID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(categories))
	for _, category := range categories {
		ids = append(ids, category.ID)
	}

	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		_, err := h.expenses.Create(ctx, userID, service.CreateExpenseInput{
			Title:      h.faker.ProductName(),
			Amount:     decimal.NewFromFloat(h.faker.Price(1, 250)).Round(2),
			Note:       h.faker.Sentence(6),
			CategoryID: ids[h.faker.IntRange(0, len(ids)-1)],
			CreatedAt:  h.faker.DateRange(now.Add(-seedHistory), now),
		})
		if err != nil {
			return err
		}
	}

	return respond(c, http.StatusCreated, SeedResponse{
		Message:    "demo data seeded",
		Categories: created,
		Expenses:   count,
	})
}
