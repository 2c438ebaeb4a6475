package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"expensetracker/internal/model"
	"expensetracker/internal/service"
)

// UserHandler serves the profile of the authenticated user.
type UserHandler struct {
	users   service.UserService
	budgets service.BudgetService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(users service.UserService, budgets service.BudgetService) *UserHandler {
	return &UserHandler{users: users, budgets: budgets}
}

// ProfileResponse is the authenticated user with their budget settings.
type ProfileResponse struct {
	User   *model.User             `json:"user"`
	Budget *service.BudgetSettings `json:"budget"`
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{data=ProfileResponse}
// @Failure 401 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	budget, err := h.budgets.GetSettings(ctx, userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, ProfileResponse{User: user, Budget: budget})
}
