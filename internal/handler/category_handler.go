package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"expensetracker/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categories service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryRequest is the body of create and rename.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope{data=[]model.Category}
// @Failure 401 {object} errors.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	categories, err := h.categories.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, categories)
}

// Create godoc
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} errors.Envelope{data=model.Category}
// @Failure 400 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	category, err := h.categories.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, category)
}

// Rename godoc
// @Summary Rename category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} errors.Envelope{data=model.Category}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /categories/{id} [put]
func (h *CategoryHandler) Rename(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	category, err := h.categories.Rename(c.Request().Context(), userID, id, req.Name)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, category)
}

// Delete godoc
// @Summary Delete category
// @Description Expenses filed under the category are kept.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.categories.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]string{"message": "category deleted"})
}
