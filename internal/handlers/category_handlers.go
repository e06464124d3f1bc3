package handlers

import (
	"net/http"
	"strconv"

	"gudangmitra/internal/common"
	"gudangmitra/internal/models"
	"gudangmitra/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles HTTP requests for item categories
type CategoryHandlers struct {
	categoryService services.CategoryService
}

func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	created, err := h.categoryService.CreateCategory(c.Request().Context(), category)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondCreated(c, created)
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid category ID")
	}

	category, err := h.categoryService.GetCategory(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, category)
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	categories, err := h.categoryService.ListCategories(c.Request().Context(), limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, categories)
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid category ID")
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	category := &models.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	updated, err := h.categoryService.UpdateCategory(c.Request().Context(), category)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, updated)
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid category ID")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, map[string]string{"message": "category deleted"})
}
