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

// ItemHandlers handles HTTP requests for inventory items
type ItemHandlers struct {
	inventoryService services.InventoryService
}

func NewItemHandlers(inventoryService services.InventoryService) *ItemHandlers {
	return &ItemHandlers{inventoryService: inventoryService}
}

// CreateItem handles POST /items
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	var req struct {
		Name              string `json:"name"`
		Description       string `json:"description"`
		Category          string `json:"category"`
		TotalStock        int    `json:"totalStock"`
		AvailableStock    int    `json:"availableStock"`
		ReservedStock     int    `json:"reservedStock"`
		LowStockThreshold int    `json:"lowStockThreshold"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	item := &models.Item{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		TotalStock:        req.TotalStock,
		AvailableStock:    req.AvailableStock,
		ReservedStock:     req.ReservedStock,
		LowStockThreshold: req.LowStockThreshold,
	}
	created, err := h.inventoryService.AddItem(c.Request().Context(), item)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondCreated(c, created)
}

// GetItem handles GET /items/:id
func (h *ItemHandlers) GetItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid item ID")
	}

	item, err := h.inventoryService.GetItem(c.Request().Context(), id)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, item)
}

// ListItems handles GET /items with optional search filters
func (h *ItemHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	query := c.QueryParam("q")
	categoryParam := c.QueryParam("category")
	lowStock := c.QueryParam("lowStock") == "true"

	if query == "" && categoryParam == "" && !lowStock && c.QueryParam("sortBy") == "" {
		items, err := h.inventoryService.ListItems(ctx, limit, offset)
		if err != nil {
			return common.RespondError(c, err)
		}
		return common.RespondOK(c, items)
	}

	filter := &models.ItemSearchFilter{
		Query:     query,
		LowStock:  lowStock,
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Limit:     limit,
		Offset:    offset,
	}
	if categoryParam != "" {
		filter.Category = &categoryParam
	}

	items, err := h.inventoryService.SearchItems(ctx, filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, items)
}

// UpdateItem handles PUT /items/:id
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid item ID")
	}

	var req struct {
		Name              string `json:"name"`
		Description       string `json:"description"`
		Category          string `json:"category"`
		TotalStock        int    `json:"totalStock"`
		LowStockThreshold int    `json:"lowStockThreshold"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	item := &models.Item{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		TotalStock:        req.TotalStock,
		LowStockThreshold: req.LowStockThreshold,
	}
	updated, err := h.inventoryService.UpdateItem(c.Request().Context(), item)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, updated)
}

// AdjustStock handles POST /items/:id/adjust with signed deltas
func (h *ItemHandlers) AdjustStock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid item ID")
	}

	var req struct {
		AvailableDelta int `json:"availableDelta"`
		ReservedDelta  int `json:"reservedDelta"`
	}
	if err := c.Bind(&req); err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid request format")
	}

	item, err := h.inventoryService.AdjustStock(c.Request().Context(), id, req.AvailableDelta, req.ReservedDelta)
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, item)
}

// DeleteItem handles DELETE /items/:id
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.RespondFail(c, http.StatusBadRequest, "invalid item ID")
	}

	if err := h.inventoryService.DeleteItem(c.Request().Context(), id); err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, map[string]string{"message": "item deleted"})
}

// ListLowStock handles GET /items/low-stock
func (h *ItemHandlers) ListLowStock(c echo.Context) error {
	items, err := h.inventoryService.GetLowStockItems(c.Request().Context())
	if err != nil {
		return common.RespondError(c, err)
	}
	return common.RespondOK(c, items)
}
