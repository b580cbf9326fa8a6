package handlers

import (
	"net/http"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MenuHandler handles menu and menu item HTTP requests
type MenuHandler struct {
	menuService *services.MenuService
	logger      *logrus.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuService *services.MenuService, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		logger:      logger,
	}
}

// AddItemsRequest is the body of POST /api/menu-items
type AddItemsRequest struct {
	MenuID models.OptionalID           `json:"menu_id"`
	Items  []services.NewMenuItemInput `json:"items"`
}

// ListMenus handles GET /api/menus
func (h *MenuHandler) ListMenus(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	menus, err := h.menuService.ListMenus(c.Request.Context(), activeOnly)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, menus)
}

// GetActiveMenu handles GET /api/menus/active
func (h *MenuHandler) GetActiveMenu(c *gin.Context) {
	menu, err := h.menuService.ActiveMenu(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, menu)
}

// CreateMenu handles POST /api/menus
func (h *MenuHandler) CreateMenu(c *gin.Context) {
	var input services.CreateMenuInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	menu, err := h.menuService.CreateMenu(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, menu)
}

// UpdateMenu handles PATCH /api/menus?menuId=
func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	menuID, ok := requiredQueryID(c, "menuId", "id")
	if !ok {
		return
	}

	var input services.UpdateMenuInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body: is_active must be a boolean, week_start and deadline strings")
		return
	}

	menu, err := h.menuService.UpdateMenu(c.Request.Context(), menuID, input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, menu)
}

// DeleteMenu handles DELETE /api/menus?menuId=
func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	menuID, ok := requiredQueryID(c, "menuId", "id")
	if !ok {
		return
	}

	result, err := h.menuService.DeleteMenu(c.Request.Context(), menuID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu deleted",
		"result":  result,
	})
}

// ListItems handles GET /api/menu-items?menuId=
func (h *MenuHandler) ListItems(c *gin.Context) {
	menuID, ok := requiredQueryID(c, "menuId", "menu_id")
	if !ok {
		return
	}

	items, err := h.menuService.ListItems(c.Request.Context(), menuID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// AddItems handles POST /api/menu-items
func (h *MenuHandler) AddItems(c *gin.Context) {
	var req AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	items, err := h.menuService.AddItems(c.Request.Context(), req.MenuID.Value, req.Items)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, items)
}

// DeleteItem handles DELETE /api/menu-items?itemId=
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	itemID, ok := requiredQueryID(c, "itemId", "id")
	if !ok {
		return
	}

	if err := h.menuService.DeleteItem(c.Request.Context(), itemID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Menu item deleted"})
}

// Meals handles GET /api/menu-items/meals?menuId=
func (h *MenuHandler) Meals(c *gin.Context) {
	menuID, ok := requiredQueryID(c, "menuId", "menu_id")
	if !ok {
		return
	}

	days, err := h.menuService.MealsForMenu(c.Request.Context(), menuID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, days)
}
