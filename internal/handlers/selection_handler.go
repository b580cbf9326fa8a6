package handlers

import (
	"net/http"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SelectionHandler handles meal selection HTTP requests
type SelectionHandler struct {
	selectionService *services.SelectionService
	logger           *logrus.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(selectionService *services.SelectionService, logger *logrus.Logger) *SelectionHandler {
	return &SelectionHandler{
		selectionService: selectionService,
		logger:           logger,
	}
}

// SubmitSelectionsResponse lists the rows a submission inserted or updated
type SubmitSelectionsResponse struct {
	Message    string             `json:"message"`
	Selections []models.Selection `json:"selections"`
}

// Submit handles POST /api/selections
func (h *SelectionHandler) Submit(c *gin.Context) {
	var input services.SubmitSelectionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	saved, err := h.selectionService.Submit(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, SubmitSelectionsResponse{
		Message:    "Selections saved",
		Selections: saved,
	})
}

// List handles GET /api/selections?userId=&menuId=
func (h *SelectionHandler) List(c *gin.Context) {
	userID, err := queryID(c, "userId", "user_id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	menuID, ok := requiredQueryID(c, "menuId", "menu_id")
	if !ok {
		return
	}

	selections, err := h.selectionService.List(c.Request.Context(), actorFrom(c), userID, menuID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, selections)
}
