package handlers

import (
	"net/http"
	"strconv"

	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles admin dashboard and staff management HTTP requests
type AdminHandler struct {
	overviewService *services.OverviewService
	staffService    *services.StaffService
	logger          *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	overviewService *services.OverviewService,
	staffService *services.StaffService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		overviewService: overviewService,
		staffService:    staffService,
		logger:          logger,
	}
}

// AddStaffRequest is the body of POST /api/admin/staff-directory
type AddStaffRequest struct {
	FullName string `json:"full_name"`
}

// Overview handles GET /api/admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.overviewService.Overview(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// StaffSelections handles GET /api/admin/selections
func (h *AdminHandler) StaffSelections(c *gin.Context) {
	rows, err := h.overviewService.StaffSelections(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ListStaffDirectory handles GET /api/admin/staff-directory
func (h *AdminHandler) ListStaffDirectory(c *gin.Context) {
	entries, err := h.staffService.ListDirectory(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// AddStaffDirectoryEntry handles POST /api/admin/staff-directory
func (h *AdminHandler) AddStaffDirectoryEntry(c *gin.Context) {
	var req AddStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.staffService.AddToDirectory(c.Request.Context(), req.FullName)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// DeleteStaffDirectoryEntry handles DELETE /api/admin/staff-directory/:id
func (h *AdminHandler) DeleteStaffDirectoryEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "id must be a positive integer")
		return
	}

	if err := h.staffService.RemoveFromDirectory(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Staff directory entry removed"})
}

// ListStaffUsers handles GET /api/users/staff
func (h *AdminHandler) ListStaffUsers(c *gin.Context) {
	users, err := h.staffService.ListStaffUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ListEligibleStaff handles GET /api/users/eligible-staff
func (h *AdminHandler) ListEligibleStaff(c *gin.Context) {
	staff, err := h.staffService.ListEligible(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, staff)
}
