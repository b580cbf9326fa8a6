package handlers

import (
	"net/http"

	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RatingHandler handles menu feedback HTTP requests
type RatingHandler struct {
	ratingService *services.RatingService
	logger        *logrus.Logger
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingService *services.RatingService, logger *logrus.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		logger:        logger,
	}
}

// Rate handles POST /api/menu-ratings
func (h *RatingHandler) Rate(c *gin.Context) {
	var input services.RateMenuInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	rating, err := h.ratingService.Rate(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// List handles GET /api/admin/menu-ratings
func (h *RatingHandler) List(c *gin.Context) {
	ratings, err := h.ratingService.ListRatings(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ratings)
}
