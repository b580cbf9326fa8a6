package services

import (
	"context"
	"strings"

	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// RateMenuInput is the body of a rating submission
type RateMenuInput struct {
	MenuID  models.OptionalID `json:"menu_id"`
	Rating  int               `json:"rating"`
	Comment *string           `json:"comment"`
}

// RatingService handles menu feedback
type RatingService struct {
	menus   *database.MenuRepository
	ratings *database.MenuRatingRepository
	logger  *logrus.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(menus *database.MenuRepository, ratings *database.MenuRatingRepository, logger *logrus.Logger) *RatingService {
	return &RatingService{
		menus:   menus,
		ratings: ratings,
		logger:  logger,
	}
}

// Rate stores the actor's rating of a menu, replacing an earlier rating
func (s *RatingService) Rate(ctx context.Context, actor Actor, input RateMenuInput) (*models.MenuRating, error) {
	if !input.MenuID.Set {
		return nil, validationErr("menu_id", "is required")
	}
	if input.Rating < MinRating || input.Rating > MaxRating {
		return nil, validationErr("rating", "must be between %d and %d", MinRating, MaxRating)
	}

	menu, err := s.menus.GetByID(ctx, input.MenuID.Value)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, ErrMenuNotFound
	}

	var comment models.NullString
	if input.Comment != nil {
		comment = models.NewNullString(strings.TrimSpace(*input.Comment))
	}

	rating, err := s.ratings.Upsert(ctx, menu.ID, actor.UserID, input.Rating, comment)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"menu_id": menu.ID,
		"user_id": actor.UserID,
		"rating":  rating.Rating,
	}).Info("Menu rated")

	return rating, nil
}

// ListRatings returns every rating with rater and menu week, newest first
func (s *RatingService) ListRatings(ctx context.Context) ([]models.MenuRatingView, error) {
	return s.ratings.ListWithDetails(ctx)
}
