package services

import (
	"context"
	"fmt"
	"math"

	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/pkg/validator"
)

// OverviewService builds the admin dashboard for the active menu
type OverviewService struct {
	users    *database.UserRepository
	menus    *database.MenuRepository
	items    *database.MenuItemRepository
	overview *database.OverviewRepository
}

// NewOverviewService creates a new overview service
func NewOverviewService(db database.Querier) *OverviewService {
	return &OverviewService{
		users:    database.NewUserRepository(db),
		menus:    database.NewMenuRepository(db),
		items:    database.NewMenuItemRepository(db),
		overview: database.NewOverviewRepository(db),
	}
}

// StaffSelections returns every staff member's picks for the active menu.
// With no active menu every staff member is listed with no picks.
func (s *OverviewService) StaffSelections(ctx context.Context) ([]models.StaffSelectionRow, error) {
	menu, err := s.menus.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	var menuID int64
	if menu != nil {
		menuID = menu.ID
	}
	return s.staffSelections(ctx, menuID)
}

// Overview returns the dashboard totals and per-staff progress
func (s *OverviewService) Overview(ctx context.Context) (*models.Overview, error) {
	menu, err := s.menus.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	totalStaff, err := s.users.CountByRole(ctx, models.RoleStaff)
	if err != nil {
		return nil, err
	}

	result := &models.Overview{
		ActiveMenu:            menu,
		TotalStaff:            totalStaff,
		MaxPossibleSelections: totalStaff * len(validator.Weekdays),
	}

	var menuID int64
	if menu != nil {
		menuID = menu.ID
		if result.TotalMenuItems, err = s.items.CountByMenu(ctx, menuID); err != nil {
			return nil, err
		}
		if result.TotalSelections, err = s.overview.CountSelectionsForMenu(ctx, menuID); err != nil {
			return nil, err
		}
	}

	rows, err := s.staffSelections(ctx, menuID)
	if err != nil {
		return nil, err
	}
	result.StaffSelections = rows

	for _, row := range rows {
		if row.Selections.Count() == len(validator.Weekdays) {
			result.CompleteProfiles++
		}
	}
	result.ProgressPercentage = ProgressPercentage(result.TotalSelections, result.MaxPossibleSelections)

	return result, nil
}

func (s *OverviewService) staffSelections(ctx context.Context, menuID int64) ([]models.StaffSelectionRow, error) {
	rows, err := s.overview.StaffSelections(ctx, menuID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if len(rows[i].Selections) == 0 {
			rows[i].Selections = make(models.NullStringArray, len(validator.Weekdays))
		}
		rows[i].Progress = fmt.Sprintf("%d/%d", rows[i].Selections.Count(), len(validator.Weekdays))
	}
	return rows, nil
}

// ProgressPercentage is selections over the maximum possible, rounded to a whole percent
func ProgressPercentage(selections, maxPossible int) int {
	if maxPossible <= 0 {
		return 0
	}
	return int(math.Round(float64(selections) * 100 / float64(maxPossible)))
}
