package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/pkg/validator"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// deadlineLayouts are the accepted deadline formats after RFC3339; the
// browser datetime-local forms carry no zone and are read in server local time
var deadlineLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// CreateMenuInput is the body of a menu creation request
type CreateMenuInput struct {
	WeekStart string `json:"week_start"`
	Deadline  string `json:"deadline"`
	IsActive  *bool  `json:"is_active"`
}

// UpdateMenuInput is the body of a menu update; nil fields are left unchanged
type UpdateMenuInput struct {
	WeekStart *string `json:"week_start"`
	Deadline  *string `json:"deadline"`
	IsActive  *bool   `json:"is_active"`
}

// NewMenuItemInput is one item in an add-items request
type NewMenuItemInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Day         string  `json:"day"`
}

// DeleteMenuResult reports how many rows a menu deletion removed
type DeleteMenuResult struct {
	MenuID            int64 `json:"menu_id"`
	DeletedSelections int64 `json:"deleted_selections"`
	DeletedRatings    int64 `json:"deleted_ratings"`
	DeletedMenuItems  int64 `json:"deleted_menu_items"`
}

// MenuService handles menu and menu item business logic
type MenuService struct {
	db         database.DB
	menus      *database.MenuRepository
	items      *database.MenuItemRepository
	selections *database.SelectionRepository
	ratings    *database.MenuRatingRepository
	logger     *logrus.Logger
}

// NewMenuService creates a new menu service
func NewMenuService(db database.DB, logger *logrus.Logger) *MenuService {
	return &MenuService{
		db:         db,
		menus:      database.NewMenuRepository(db),
		items:      database.NewMenuItemRepository(db),
		selections: database.NewSelectionRepository(db),
		ratings:    database.NewMenuRatingRepository(db),
		logger:     logger,
	}
}

// ListMenus returns menus newest week first
func (s *MenuService) ListMenus(ctx context.Context, activeOnly bool) ([]models.Menu, error) {
	return s.menus.List(ctx, activeOnly)
}

// GetMenu returns a menu or ErrMenuNotFound
func (s *MenuService) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	menu, err := s.menus.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, ErrMenuNotFound
	}
	return menu, nil
}

// CreateMenu publishes a menu. An active menu deactivates every other menu.
func (s *MenuService) CreateMenu(ctx context.Context, input CreateMenuInput) (*models.Menu, error) {
	if strings.TrimSpace(input.WeekStart) == "" || strings.TrimSpace(input.Deadline) == "" {
		return nil, &ValidationError{Message: "week_start and deadline are required"}
	}

	weekStart, err := models.ParseDate(input.WeekStart)
	if err != nil {
		return nil, validationErr("week_start", "%s", err.Error())
	}
	deadline, err := parseDeadline(input.Deadline)
	if err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	var menu *models.Menu
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		menus := s.menus.WithTx(tx)

		created, err := menus.Create(ctx, weekStart, deadline, isActive)
		if err != nil {
			return err
		}
		if isActive {
			if err := menus.DeactivateOthers(ctx, created.ID); err != nil {
				return err
			}
		}
		menu = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"menu_id":    menu.ID,
		"week_start": menu.WeekStart.String(),
		"is_active":  menu.IsActive,
	}).Info("Menu created")

	return menu, nil
}

// UpdateMenu changes a menu's dates or active flag. Moving week_start
// shifts existing selections by the same number of days.
func (s *MenuService) UpdateMenu(ctx context.Context, id int64, input UpdateMenuInput) (*models.Menu, error) {
	if input.WeekStart == nil && input.Deadline == nil && input.IsActive == nil {
		return nil, &ValidationError{Message: "nothing to update"}
	}

	upd := database.MenuUpdate{IsActive: input.IsActive}
	if input.WeekStart != nil {
		weekStart, err := models.ParseDate(*input.WeekStart)
		if err != nil {
			return nil, validationErr("week_start", "%s", err.Error())
		}
		upd.WeekStart = &weekStart
	}
	if input.Deadline != nil {
		deadline, err := parseDeadline(*input.Deadline)
		if err != nil {
			return nil, err
		}
		upd.Deadline = &deadline
	}

	var menu *models.Menu
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		menus := s.menus.WithTx(tx)

		current, err := menus.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrMenuNotFound
		}

		updated, err := menus.Update(ctx, id, upd)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrMenuNotFound
		}

		if upd.WeekStart != nil {
			days := daysBetween(current.WeekStart, *upd.WeekStart)
			if days != 0 {
				if _, err := s.selections.WithTx(tx).ShiftDatesForMenu(ctx, id, days); err != nil {
					return err
				}
			}
		}

		if upd.IsActive != nil && *upd.IsActive {
			if err := menus.DeactivateOthers(ctx, id); err != nil {
				return err
			}
		}

		menu = updated
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, validationErr("week_start", "moving the week would overlap selections of another menu")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"menu_id":   menu.ID,
		"is_active": menu.IsActive,
	}).Info("Menu updated")

	return menu, nil
}

// DeleteMenu removes a menu with its selections, ratings and items in one transaction
func (s *MenuService) DeleteMenu(ctx context.Context, id int64) (*DeleteMenuResult, error) {
	result := &DeleteMenuResult{MenuID: id}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		menus := s.menus.WithTx(tx)

		menu, err := menus.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if menu == nil {
			return ErrMenuNotFound
		}

		if result.DeletedSelections, err = s.selections.WithTx(tx).DeleteByMenu(ctx, id); err != nil {
			return err
		}
		if result.DeletedRatings, err = s.ratings.WithTx(tx).DeleteByMenu(ctx, id); err != nil {
			return err
		}
		if result.DeletedMenuItems, err = s.items.WithTx(tx).DeleteByMenu(ctx, id); err != nil {
			return err
		}

		deleted, err := menus.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrMenuNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"menu_id":            id,
		"deleted_selections": result.DeletedSelections,
		"deleted_ratings":    result.DeletedRatings,
		"deleted_menu_items": result.DeletedMenuItems,
	}).Info("Menu deleted")

	return result, nil
}

// ListItems returns a menu's items ordered Monday to Friday, then by id
func (s *MenuService) ListItems(ctx context.Context, menuID int64) ([]models.MenuItem, error) {
	if _, err := s.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}
	return s.items.ListByMenu(ctx, menuID)
}

// AddItems inserts items into a menu in request order. Within a day, the
// first item is a main course, the next its dessert, and so on.
func (s *MenuService) AddItems(ctx context.Context, menuID int64, inputs []NewMenuItemInput) ([]models.MenuItem, error) {
	if menuID <= 0 {
		return nil, validationErr("menu_id", "is required")
	}
	if len(inputs) == 0 {
		return nil, validationErr("items", "must be a non-empty array")
	}

	type newItem struct {
		name        string
		description models.NullString
		day         string
	}
	prepared := make([]newItem, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, validationErr("items", "item %d: name is required", i)
		}
		day, _, err := validator.ParseWeekday(in.Day)
		if err != nil {
			return nil, validationErr("items", "item %d: %s", i, err.Error())
		}
		var description models.NullString
		if in.Description != nil {
			description = models.NewNullString(strings.TrimSpace(*in.Description))
		}
		prepared = append(prepared, newItem{name: name, description: description, day: day})
	}

	created := make([]models.MenuItem, 0, len(prepared))
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		menu, err := s.menus.WithTx(tx).GetByID(ctx, menuID)
		if err != nil {
			return err
		}
		if menu == nil {
			return ErrMenuNotFound
		}

		items := s.items.WithTx(tx)
		for _, p := range prepared {
			item, err := items.Create(ctx, menuID, p.name, p.description, p.day)
			if err != nil {
				return err
			}
			created = append(created, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"menu_id": menuID,
		"count":   len(created),
	}).Info("Menu items added")

	return created, nil
}

// DeleteItem removes a menu item together with the selections that point at it
func (s *MenuService) DeleteItem(ctx context.Context, itemID int64) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		items := s.items.WithTx(tx)

		item, err := items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrMenuItemNotFound
		}

		if _, err := s.selections.WithTx(tx).DeleteByMenuItem(ctx, itemID); err != nil {
			return err
		}
		if _, err := items.Delete(ctx, itemID); err != nil {
			return err
		}
		return nil
	})
}

// MealsForMenu returns the menu's items paired into meals per weekday
func (s *MenuService) MealsForMenu(ctx context.Context, menuID int64) ([]models.DayMeals, error) {
	menu, err := s.GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	return PairMeals(menu.WeekStart, items), nil
}

// ActiveMenu returns the active menu with its items and meal pairs
func (s *MenuService) ActiveMenu(ctx context.Context) (*models.ActiveMenu, error) {
	menu, err := s.menus.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, ErrNoActiveMenu
	}

	items, err := s.items.ListByMenu(ctx, menu.ID)
	if err != nil {
		return nil, err
	}

	return &models.ActiveMenu{
		Menu:  menu,
		Items: items,
		Days:  PairMeals(menu.WeekStart, items),
	}, nil
}

// PairMeals groups items by weekday and pairs them in id order: the item at
// an even position is a main course and the one after it is its dessert.
// Every weekday is present, with no meals when it has no items.
func PairMeals(weekStart models.Date, items []models.MenuItem) []models.DayMeals {
	byDay := make(map[string][]models.MenuItem, len(validator.Weekdays))
	for _, item := range items {
		byDay[item.Day] = append(byDay[item.Day], item)
	}

	days := make([]models.DayMeals, 0, len(validator.Weekdays))
	for offset, day := range validator.Weekdays {
		dayItems := byDay[day]
		sort.SliceStable(dayItems, func(i, j int) bool { return dayItems[i].ID < dayItems[j].ID })

		meals := []models.MealPair{}
		for i := 0; i < len(dayItems); i += 2 {
			pair := models.MealPair{Main: &dayItems[i]}
			if i+1 < len(dayItems) {
				pair.Dessert = &dayItems[i+1]
			}
			meals = append(meals, pair)
		}

		days = append(days, models.DayMeals{
			Day:   day,
			Date:  weekStart.AddDays(offset),
			Meals: meals,
		})
	}
	return days
}

func parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationErr("deadline", "invalid deadline %q, expected RFC3339 or YYYY-MM-DDTHH:MM", raw)
}

func daysBetween(from, to models.Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}
