package services

import (
	"context"
	"sort"
	"time"

	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/pkg/validator"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Actor is the authenticated user making a request
type Actor struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// SubmitSelectionsInput is the body of a selection submission. Selections
// maps a weekday to a menu item id; a null id leaves that day untouched.
type SubmitSelectionsInput struct {
	Selections map[string]models.OptionalID `json:"selections"`
	UserID     models.OptionalID            `json:"userId"`
	MenuID     models.OptionalID            `json:"menuId"`
}

type dayChoice struct {
	day    string
	offset int
	itemID int64
}

// SelectionService handles meal selection business logic
type SelectionService struct {
	db         database.DB
	users      *database.UserRepository
	menus      *database.MenuRepository
	items      *database.MenuItemRepository
	selections *database.SelectionRepository
	logger     *logrus.Logger
	now        func() time.Time
}

// NewSelectionService creates a new selection service
func NewSelectionService(db database.DB, logger *logrus.Logger) *SelectionService {
	return &SelectionService{
		db:         db,
		users:      database.NewUserRepository(db),
		menus:      database.NewMenuRepository(db),
		items:      database.NewMenuItemRepository(db),
		selections: database.NewSelectionRepository(db),
		logger:     logger,
		now:        time.Now,
	}
}

// SelectionDate is the calendar date a weekday falls on in the week starting at weekStart
func SelectionDate(weekStart models.Date, dayOffset int) models.Date {
	return weekStart.AddDays(dayOffset)
}

// Submit stores the actor's (or, for an admin, any user's) choices for a
// menu. For each chosen day the row for (user, date) is updated when it
// exists and inserted otherwise, all in one transaction.
func (s *SelectionService) Submit(ctx context.Context, actor Actor, input SubmitSelectionsInput) ([]models.Selection, error) {
	if !input.MenuID.Set {
		return nil, validationErr("menuId", "is required")
	}
	if len(input.Selections) == 0 {
		return nil, validationErr("selections", "must contain at least one day")
	}

	userID, err := s.resolveTarget(ctx, actor, input.UserID)
	if err != nil {
		return nil, err
	}

	choices, err := parseChoices(input.Selections)
	if err != nil {
		return nil, err
	}

	affected := make([]models.Selection, 0, len(choices))
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		menu, err := s.menus.WithTx(tx).GetByID(ctx, input.MenuID.Value)
		if err != nil {
			return err
		}
		if menu == nil {
			return ErrMenuNotFound
		}
		if !actor.IsAdmin() {
			if !menu.IsActive {
				return ErrMenuInactive
			}
			if menu.DeadlinePassed(s.now()) {
				return ErrDeadlinePassed
			}
		}

		items := s.items.WithTx(tx)
		selections := s.selections.WithTx(tx)

		for _, choice := range choices {
			item, err := items.GetByID(ctx, choice.itemID)
			if err != nil {
				return err
			}
			if item == nil || item.MenuID != menu.ID {
				return validationErr("selections", "item %d is not on menu %d", choice.itemID, menu.ID)
			}
			if item.Day != choice.day {
				return validationErr("selections", "item %d is served on %s, not %s", item.ID, item.Day, choice.day)
			}

			date := SelectionDate(menu.WeekStart, choice.offset)
			existing, err := selections.FindByUserAndDate(ctx, userID, date)
			if err != nil {
				return err
			}

			var saved *models.Selection
			if existing != nil {
				saved, err = selections.UpdateItem(ctx, existing.ID, item.ID)
			} else {
				saved, err = selections.Insert(ctx, userID, item.ID, date)
			}
			if err != nil {
				return err
			}
			affected = append(affected, *saved)
		}
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSelectionConflict
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"actor_id": actor.UserID,
		"menu_id":  input.MenuID.Value,
		"days":     len(affected),
	}).Info("Selections saved")

	return affected, nil
}

// List returns the user's selections for a menu joined with the chosen items
func (s *SelectionService) List(ctx context.Context, actor Actor, requestedUser models.OptionalID, menuID int64) ([]models.SelectionDetail, error) {
	userID, err := s.resolveTarget(ctx, actor, requestedUser)
	if err != nil {
		return nil, err
	}

	menu, err := s.menus.GetByID(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, ErrMenuNotFound
	}

	return s.selections.ListForUserAndMenu(ctx, userID, menuID)
}

// resolveTarget picks whose selections a request acts on. Staff may only
// act on themselves; admins may name any existing user.
func (s *SelectionService) resolveTarget(ctx context.Context, actor Actor, requested models.OptionalID) (int64, error) {
	if !requested.Set || requested.Value == actor.UserID {
		return actor.UserID, nil
	}
	if !actor.IsAdmin() {
		return 0, ErrForbidden
	}

	user, err := s.users.GetByID(ctx, requested.Value)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return user.ID, nil
}

// parseChoices validates the day keys and drops null entries, returning
// choices ordered Monday to Friday
func parseChoices(raw map[string]models.OptionalID) ([]dayChoice, error) {
	seen := make(map[string]bool, len(raw))
	choices := make([]dayChoice, 0, len(raw))

	for key, id := range raw {
		day, offset, err := validator.ParseWeekday(key)
		if err != nil {
			return nil, validationErr("selections", "%s", err.Error())
		}
		if seen[day] {
			return nil, validationErr("selections", "%s is listed more than once", day)
		}
		seen[day] = true

		if !id.Set {
			continue
		}
		choices = append(choices, dayChoice{day: day, offset: offset, itemID: id.Value})
	}

	sort.Slice(choices, func(i, j int) bool { return choices[i].offset < choices[j].offset })
	return choices, nil
}
