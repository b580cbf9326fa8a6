package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMenuTest(t *testing.T) (*MenuService, sqlmock.Sqlmock) {
	db, mock := setupServiceDB(t)
	return NewMenuService(db, testLogger()), mock
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestDeleteMenu_RemovesDependentsInOrder(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	expectMenu(mock, 1, testNow, true)
	mock.ExpectExec(`DELETE FROM selections WHERE menu_item_id IN \(SELECT id FROM menu_items WHERE menu_id = \$1\)`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(`DELETE FROM menu_ratings WHERE menu_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM menu_items WHERE menu_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectExec(`DELETE FROM menus WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := service.DeleteMenu(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &DeleteMenuResult{
		MenuID:            1,
		DeletedSelections: 12,
		DeletedRatings:    3,
		DeletedMenuItems:  10,
	}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMenu_NotFound(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM menus WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(menuColumns))
	mock.ExpectRollback()

	result, err := service.DeleteMenu(context.Background(), 404)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMenuNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMenu_RollsBackOnFailure(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	expectMenu(mock, 1, testNow, true)
	mock.ExpectExec(`DELETE FROM selections`).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(`DELETE FROM menu_ratings`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := service.DeleteMenu(context.Background(), 1)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMenu_ActiveDeactivatesOthers(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO menus \(week_start, deadline, is_active\)`).
		WithArgs("2025-03-10", sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(3, testWeekStart, testNow, true, testNow))
	mock.ExpectExec(`UPDATE menus SET is_active = FALSE WHERE id <> \$1 AND is_active = TRUE`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	menu, err := service.CreateMenu(context.Background(), CreateMenuInput{
		WeekStart: "2025-03-10",
		Deadline:  "2025-03-07T17:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), menu.ID)
	assert.True(t, menu.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMenu_Inactive(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO menus`).
		WithArgs("2025-03-10", sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(4, testWeekStart, testNow, false, testNow))
	mock.ExpectCommit()

	menu, err := service.CreateMenu(context.Background(), CreateMenuInput{
		WeekStart: "2025-03-10",
		Deadline:  "2025-03-07T17:00",
		IsActive:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, menu.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMenu_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateMenuInput
	}{
		{"missing week start", CreateMenuInput{Deadline: "2025-03-07T17:00:00Z"}},
		{"missing deadline", CreateMenuInput{WeekStart: "2025-03-10"}},
		{"bad week start", CreateMenuInput{WeekStart: "10/03/2025", Deadline: "2025-03-07T17:00:00Z"}},
		{"bad deadline", CreateMenuInput{WeekStart: "2025-03-10", Deadline: "friday evening"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mock := setupMenuTest(t)

			_, err := service.CreateMenu(context.Background(), tt.input)
			var validation *ValidationError
			assert.True(t, errors.As(err, &validation))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateMenu_MovingWeekShiftsSelections(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	expectMenu(mock, 1, testNow, false)
	mock.ExpectQuery(`UPDATE menus SET week_start = COALESCE\(\$2, week_start\)`).
		WithArgs(int64(1), "2025-03-17", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(1, testWeekStart.AddDate(0, 0, 7), testNow, false, testNow))
	mock.ExpectExec(`SET CONSTRAINTS selections_user_date_key DEFERRED`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE selections SET selection_date = selection_date \+ \$2::INTEGER`).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 9))
	mock.ExpectCommit()

	menu, err := service.UpdateMenu(context.Background(), 1, UpdateMenuInput{WeekStart: strPtr("2025-03-17")})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-17", menu.WeekStart.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMenu_ActivateDeactivatesOthers(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	expectMenu(mock, 2, testNow, false)
	mock.ExpectQuery(`UPDATE menus`).
		WithArgs(int64(2), sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows(menuColumns).
			AddRow(2, testWeekStart, testNow, true, testNow))
	mock.ExpectExec(`UPDATE menus SET is_active = FALSE`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	menu, err := service.UpdateMenu(context.Background(), 2, UpdateMenuInput{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, menu.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMenu_NothingToUpdate(t *testing.T) {
	service, mock := setupMenuTest(t)

	_, err := service.UpdateMenu(context.Background(), 1, UpdateMenuInput{})
	var validation *ValidationError
	assert.True(t, errors.As(err, &validation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItems(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	expectMenu(mock, 1, testNow, true)
	mock.ExpectQuery(`INSERT INTO menu_items \(menu_id, name, description, day\)`).
		WithArgs(int64(1), "Jollof Rice", sqlmock.AnyArg(), "Monday").
		WillReturnRows(sqlmock.NewRows(menuItemColumns).
			AddRow(1, 1, "Jollof Rice", "with chicken", "Monday", testNow))
	mock.ExpectQuery(`INSERT INTO menu_items`).
		WithArgs(int64(1), "Fruit Salad", sqlmock.AnyArg(), "Monday").
		WillReturnRows(sqlmock.NewRows(menuItemColumns).
			AddRow(2, 1, "Fruit Salad", nil, "Monday", testNow))
	mock.ExpectCommit()

	items, err := service.AddItems(context.Background(), 1, []NewMenuItemInput{
		{Name: " Jollof Rice ", Description: strPtr("with chicken"), Day: "mon"},
		{Name: "Fruit Salad", Day: "Monday"},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "with chicken", items[0].Description.String)
	assert.False(t, items[1].Description.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItems_InvalidDayRejectsWholeBatch(t *testing.T) {
	service, mock := setupMenuTest(t)

	_, err := service.AddItems(context.Background(), 1, []NewMenuItemInput{
		{Name: "Jollof Rice", Day: "Monday"},
		{Name: "Brunch", Day: "Sunday"},
	})
	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "items", validation.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItem_RemovesSelectionsFirst(t *testing.T) {
	service, mock := setupMenuTest(t)

	mock.ExpectBegin()
	expectMenuItem(mock, 40, 1, "Jollof Rice", "Monday")
	mock.ExpectExec(`DELETE FROM selections WHERE menu_item_id = \$1`).
		WithArgs(int64(40)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM menu_items WHERE id = \$1`).
		WithArgs(int64(40)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, service.DeleteItem(context.Background(), 40))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPairMeals(t *testing.T) {
	weekStart := models.NewDate(testWeekStart)
	items := []models.MenuItem{
		{ID: 11, Name: "Ice Cream", Day: "Wednesday"},
		{ID: 3, Name: "Kelewele", Day: "Monday"},
		{ID: 1, Name: "Jollof Rice", Day: "Monday"},
		{ID: 10, Name: "Banku", Day: "Wednesday"},
		{ID: 2, Name: "Fruit Salad", Day: "Monday"},
	}

	days := PairMeals(weekStart, items)
	require.Len(t, days, 5)

	assert.Equal(t, "Monday", days[0].Day)
	assert.Equal(t, "2025-03-10", days[0].Date.String())
	require.Len(t, days[0].Meals, 2)
	assert.Equal(t, "Jollof Rice", days[0].Meals[0].Main.Name)
	assert.Equal(t, "Fruit Salad", days[0].Meals[0].Dessert.Name)
	assert.Equal(t, "Kelewele", days[0].Meals[1].Main.Name)
	assert.Nil(t, days[0].Meals[1].Dessert)

	assert.NotNil(t, days[1].Meals)
	assert.Empty(t, days[1].Meals)

	require.Len(t, days[2].Meals, 1)
	assert.Equal(t, "Banku", days[2].Meals[0].Main.Name)
	assert.Equal(t, "Ice Cream", days[2].Meals[0].Dessert.Name)

	assert.Equal(t, "Friday", days[4].Day)
	assert.Equal(t, "2025-03-14", days[4].Date.String())
}

func TestParseDeadline(t *testing.T) {
	utc, err := parseDeadline("2025-03-07T17:00:00Z")
	require.NoError(t, err)
	assert.True(t, utc.Equal(time.Date(2025, 3, 7, 17, 0, 0, 0, time.UTC)))

	local, err := parseDeadline("2025-03-07T17:00")
	require.NoError(t, err)
	assert.Equal(t, time.Local, local.Location())
	assert.Equal(t, 17, local.Hour())

	_, err = parseDeadline("tomorrow")
	assert.Error(t, err)
}
