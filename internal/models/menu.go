package models

import "time"

// Menu is one week's published menu
type Menu struct {
	ID        int64     `json:"id" db:"id"`
	WeekStart Date      `json:"week_start" db:"week_start"`
	Deadline  time.Time `json:"deadline" db:"deadline"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DeadlinePassed reports whether selections are closed at now
func (m *Menu) DeadlinePassed(now time.Time) bool {
	return now.After(m.Deadline)
}

// MenuItem is a dish offered on one weekday of a menu
type MenuItem struct {
	ID          int64      `json:"id" db:"id"`
	MenuID      int64      `json:"menu_id" db:"menu_id"`
	Name        string     `json:"name" db:"name"`
	Description NullString `json:"description" db:"description"`
	Day         string     `json:"day" db:"day"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// MealPair is a main course and its dessert, paired by insert order within a day
type MealPair struct {
	Main    *MenuItem `json:"main"`
	Dessert *MenuItem `json:"dessert,omitempty"`
}

// DayMeals groups the meal pairs offered on one weekday
type DayMeals struct {
	Day   string     `json:"day"`
	Date  Date       `json:"date"`
	Meals []MealPair `json:"meals"`
}

// ActiveMenu is the active menu with its items and day-by-day pairing
type ActiveMenu struct {
	Menu  *Menu      `json:"menu"`
	Items []MenuItem `json:"items"`
	Days  []DayMeals `json:"days"`
}

// MenuRating is a user's 1..5 rating of a menu; one per (menu, user)
type MenuRating struct {
	ID        int64      `json:"id" db:"id"`
	MenuID    int64      `json:"menu_id" db:"menu_id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Rating    int        `json:"rating" db:"rating"`
	Comment   NullString `json:"comment" db:"comment"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// MenuRatingView is a rating joined with the rater and the menu week
type MenuRatingView struct {
	MenuRating
	Username  string `json:"username" db:"username"`
	WeekStart Date   `json:"week_start" db:"week_start"`
}
