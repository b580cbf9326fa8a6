package models

import "time"

// Selection is a user's chosen menu item for one calendar date.
// There is at most one row per (user_id, selection_date).
type Selection struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	MenuItemID    int64     `json:"menu_item_id" db:"menu_item_id"`
	SelectionDate Date      `json:"selection_date" db:"selection_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SelectionDetail is a selection joined with the chosen item
type SelectionDetail struct {
	Selection
	Name        string     `json:"name" db:"name"`
	Description NullString `json:"description" db:"description"`
	Day         string     `json:"day" db:"day"`
}

// StaffSelectionRow is one staff member's picks for the active menu,
// Monday through Friday, NULL where nothing was picked
type StaffSelectionRow struct {
	UserID     int64           `json:"userId" db:"user_id"`
	Username   string          `json:"username" db:"username"`
	Selections NullStringArray `json:"selections" db:"selections"`
	Progress   string          `json:"progress" db:"-"`
}

// Overview is the admin dashboard summary for the active menu
type Overview struct {
	ActiveMenu            *Menu               `json:"activeMenu"`
	TotalStaff            int                 `json:"totalStaff"`
	TotalMenuItems        int                 `json:"totalMenuItems"`
	TotalSelections       int                 `json:"totalSelections"`
	CompleteProfiles      int                 `json:"completeProfiles"`
	MaxPossibleSelections int                 `json:"maxPossibleSelections"`
	ProgressPercentage    int                 `json:"progressPercentage"`
	StaffSelections       []StaffSelectionRow `json:"staffSelections"`
}

// EligibleStaff is a directory entry that has not signed up yet
type EligibleStaff struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
}
