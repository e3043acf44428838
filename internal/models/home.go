package models

// Meal is one menu of one day, e.g. lunch on 2025-03-04.
type Meal struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Date string `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD
	Type string `gorm:"size:10;not null" json:"type"`
	Menu string `gorm:"type:text;not null" json:"menu"` // items joined with ", "
}

type PlannerItem struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"size:50;not null;index:idx_planner_user_date" json:"-"`
	Date   string `gorm:"type:varchar(10);not null;index:idx_planner_user_date" json:"date"`
	Text   string `gorm:"type:text;not null" json:"text"`
	Done   bool   `gorm:"not null" json:"done"`
}

// TimetableCell is one slot of a user's weekly timetable; CellKey names the slot (e.g. "mon-3").
type TimetableCell struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  string `gorm:"size:50;not null;uniqueIndex:idx_user_cell" json:"user_id"`
	CellKey string `gorm:"size:10;not null;uniqueIndex:idx_user_cell" json:"cell_key"`
	Subject string `gorm:"size:50;not null" json:"subject"`
}
