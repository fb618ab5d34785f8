package models

import "time"

// School is a reference row for the division's schools, used to populate
// form dropdowns and to resolve school codes on batches.
type School struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SchoolCode string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"school_code"`
	School     string    `gorm:"type:varchar(255);not null" json:"school"`
	District   string    `gorm:"type:varchar(100);not null;index" json:"district"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (School) TableName() string { return "schools" }

// SchoolFilter represents filter criteria for school queries
type SchoolFilter struct {
	SchoolCode *string `json:"school_code,omitempty"`
	District   *string `json:"district,omitempty"`
}
