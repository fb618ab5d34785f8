package models

// Designation is a reference row for the position titles offered on the
// account-request form.
type Designation struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Designation string `gorm:"type:varchar(100);uniqueIndex;not null" json:"designation"`
}

func (Designation) TableName() string { return "designations" }
