package models

import (
	"time"

	"github.com/depedsdo/portal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResetRequest is a public-form submission asking for a DepEd account reset.
// Table: reset_requests
// The reset number (RST-YYYY-MM-DD-NNNN) comes from the same ticket counter
// mechanism as account requests, under its own type bucket.
type ResetRequest struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	ResetNumber string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"reset_number"`

	SelectedType   string `gorm:"type:varchar(50);not null" json:"selected_type"`
	Name           string `gorm:"type:varchar(255);not null" json:"name"`
	Surname        string `gorm:"type:varchar(100);not null" json:"surname"`
	FirstName      string `gorm:"type:varchar(100);not null" json:"first_name"`
	MiddleName     string `gorm:"type:varchar(100)" json:"middle_name"`
	School         string `gorm:"type:varchar(255);not null" json:"school"`
	SchoolID       string `gorm:"type:varchar(50);not null" json:"school_id"`
	EmployeeNumber string `gorm:"type:varchar(50);not null" json:"employee_number"`
	ResetEmail     string `gorm:"type:varchar(255);not null" json:"reset_email"`
	DepEdEmail     string `gorm:"column:deped_email;type:varchar(255);not null" json:"deped_email"`

	Status      string     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Notes       *string    `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ResetRequest) TableName() string { return "reset_requests" }

// BeforeCreate ensures UUID and timestamps are set
func (r *ResetRequest) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// ResetRequestFilter represents filter criteria for reset request queries
type ResetRequestFilter struct {
	ID            *uint      `json:"id,omitempty"`
	ResetNumber   *string    `json:"reset_number,omitempty"`
	Status        *string    `json:"status,omitempty"`
	School        *string    `json:"school,omitempty"`
	SchoolID      *string    `json:"school_id,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
