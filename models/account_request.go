// Package models contains the GORM models and filter types for the portal.
package models

import (
	"time"

	"github.com/depedsdo/portal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Request lifecycle statuses shared by account and reset requests.
const (
	RequestStatusPending   = "Pending"
	RequestStatusCompleted = "Completed"
	RequestStatusRejected  = "Rejected"
)

// AccountRequest is a public-form submission asking for a new DepEd account.
// Table: account_requests
// The request number (REQ-YYYY-MM-DD-NNNN) is minted by the ticket counter
// in the same transaction that inserts the row.
// Uploaded document names are stored as plain file references; storage and
// validation of the files themselves happen outside this service.
// Deletion is a soft delete: rejected-with-sentinel-reason is not used to
// mean "deleted".
type AccountRequest struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	RequestNumber string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"request_number"`

	SelectedType  string `gorm:"type:varchar(50);not null" json:"selected_type"`
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	Surname       string `gorm:"type:varchar(100);not null" json:"surname"`
	FirstName     string `gorm:"type:varchar(100);not null" json:"first_name"`
	MiddleName    string `gorm:"type:varchar(100)" json:"middle_name"`
	Designation   string `gorm:"type:varchar(100);not null" json:"designation"`
	School        string `gorm:"type:varchar(255);not null" json:"school"`
	SchoolID      string `gorm:"type:varchar(50);not null" json:"school_id"`
	PersonalGmail string `gorm:"type:varchar(255);not null" json:"personal_gmail"`

	ProofOfIdentity   string `gorm:"type:varchar(255)" json:"proof_of_identity"`
	PRCID             string `gorm:"type:varchar(255)" json:"prc_id"`
	EndorsementLetter string `gorm:"type:varchar(255)" json:"endorsement_letter"`

	Status       string  `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	RejectReason *string `gorm:"type:text" json:"reject_reason,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AccountRequest) TableName() string { return "account_requests" }

// BeforeCreate ensures UUID and timestamps are set
func (r *AccountRequest) BeforeCreate(tx *gorm.DB) error {
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

// AccountRequestFilter represents filter criteria for account request queries
type AccountRequestFilter struct {
	ID            *uint      `json:"id,omitempty"`
	RequestNumber *string    `json:"request_number,omitempty"`
	Status        *string    `json:"status,omitempty"`
	School        *string    `json:"school,omitempty"`
	SchoolID      *string    `json:"school_id,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
