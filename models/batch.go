package models

import (
	"time"

	"github.com/depedsdo/portal/utils"
	"gorm.io/gorm"
)

// BatchStatus represents the lifecycle state of a device shipment
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "Pending"   // Sent but not yet received by the school
	BatchStatusDelivered BatchStatus = "Delivered" // Received (or back-dated at creation)
	BatchStatusCancelled BatchStatus = "Cancelled" // Cancelled before delivery
)

// Batch is one consignment of devices sent to one school on one date.
// Table: batches
// The batch number is supplied by the caller; it is not minted by the
// ticket counters. A batch owns its device rows: they are created and
// deleted with it and never shared across batches.
// Transitions are one-directional: Pending may become Delivered or
// Cancelled, both of which are terminal.
type Batch struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchNumber string      `gorm:"type:varchar(32);not null;index" json:"batch_number"`
	SchoolCode  string      `gorm:"type:varchar(50);not null;index" json:"school_code"`
	SchoolName  string      `gorm:"type:varchar(255);not null" json:"school_name"`
	SendDate    time.Time   `gorm:"type:date;not null" json:"send_date"`
	Status      BatchStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`

	ReceivedDate  *time.Time `gorm:"type:date" json:"received_date,omitempty"`
	CancelledDate *time.Time `gorm:"type:date" json:"cancelled_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Devices []BatchDevice `gorm:"foreignKey:BatchID;references:ID;constraint:OnDelete:CASCADE" json:"devices,omitempty"`
}

func (Batch) TableName() string { return "batches" }

// BeforeCreate normalizes timestamps if zero
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// IsTerminal reports whether no further status transitions are allowed.
func (b *Batch) IsTerminal() bool {
	return b.Status == BatchStatusDelivered || b.Status == BatchStatusCancelled
}

// CanCancel reports whether the batch may transition to Cancelled.
func (b *Batch) CanCancel() bool {
	return b.Status == BatchStatusPending
}

// CanReceive reports whether the batch may transition to Delivered.
func (b *Batch) CanReceive() bool {
	return b.Status == BatchStatusPending
}

// BatchFilter represents filter criteria for batch queries
type BatchFilter struct {
	ID          *uint        `json:"id,omitempty"`
	BatchNumber *string      `json:"batch_number,omitempty"`
	SchoolCode  *string      `json:"school_code,omitempty"`
	Status      *BatchStatus `json:"status,omitempty"`
	SentAfter   *time.Time   `json:"sent_after,omitempty"`
	SentBefore  *time.Time   `json:"sent_before,omitempty"`
}
