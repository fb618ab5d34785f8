package models

import "time"

// BatchDevice is one physical device's record inside a batch.
// Table: batch_devices
// device_number carries a table-wide unique index: a serial recorded against
// any batch in history may never be recorded again. That index, not the
// application-level pre-check, is the authoritative duplicate guard.
type BatchDevice struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID      uint   `gorm:"not null;index" json:"batch_id"`
	DeviceType   string `gorm:"type:varchar(100);not null" json:"device_type"`
	DeviceNumber string `gorm:"type:varchar(100);uniqueIndex;not null" json:"device_number"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Batch *Batch `gorm:"foreignKey:BatchID;references:ID;constraint:OnDelete:CASCADE" json:"batch,omitempty"`
}

func (BatchDevice) TableName() string { return "batch_devices" }

// BatchDeviceFilter represents filter criteria for batch device queries
type BatchDeviceFilter struct {
	ID           *uint   `json:"id,omitempty"`
	BatchID      *uint   `json:"batch_id,omitempty"`
	DeviceType   *string `json:"device_type,omitempty"`
	DeviceNumber *string `json:"device_number,omitempty"`
}
