package models

import "time"

// Device is a catalog entry for a device model name offered on the batch
// form (distinct from BatchDevice, which records shipped serials).
type Device struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceName string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"device_name"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Device) TableName() string { return "devices" }
