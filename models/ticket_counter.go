package models

import (
	"fmt"
	"time"
)

// Ticket types issued by the portal. The set is closed: every counter row
// belongs to one of these.
const (
	TicketTypeRequest = "REQ"
	TicketTypeReset   = "RST"
)

// MaxTicketSeq is the largest sequence a 4-digit ticket number can carry.
// A bucket that reaches it stops issuing instead of wrapping.
const MaxTicketSeq = 9999

// TicketCounter stores the last sequence issued per (date, type) bucket.
// Rows are created on the first allocation of the day and mutated in place
// afterwards; they are never deleted. last_seq is monotonically
// non-decreasing and only ever advanced through an atomic upsert.
type TicketCounter struct {
	Date      time.Time `gorm:"primaryKey;type:date" json:"date"`
	Type      string    `gorm:"primaryKey;size:8" json:"type"`
	LastSeq   int       `gorm:"not null;default:0" json:"last_seq"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TicketCounter) TableName() string { return "ticket_counters" }

// TicketNumber renders the externally visible ticket identifier, e.g.
// REQ-2025-01-16-0001. Uniqueness follows from the counter invariant.
func TicketNumber(ticketType string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", ticketType, day.Format("2006-01-02"), seq)
}
