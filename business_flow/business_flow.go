// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
	"github.com/depedsdo/portal/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// mintTicketNumber draws the next sequence value for today's (day, type)
// bucket and formats it as TYPE-YYYY-MM-DD-NNNN. It must run inside the same
// transaction that persists the request row, so an aborted insert also
// releases the drawn value.
func mintTicketNumber(ctx context.Context, counters repository.TicketCounterRepository, ticketType string, loc *time.Location) (string, error) {
	day := utils.Today(loc)

	seq, err := counters.Next(ctx, ticketType, day)
	if err != nil {
		return "", err
	}
	if seq > models.MaxTicketSeq {
		return "", ErrTicketSequenceExhausted
	}

	return models.TicketNumber(ticketType, day, seq), nil
}

// listWindow converts page/pageSize into limit/offset with sane defaults.
func listWindow(page, pageSize uint) (limit, offset int, err error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 50
	}
	if pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return int(pageSize), int(pageSize) * int(page-1), nil
}

// validateDateRange rejects inverted filter windows.
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return ErrStartDateAfterEndDate
	}
	return nil
}
