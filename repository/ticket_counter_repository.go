package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/depedsdo/portal/models"
	"gorm.io/gorm"
)

// TicketCounterRepositoryImpl implements TicketCounterRepository
type TicketCounterRepositoryImpl struct {
	db *gorm.DB
}

// NewTicketCounterRepository creates a new ticket counter repository
func NewTicketCounterRepository(db *gorm.DB) TicketCounterRepository {
	return &TicketCounterRepositoryImpl{db: db}
}

func (r *TicketCounterRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// Next advances the bucket's counter and returns the new sequence.
//
// The read-increment-store happens server-side in one upsert, so concurrent
// callers serialize on the row and can neither duplicate nor skip a value.
// Reading last_seq first and writing last_seq+1 back from the client would
// race; that shape must not be reintroduced here.
func (r *TicketCounterRepositoryImpl) Next(ctx context.Context, ticketType string, day time.Time) (int, error) {
	db := r.getDB(ctx)

	var seq int
	err := db.Raw(`
		INSERT INTO ticket_counters (date, type, last_seq, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (date, type)
		DO UPDATE SET last_seq = ticket_counters.last_seq + 1, updated_at = NOW()
		RETURNING last_seq`,
		day.Format("2006-01-02"), ticketType,
	).Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to allocate ticket sequence for %s/%s: %w",
			ticketType, day.Format("2006-01-02"), err)
	}

	return seq, nil
}

// Get returns the counter row for a bucket, or nil when absent
func (r *TicketCounterRepositoryImpl) Get(ctx context.Context, ticketType string, day time.Time) (*models.TicketCounter, error) {
	db := r.getDB(ctx)

	var row models.TicketCounter
	err := db.Where("date = ? AND type = ?", day.Format("2006-01-02"), ticketType).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
