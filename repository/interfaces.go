// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/depedsdo/portal/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// TicketCounterRepository allocates ticket sequence numbers.
type TicketCounterRepository interface {
	// Next advances the (day, ticketType) bucket by one and returns the new
	// value. The advance is a single atomic statement; two concurrent callers
	// can never observe the same value. When the context carries a
	// transaction the advance commits or rolls back with it.
	Next(ctx context.Context, ticketType string, day time.Time) (int, error)
	// Get returns the counter row for a bucket, or nil when the bucket has
	// never issued.
	Get(ctx context.Context, ticketType string, day time.Time) (*models.TicketCounter, error)
}

// AccountRequestRepository defines operations for account requests
type AccountRequestRepository interface {
	Repository[models.AccountRequest, models.AccountRequestFilter]
	ByRequestNumber(ctx context.Context, number string) (*models.AccountRequest, error)
	UpdateStatus(ctx context.Context, id uint, status string, rejectReason *string) (bool, error)
	SoftDelete(ctx context.Context, id uint) (bool, error)
}

// ResetRequestRepository defines operations for reset requests
type ResetRequestRepository interface {
	Repository[models.ResetRequest, models.ResetRequestFilter]
	ByResetNumber(ctx context.Context, number string) (*models.ResetRequest, error)
	UpdateStatus(ctx context.Context, id uint, status string, notes *string, completedAt *time.Time) (bool, error)
	SoftDelete(ctx context.Context, id uint) (bool, error)
}

// BatchRepository defines operations for device shipment batches
type BatchRepository interface {
	Repository[models.Batch, models.BatchFilter]
	Update(ctx context.Context, batch *models.Batch) error
	// LatestBatchNumber returns the highest batch number with the given
	// prefix, or "" when none exists.
	LatestBatchNumber(ctx context.Context, prefix string) (string, error)
	ListReceived(ctx context.Context) ([]*models.Batch, error)
}

// BatchDeviceRepository defines operations for the devices inside batches
type BatchDeviceRepository interface {
	Repository[models.BatchDevice, models.BatchDeviceFilter]
	// ExistingSerials returns the subset of serials already recorded against
	// any batch in history.
	ExistingSerials(ctx context.Context, serials []string) ([]string, error)
	ListByBatch(ctx context.Context, batchID uint) ([]*models.BatchDevice, error)
	// IDsInBatch returns which of the given device ids belong to the batch.
	IDsInBatch(ctx context.Context, batchID uint, ids []uint) ([]uint, error)
	// UpdateSerial updates one device row scoped to its batch and returns the
	// number of rows affected.
	UpdateSerial(ctx context.Context, batchID, deviceID uint, serial string) (int64, error)
}

// DeviceRepository defines operations for the device-name catalog
type DeviceRepository interface {
	List(ctx context.Context) ([]*models.Device, error)
	Save(ctx context.Context, device *models.Device) error
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// SchoolRepository defines operations for the school reference list
type SchoolRepository interface {
	List(ctx context.Context, district *string) ([]*models.School, error)
	ByCode(ctx context.Context, code string) (*models.School, error)
	Save(ctx context.Context, school *models.School) error
}

// DesignationRepository defines operations for the designation reference list
type DesignationRepository interface {
	List(ctx context.Context) ([]*models.Designation, error)
	Save(ctx context.Context, d *models.Designation) error
}
