package repository

import (
	"context"
	"fmt"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/utils"
	"gorm.io/gorm"
)

// BatchDeviceRepositoryImpl implements BatchDeviceRepository interface
type BatchDeviceRepositoryImpl struct {
	*BaseRepository[models.BatchDevice, models.BatchDeviceFilter]
}

// NewBatchDeviceRepository creates a new batch device repository
func NewBatchDeviceRepository(db *gorm.DB) BatchDeviceRepository {
	return &BatchDeviceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BatchDevice, models.BatchDeviceFilter](db),
	}
}

// ExistingSerials returns which of the given serials are already recorded
// against any batch in history. This backs the fast-fail pre-check; the
// unique index on device_number remains the authoritative guard.
func (r *BatchDeviceRepositoryImpl) ExistingSerials(ctx context.Context, serials []string) ([]string, error) {
	if len(serials) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)
	var existing []string
	err := db.Model(&models.BatchDevice{}).
		Where("device_number IN ?", serials).
		Pluck("device_number", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing serials: %w", err)
	}
	return existing, nil
}

// ListByBatch returns the device rows of one batch, ordered by id
func (r *BatchDeviceRepositoryImpl) ListByBatch(ctx context.Context, batchID uint) ([]*models.BatchDevice, error) {
	db := r.getDB(ctx)

	var rows []*models.BatchDevice
	err := db.Where("batch_id = ?", batchID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IDsInBatch returns which of the given device ids belong to the batch
func (r *BatchDeviceRepositoryImpl) IDsInBatch(ctx context.Context, batchID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)
	var found []uint
	err := db.Model(&models.BatchDevice{}).
		Where("id IN ? AND batch_id = ?", ids, batchID).
		Pluck("id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to verify device ids for batch %d: %w", batchID, err)
	}
	return found, nil
}

// UpdateSerial updates one device row scoped to its batch. Zero rows affected
// signals a concurrent deletion or id mismatch; callers treat it as fatal to
// the whole bulk update.
func (r *BatchDeviceRepositoryImpl) UpdateSerial(ctx context.Context, batchID, deviceID uint, serial string) (int64, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.BatchDevice{}).
		Where("id = ? AND batch_id = ?", deviceID, batchID).
		Updates(map[string]any{
			"device_number": serial,
			"updated_at":    utils.UTCNow(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update device %d in batch %d: %w", deviceID, batchID, res.Error)
	}
	return res.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *BatchDeviceRepositoryImpl) applyFilter(query *gorm.DB, filter models.BatchDeviceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.BatchID != nil {
		query = query.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.DeviceType != nil {
		query = query.Where("device_type = ?", *filter.DeviceType)
	}
	if filter.DeviceNumber != nil {
		query = query.Where("device_number = ?", *filter.DeviceNumber)
	}
	return query
}

// ByFilter retrieves batch devices based on filter criteria
func (r *BatchDeviceRepositoryImpl) ByFilter(ctx context.Context, filter models.BatchDeviceFilter, orderBy string, limit, offset int) ([]*models.BatchDevice, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.BatchDevice{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.BatchDevice
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of batch devices matching filter
func (r *BatchDeviceRepositoryImpl) Count(ctx context.Context, filter models.BatchDeviceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.BatchDevice{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any batch device matches the filter
func (r *BatchDeviceRepositoryImpl) Exists(ctx context.Context, filter models.BatchDeviceFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
