package repository

import (
	"context"
	"fmt"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/utils"
	"gorm.io/gorm"
)

// BatchRepositoryImpl implements BatchRepository interface
type BatchRepositoryImpl struct {
	*BaseRepository[models.Batch, models.BatchFilter]
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &BatchRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Batch, models.BatchFilter](db),
	}
}

// Update persists changes to an existing batch
func (r *BatchRepositoryImpl) Update(ctx context.Context, batch *models.Batch) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	batch.UpdatedAt = utils.UTCNow()
	err = db.Save(batch).Error
	if err != nil {
		return fmt.Errorf("failed to update batch %d: %w", batch.ID, err)
	}

	return nil
}

// LatestBatchNumber returns the highest batch number with the given prefix
func (r *BatchRepositoryImpl) LatestBatchNumber(ctx context.Context, prefix string) (string, error) {
	db := r.getDB(ctx)

	var number string
	err := db.Model(&models.Batch{}).
		Select("batch_number").
		Where("batch_number LIKE ?", prefix+"%").
		Order("batch_number DESC").
		Limit(1).
		Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

// ListReceived returns delivered batches that carry a received date, newest first
func (r *BatchRepositoryImpl) ListReceived(ctx context.Context) ([]*models.Batch, error) {
	db := r.getDB(ctx)

	var rows []*models.Batch
	err := db.Where("status = ? AND received_date IS NOT NULL", models.BatchStatusDelivered).
		Order("received_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *BatchRepositoryImpl) applyFilter(query *gorm.DB, filter models.BatchFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.BatchNumber != nil {
		query = query.Where("batch_number = ?", *filter.BatchNumber)
	}
	if filter.SchoolCode != nil {
		query = query.Where("school_code = ?", *filter.SchoolCode)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SentAfter != nil {
		query = query.Where("send_date > ?", *filter.SentAfter)
	}
	if filter.SentBefore != nil {
		query = query.Where("send_date < ?", *filter.SentBefore)
	}
	return query
}

// ByFilter retrieves batches based on filter criteria
func (r *BatchRepositoryImpl) ByFilter(ctx context.Context, filter models.BatchFilter, orderBy string, limit, offset int) ([]*models.Batch, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Batch{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "send_date DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Batch
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of batches matching filter
func (r *BatchRepositoryImpl) Count(ctx context.Context, filter models.BatchFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Batch{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any batch matches the filter
func (r *BatchRepositoryImpl) Exists(ctx context.Context, filter models.BatchFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
