package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/utils"
	"gorm.io/gorm"
)

// ResetRequestRepositoryImpl implements ResetRequestRepository interface
type ResetRequestRepositoryImpl struct {
	*BaseRepository[models.ResetRequest, models.ResetRequestFilter]
}

// NewResetRequestRepository creates a new reset request repository
func NewResetRequestRepository(db *gorm.DB) ResetRequestRepository {
	return &ResetRequestRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ResetRequest, models.ResetRequestFilter](db),
	}
}

// ByResetNumber retrieves a reset request by its ticket number
func (r *ResetRequestRepositoryImpl) ByResetNumber(ctx context.Context, number string) (*models.ResetRequest, error) {
	rows, err := r.ByFilter(ctx, models.ResetRequestFilter{ResetNumber: &number}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateStatus sets status and notes; completed_at is stamped or cleared by
// the caller. Returns false when the row does not exist.
func (r *ResetRequestRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status string, notes *string, completedAt *time.Time) (bool, error) {
	db := r.getDB(ctx)

	updates := map[string]any{
		"status":       status,
		"notes":        notes,
		"completed_at": completedAt,
		"updated_at":   utils.UTCNow(),
	}

	res := db.Model(&models.ResetRequest{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update reset request %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SoftDelete marks the request deleted. Returns false when the row does not exist.
func (r *ResetRequestRepositoryImpl) SoftDelete(ctx context.Context, id uint) (bool, error) {
	db := r.getDB(ctx)

	res := db.Delete(&models.ResetRequest{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete reset request %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ResetRequestRepositoryImpl) applyFilter(query *gorm.DB, filter models.ResetRequestFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ResetNumber != nil {
		query = query.Where("reset_number = ?", *filter.ResetNumber)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.School != nil {
		query = query.Where("school = ?", *filter.School)
	}
	if filter.SchoolID != nil {
		query = query.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves reset requests based on filter criteria
func (r *ResetRequestRepositoryImpl) ByFilter(ctx context.Context, filter models.ResetRequestFilter, orderBy string, limit, offset int) ([]*models.ResetRequest, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ResetRequest{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "created_at ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ResetRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of reset requests matching filter
func (r *ResetRequestRepositoryImpl) Count(ctx context.Context, filter models.ResetRequestFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ResetRequest{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any reset request matches the filter
func (r *ResetRequestRepositoryImpl) Exists(ctx context.Context, filter models.ResetRequestFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
