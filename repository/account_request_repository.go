package repository

import (
	"context"
	"fmt"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/utils"
	"gorm.io/gorm"
)

// AccountRequestRepositoryImpl implements AccountRequestRepository interface
type AccountRequestRepositoryImpl struct {
	*BaseRepository[models.AccountRequest, models.AccountRequestFilter]
}

// NewAccountRequestRepository creates a new account request repository
func NewAccountRequestRepository(db *gorm.DB) AccountRequestRepository {
	return &AccountRequestRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AccountRequest, models.AccountRequestFilter](db),
	}
}

// ByRequestNumber retrieves an account request by its ticket number
func (r *AccountRequestRepositoryImpl) ByRequestNumber(ctx context.Context, number string) (*models.AccountRequest, error) {
	rows, err := r.ByFilter(ctx, models.AccountRequestFilter{RequestNumber: &number}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateStatus sets the request status; reject reason is stored only for
// Rejected and cleared otherwise. Returns false when the row does not exist.
func (r *AccountRequestRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status string, rejectReason *string) (bool, error) {
	db := r.getDB(ctx)

	updates := map[string]any{
		"status":     status,
		"updated_at": utils.UTCNow(),
	}
	if status == models.RequestStatusRejected && rejectReason != nil {
		updates["reject_reason"] = *rejectReason
	} else {
		updates["reject_reason"] = nil
	}

	res := db.Model(&models.AccountRequest{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update account request %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SoftDelete marks the request deleted. Returns false when the row does not exist.
func (r *AccountRequestRepositoryImpl) SoftDelete(ctx context.Context, id uint) (bool, error) {
	db := r.getDB(ctx)

	res := db.Delete(&models.AccountRequest{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete account request %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *AccountRequestRepositoryImpl) applyFilter(query *gorm.DB, filter models.AccountRequestFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.RequestNumber != nil {
		query = query.Where("request_number = ?", *filter.RequestNumber)
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

// ByFilter retrieves account requests based on filter criteria
func (r *AccountRequestRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountRequestFilter, orderBy string, limit, offset int) ([]*models.AccountRequest, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.AccountRequest{})

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

	var rows []*models.AccountRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of account requests matching filter
func (r *AccountRequestRepositoryImpl) Count(ctx context.Context, filter models.AccountRequestFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.AccountRequest{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any account request matches the filter
func (r *AccountRequestRepositoryImpl) Exists(ctx context.Context, filter models.AccountRequestFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
