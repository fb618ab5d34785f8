package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/depedsdo/portal/models"
	"gorm.io/gorm"
)

// DeviceRepositoryImpl implements DeviceRepository for the device-name catalog
type DeviceRepositoryImpl struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new device catalog repository
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &DeviceRepositoryImpl{db: db}
}

func (r *DeviceRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// List returns all catalog device names
func (r *DeviceRepositoryImpl) List(ctx context.Context) ([]*models.Device, error) {
	var rows []*models.Device
	if err := r.getDB(ctx).Order("device_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save inserts a catalog device
func (r *DeviceRepositoryImpl) Save(ctx context.Context, device *models.Device) error {
	if err := r.getDB(ctx).Create(device).Error; err != nil {
		return fmt.Errorf("failed to save device: %w", err)
	}
	return nil
}

// DeleteByName removes a catalog device. Returns false when absent.
func (r *DeviceRepositoryImpl) DeleteByName(ctx context.Context, name string) (bool, error) {
	res := r.getDB(ctx).Where("device_name = ?", name).Delete(&models.Device{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete device %q: %w", name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SchoolRepositoryImpl implements SchoolRepository
type SchoolRepositoryImpl struct {
	db *gorm.DB
}

// NewSchoolRepository creates a new school repository
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &SchoolRepositoryImpl{db: db}
}

func (r *SchoolRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// List returns schools, optionally restricted to one district
func (r *SchoolRepositoryImpl) List(ctx context.Context, district *string) ([]*models.School, error) {
	query := r.getDB(ctx).Model(&models.School{})
	if district != nil {
		query = query.Where("district = ?", *district)
	}

	var rows []*models.School
	if err := query.Order("school ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ByCode retrieves a school by its code, or nil when absent
func (r *SchoolRepositoryImpl) ByCode(ctx context.Context, code string) (*models.School, error) {
	var row models.School
	err := r.getDB(ctx).Where("school_code = ?", code).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Save inserts a school
func (r *SchoolRepositoryImpl) Save(ctx context.Context, school *models.School) error {
	if err := r.getDB(ctx).Create(school).Error; err != nil {
		return fmt.Errorf("failed to save school: %w", err)
	}
	return nil
}

// DesignationRepositoryImpl implements DesignationRepository
type DesignationRepositoryImpl struct {
	db *gorm.DB
}

// NewDesignationRepository creates a new designation repository
func NewDesignationRepository(db *gorm.DB) DesignationRepository {
	return &DesignationRepositoryImpl{db: db}
}

func (r *DesignationRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// List returns designations sorted ascending
func (r *DesignationRepositoryImpl) List(ctx context.Context) ([]*models.Designation, error) {
	var rows []*models.Designation
	if err := r.getDB(ctx).Order("designation ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save inserts a designation
func (r *DesignationRepositoryImpl) Save(ctx context.Context, d *models.Designation) error {
	if err := r.getDB(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to save designation: %w", err)
	}
	return nil
}
