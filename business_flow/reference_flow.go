package businessflow

import (
	"context"
	"strings"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
)

// ReferenceFlow serves the dropdown data behind the public forms and the
// admin batch screens: schools, designations, and the device-name catalog.
type ReferenceFlow interface {
	ListSchools(ctx context.Context, district *string) ([]*models.School, error)
	ListDesignations(ctx context.Context) ([]*models.Designation, error)
	ListDevices(ctx context.Context) ([]*models.Device, error)
	AddDevice(ctx context.Context, name string) (*models.Device, error)
	RemoveDevice(ctx context.Context, name string) error
}

// ReferenceFlowImpl implements ReferenceFlow
type ReferenceFlowImpl struct {
	schoolRepo      repository.SchoolRepository
	designationRepo repository.DesignationRepository
	deviceRepo      repository.DeviceRepository
}

func NewReferenceFlow(schoolRepo repository.SchoolRepository, designationRepo repository.DesignationRepository, deviceRepo repository.DeviceRepository) ReferenceFlow {
	return &ReferenceFlowImpl{schoolRepo: schoolRepo, designationRepo: designationRepo, deviceRepo: deviceRepo}
}

func (f *ReferenceFlowImpl) ListSchools(ctx context.Context, district *string) ([]*models.School, error) {
	return f.schoolRepo.List(ctx, district)
}

func (f *ReferenceFlowImpl) ListDesignations(ctx context.Context) ([]*models.Designation, error) {
	return f.designationRepo.List(ctx)
}

func (f *ReferenceFlowImpl) ListDevices(ctx context.Context) ([]*models.Device, error) {
	return f.deviceRepo.List(ctx)
}

func (f *ReferenceFlowImpl) AddDevice(ctx context.Context, name string) (*models.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrDeviceNameRequired
	}

	device := models.Device{DeviceName: name}
	if err := f.deviceRepo.Save(ctx, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

func (f *ReferenceFlowImpl) RemoveDevice(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrDeviceNameRequired
	}

	deleted, err := f.deviceRepo.DeleteByName(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDeviceNotFound
	}
	return nil
}
