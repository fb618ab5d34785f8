package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/depedsdo/portal/app/dto"
	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
	"github.com/depedsdo/portal/utils"
	"gorm.io/gorm"
)

const batchNumberDateLayout = "20060102"

// BatchFlow defines operations for device shipment batches
type BatchFlow interface {
	CreateBatch(ctx context.Context, req *dto.CreateBatchRequest, metadata *ClientMetadata) (*dto.CreateBatchResponse, error)
	UpdateBatchStatus(ctx context.Context, id uint, req *dto.UpdateBatchStatusRequest) (*dto.BatchItem, error)
	UpdateBatch(ctx context.Context, id uint, req *dto.UpdateBatchRequest) (*dto.BatchItem, error)
	UpdateBatchDevices(ctx context.Context, id uint, req *dto.UpdateBatchDevicesRequest) (*dto.UpdateBatchDevicesResponse, error)
	ListBatches(ctx context.Context) (*dto.ListBatchesResponse, error)
	ListBatchesBySchool(ctx context.Context, schoolCode string, status *string) (*dto.ListBatchesResponse, error)
	ListReceivedBatches(ctx context.Context) (*dto.ListBatchesResponse, error)
	ListBatchDevices(ctx context.Context, batchID uint) (*dto.ListBatchDevicesResponse, error)
	NextBatchNumber(ctx context.Context) (*dto.NextBatchNumberResponse, error)
}

// BatchFlowImpl implements BatchFlow
type BatchFlowImpl struct {
	db         *gorm.DB
	batchRepo  repository.BatchRepository
	deviceRepo repository.BatchDeviceRepository
	loc        *time.Location
}

func NewBatchFlow(db *gorm.DB, batchRepo repository.BatchRepository, deviceRepo repository.BatchDeviceRepository, loc *time.Location) BatchFlow {
	return &BatchFlowImpl{db: db, batchRepo: batchRepo, deviceRepo: deviceRepo, loc: loc}
}

// CreateBatch registers a shipment and all of its devices atomically. Either
// the batch row and every device row are committed, or nothing is.
//
// Serial uniqueness is history-wide: a serial used by any batch ever, in any
// status, can never be used again. The pre-check gives a friendly error with
// the offending serials; the unique index on batch_devices.device_number
// remains the authority under concurrent submissions.
func (f *BatchFlowImpl) CreateBatch(ctx context.Context, req *dto.CreateBatchRequest, metadata *ClientMetadata) (*dto.CreateBatchResponse, error) {
	if strings.TrimSpace(req.BatchNumber) == "" {
		return nil, ErrBatchNumberRequired
	}
	if strings.TrimSpace(req.SchoolCode) == "" || strings.TrimSpace(req.SchoolName) == "" {
		return nil, ErrSchoolRequired
	}
	sendDate, err := parseSendDate(req.SendDate, f.loc)
	if err != nil {
		return nil, err
	}
	if len(req.Devices) == 0 {
		return nil, ErrDevicesRequired
	}

	serials := make([]string, 0, len(req.Devices))
	seen := make(map[string]bool, len(req.Devices))
	var repeated []string
	for _, d := range req.Devices {
		serial := strings.TrimSpace(d.SerialNumber)
		if strings.TrimSpace(d.DeviceType) == "" || serial == "" {
			return nil, ErrDeviceFieldsRequired
		}
		if seen[serial] {
			repeated = append(repeated, serial)
			continue
		}
		seen[serial] = true
		serials = append(serials, serial)
	}
	if len(repeated) > 0 {
		return nil, NewDuplicateSerialError(repeated)
	}

	existing, err := f.deviceRepo.ExistingSerials(ctx, serials)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, NewDuplicateSerialError(existing)
	}

	batch := models.Batch{
		BatchNumber: strings.TrimSpace(req.BatchNumber),
		SchoolCode:  strings.TrimSpace(req.SchoolCode),
		SchoolName:  strings.TrimSpace(req.SchoolName),
		SendDate:    sendDate,
	}
	batch.Status, batch.ReceivedDate = deriveInitialStatus(sendDate, f.loc)

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.batchRepo.Save(txCtx, &batch); err != nil {
			return err
		}

		devices := make([]*models.BatchDevice, 0, len(req.Devices))
		for _, d := range req.Devices {
			devices = append(devices, &models.BatchDevice{
				BatchID:      batch.ID,
				DeviceType:   strings.TrimSpace(d.DeviceType),
				DeviceNumber: strings.TrimSpace(d.SerialNumber),
			})
		}
		return f.deviceRepo.SaveBatch(txCtx, devices)
	})
	if err != nil {
		// A concurrent submission can win the race between the pre-check and
		// the insert; the unique index reports it here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			taken, qerr := f.deviceRepo.ExistingSerials(ctx, serials)
			if qerr == nil && len(taken) > 0 {
				return nil, NewDuplicateSerialError(taken)
			}
			return nil, NewDuplicateSerialError(serials)
		}
		return nil, err
	}

	return &dto.CreateBatchResponse{
		Message: "Batch created successfully",
		BatchID: batch.ID,
		Status:  string(batch.Status),
	}, nil
}

// UpdateBatchStatus drives the Pending -> Delivered/Cancelled machine. Both
// target states are terminal; any transition out of a terminal state is
// rejected.
func (f *BatchFlowImpl) UpdateBatchStatus(ctx context.Context, id uint, req *dto.UpdateBatchStatusRequest) (*dto.BatchItem, error) {
	batch, err := f.batchRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}

	today := utils.Today(f.loc)

	switch models.BatchStatus(req.Status) {
	case models.BatchStatusDelivered:
		if !batch.CanReceive() {
			return nil, &StateTransitionError{From: string(batch.Status), To: req.Status}
		}
		batch.Status = models.BatchStatusDelivered
		batch.ReceivedDate = &today
	case models.BatchStatusCancelled:
		if !batch.CanCancel() {
			return nil, &StateTransitionError{From: string(batch.Status), To: req.Status}
		}
		batch.Status = models.BatchStatusCancelled
		batch.CancelledDate = &today
	default:
		return nil, NewBusinessErrorf("INVALID_STATUS", "unknown batch status %q", nil, req.Status)
	}

	if err := f.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}

	item := toBatchItem(batch)
	return &item, nil
}

// UpdateBatch edits a batch's number and send date. The status is not
// re-derived: a Pending batch stays Pending even if the new send date is in
// the past.
func (f *BatchFlowImpl) UpdateBatch(ctx context.Context, id uint, req *dto.UpdateBatchRequest) (*dto.BatchItem, error) {
	if strings.TrimSpace(req.BatchNumber) == "" {
		return nil, ErrBatchNumberRequired
	}
	sendDate, err := parseSendDate(req.SendDate, f.loc)
	if err != nil {
		return nil, err
	}

	batch, err := f.batchRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}

	batch.BatchNumber = strings.TrimSpace(req.BatchNumber)
	batch.SendDate = sendDate

	if err := f.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}

	item := toBatchItem(batch)
	return &item, nil
}

// UpdateBatchDevices rewrites serial numbers for devices inside one batch.
// Every referenced device must belong to the batch and every row must
// actually change; otherwise the whole update rolls back.
func (f *BatchFlowImpl) UpdateBatchDevices(ctx context.Context, id uint, req *dto.UpdateBatchDevicesRequest) (*dto.UpdateBatchDevicesResponse, error) {
	if len(req.Devices) == 0 {
		return nil, ErrDevicesRequired
	}

	ids := make([]uint, 0, len(req.Devices))
	seen := make(map[string]bool, len(req.Devices))
	var repeated []string
	for _, d := range req.Devices {
		serial := strings.TrimSpace(d.SerialNumber)
		if d.DeviceID == 0 || serial == "" {
			return nil, ErrDeviceFieldsRequired
		}
		if seen[serial] {
			repeated = append(repeated, serial)
			continue
		}
		seen[serial] = true
		ids = append(ids, d.DeviceID)
	}
	if len(repeated) > 0 {
		return nil, NewDuplicateSerialError(repeated)
	}

	batch, err := f.batchRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}

	owned, err := f.deviceRepo.IDsInBatch(ctx, id, ids)
	if err != nil {
		return nil, err
	}
	if len(owned) != len(ids) {
		return nil, ErrDevicesNotInBatch
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		for _, d := range req.Devices {
			affected, err := f.deviceRepo.UpdateSerial(txCtx, id, d.DeviceID, strings.TrimSpace(d.SerialNumber))
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrDevicesNotInBatch
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewDuplicateSerialError(serialsOf(req.Devices))
		}
		return nil, err
	}

	return &dto.UpdateBatchDevicesResponse{
		Message: "Batch devices updated successfully",
		Count:   len(req.Devices),
	}, nil
}

// ListBatches returns all batches, most recently sent first.
func (f *BatchFlowImpl) ListBatches(ctx context.Context) (*dto.ListBatchesResponse, error) {
	rows, err := f.batchRepo.ByFilter(ctx, models.BatchFilter{}, "send_date DESC", 0, 0)
	if err != nil {
		return nil, err
	}
	return toListBatchesResponse(rows), nil
}

// ListBatchesBySchool returns one school's batches, optionally restricted to
// a status. Status-filtered lists sort by that status' own date column:
// delivered batches by receipt date, cancelled by cancellation date.
func (f *BatchFlowImpl) ListBatchesBySchool(ctx context.Context, schoolCode string, status *string) (*dto.ListBatchesResponse, error) {
	schoolCode = strings.TrimSpace(schoolCode)
	if schoolCode == "" {
		return nil, ErrSchoolRequired
	}

	filter := models.BatchFilter{SchoolCode: &schoolCode}
	orderBy := "send_date DESC"
	if status != nil {
		s := models.BatchStatus(*status)
		filter.Status = &s
		switch s {
		case models.BatchStatusDelivered:
			orderBy = "received_date DESC"
		case models.BatchStatusCancelled:
			orderBy = "cancelled_date DESC"
		}
	}

	rows, err := f.batchRepo.ByFilter(ctx, filter, orderBy, 0, 0)
	if err != nil {
		return nil, err
	}
	return toListBatchesResponse(rows), nil
}

// ListReceivedBatches returns delivered batches ordered by receipt date.
func (f *BatchFlowImpl) ListReceivedBatches(ctx context.Context) (*dto.ListBatchesResponse, error) {
	rows, err := f.batchRepo.ListReceived(ctx)
	if err != nil {
		return nil, err
	}
	return toListBatchesResponse(rows), nil
}

// ListBatchDevices returns the devices inside one batch.
func (f *BatchFlowImpl) ListBatchDevices(ctx context.Context, batchID uint) (*dto.ListBatchDevicesResponse, error) {
	batch, err := f.batchRepo.ByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}

	rows, err := f.deviceRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.BatchDeviceItem, 0, len(rows))
	for _, d := range rows {
		items = append(items, dto.BatchDeviceItem{
			ID:           d.ID,
			BatchID:      d.BatchID,
			DeviceType:   d.DeviceType,
			DeviceNumber: d.DeviceNumber,
		})
	}

	return &dto.ListBatchDevicesResponse{
		Message: "Batch devices retrieved successfully",
		Items:   items,
	}, nil
}

// NextBatchNumber suggests the next free YYYYMMDD-NNNN number for today.
// This is advisory only; the caller may still submit any number.
func (f *BatchFlowImpl) NextBatchNumber(ctx context.Context) (*dto.NextBatchNumberResponse, error) {
	prefix := utils.Today(f.loc).Format(batchNumberDateLayout)

	latest, err := f.batchRepo.LatestBatchNumber(ctx, prefix+"-")
	if err != nil {
		return nil, err
	}

	next := 1
	if latest != "" {
		if _, suffix, ok := strings.Cut(latest, "-"); ok {
			if n, err := strconv.Atoi(suffix); err == nil {
				next = n + 1
			}
		}
	}

	return &dto.NextBatchNumberResponse{
		NextBatchNumber: fmt.Sprintf("%s-%04d", prefix, next),
	}, nil
}

// deriveInitialStatus back-dates delivery for shipments recorded after the
// fact: a send date strictly before today means the school already has the
// devices, and the receipt date is taken to be the send date.
func deriveInitialStatus(sendDate time.Time, loc *time.Location) (models.BatchStatus, *time.Time) {
	if sendDate.Before(utils.Today(loc)) {
		received := sendDate
		return models.BatchStatusDelivered, &received
	}
	return models.BatchStatusPending, nil
}

func parseSendDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrSendDateRequired
	}
	t, err := time.ParseInLocation(utils.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidSendDate
	}
	return t, nil
}

func serialsOf(devices []dto.BatchDeviceUpdateInput) []string {
	serials := make([]string, 0, len(devices))
	for _, d := range devices {
		serials = append(serials, strings.TrimSpace(d.SerialNumber))
	}
	return serials
}

func toBatchItem(b *models.Batch) dto.BatchItem {
	item := dto.BatchItem{
		ID:          b.ID,
		BatchNumber: b.BatchNumber,
		SchoolCode:  b.SchoolCode,
		SchoolName:  b.SchoolName,
		SendDate:    b.SendDate.Format(utils.DateOnly),
		Status:      string(b.Status),
	}
	if b.ReceivedDate != nil {
		s := b.ReceivedDate.Format(utils.DateOnly)
		item.ReceivedDate = &s
	}
	if b.CancelledDate != nil {
		s := b.CancelledDate.Format(utils.DateOnly)
		item.CancelledDate = &s
	}
	return item
}

func toListBatchesResponse(rows []*models.Batch) *dto.ListBatchesResponse {
	items := make([]dto.BatchItem, 0, len(rows))
	for _, b := range rows {
		items = append(items, toBatchItem(b))
	}
	return &dto.ListBatchesResponse{
		Message: "Batches retrieved successfully",
		Items:   items,
	}
}
