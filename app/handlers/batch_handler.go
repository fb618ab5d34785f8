package handlers

import (
	"errors"

	"github.com/depedsdo/portal/app/dto"
	businessflow "github.com/depedsdo/portal/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// BatchHandlerInterface defines the contract for batch handlers
type BatchHandlerInterface interface {
	Create(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	UpdateDevices(c fiber.Ctx) error
	List(c fiber.Ctx) error
	ListBySchool(c fiber.Ctx) error
	ListReceived(c fiber.Ctx) error
	ListDevices(c fiber.Ctx) error
	NextNumber(c fiber.Ctx) error
}

// BatchHandler handles device shipment batch HTTP requests
type BatchHandler struct {
	flow      businessflow.BatchFlow
	validator *validator.Validate
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(flow businessflow.BatchFlow) *BatchHandler {
	return &BatchHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Create handles POST /api/v1/batch
func (h *BatchHandler) Create(c fiber.Ctx) error {
	var req dto.CreateBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateBatch(createRequestContext(c, "/api/v1/batch"), &req, metadata)
	if err != nil {
		return h.batchErrorResponse(c, err, "CREATE_BATCH_FAILED", "Failed to create batch")
	}

	return successResponse(c, fiber.StatusCreated, result.Message, result)
}

// UpdateStatus handles PUT /api/v1/batch/:id/status
func (h *BatchHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", "INVALID_ID", nil)
	}

	var req dto.UpdateBatchStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.flow.UpdateBatchStatus(createRequestContext(c, "/api/v1/batch/:id/status"), id, &req)
	if err != nil {
		return h.batchErrorResponse(c, err, "UPDATE_BATCH_STATUS_FAILED", "Failed to update batch status")
	}

	return successResponse(c, fiber.StatusOK, "Batch status updated successfully", result)
}

// Update handles PUT /api/v1/batch/:id
func (h *BatchHandler) Update(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", "INVALID_ID", nil)
	}

	var req dto.UpdateBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.flow.UpdateBatch(createRequestContext(c, "/api/v1/batch/:id"), id, &req)
	if err != nil {
		return h.batchErrorResponse(c, err, "UPDATE_BATCH_FAILED", "Failed to update batch")
	}

	return successResponse(c, fiber.StatusOK, "Batch updated successfully", result)
}

// UpdateDevices handles PUT /api/v1/batch/:id/devices
func (h *BatchHandler) UpdateDevices(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", "INVALID_ID", nil)
	}

	var req dto.UpdateBatchDevicesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.flow.UpdateBatchDevices(createRequestContext(c, "/api/v1/batch/:id/devices"), id, &req)
	if err != nil {
		return h.batchErrorResponse(c, err, "UPDATE_BATCH_DEVICES_FAILED", "Failed to update batch devices")
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// List handles GET /api/v1/batches
func (h *BatchHandler) List(c fiber.Ctx) error {
	result, err := h.flow.ListBatches(createRequestContext(c, "/api/v1/batches"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list batches", "LIST_BATCHES_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ListBySchool handles GET /api/v1/batches/school/:schoolCode
func (h *BatchHandler) ListBySchool(c fiber.Ctx) error {
	schoolCode := c.Params("schoolCode")

	var status *string
	if s := c.Query("status"); s != "" {
		status = &s
	}

	result, err := h.flow.ListBatchesBySchool(createRequestContext(c, "/api/v1/batches/school/:schoolCode"), schoolCode, status)
	if err != nil {
		if err == businessflow.ErrSchoolRequired {
			return errorResponse(c, fiber.StatusBadRequest, "School code is required", "SCHOOL_CODE_REQUIRED", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list batches", "LIST_BATCHES_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ListReceived handles GET /api/v1/batches/received
func (h *BatchHandler) ListReceived(c fiber.Ctx) error {
	result, err := h.flow.ListReceivedBatches(createRequestContext(c, "/api/v1/batches/received"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list received batches", "LIST_RECEIVED_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// ListDevices handles GET /api/v1/batch/:id/devices
func (h *BatchHandler) ListDevices(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid batch ID", "INVALID_ID", nil)
	}

	result, err := h.flow.ListBatchDevices(createRequestContext(c, "/api/v1/batch/:id/devices"), id)
	if err != nil {
		return h.batchErrorResponse(c, err, "LIST_BATCH_DEVICES_FAILED", "Failed to list batch devices")
	}
	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// NextNumber handles GET /api/v1/batches/next-number
func (h *BatchHandler) NextNumber(c fiber.Ctx) error {
	result, err := h.flow.NextBatchNumber(createRequestContext(c, "/api/v1/batches/next-number"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to compute next batch number", "NEXT_NUMBER_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Next batch number computed", result)
}

// batchErrorResponse maps batch flow errors onto HTTP statuses.
func (h *BatchHandler) batchErrorResponse(c fiber.Ctx, err error, fallbackCode, fallbackMessage string) error {
	switch {
	case businessflow.IsBatchNotFound(err):
		return errorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
	case businessflow.IsDuplicateSerial(err):
		var dup *businessflow.DuplicateSerialError
		errors.As(err, &dup)
		return errorResponse(c, fiber.StatusConflict, "Duplicate device serial numbers", "DUPLICATE_SERIALS", dup.Serials)
	case businessflow.IsStateTransition(err):
		return errorResponse(c, fiber.StatusConflict, err.Error(), "INVALID_TRANSITION", nil)
	case businessflow.IsDevicesNotInBatch(err):
		return errorResponse(c, fiber.StatusBadRequest, "One or more devices do not belong to this batch", "DEVICES_NOT_IN_BATCH", nil)
	case err == businessflow.ErrBatchNumberRequired,
		err == businessflow.ErrSendDateRequired,
		err == businessflow.ErrInvalidSendDate,
		err == businessflow.ErrSchoolRequired,
		err == businessflow.ErrDevicesRequired,
		err == businessflow.ErrDeviceFieldsRequired:
		return errorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	}

	if be, ok := err.(*businessflow.BusinessError); ok {
		return errorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
	}
	return errorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}
