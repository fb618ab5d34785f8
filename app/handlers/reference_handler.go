package handlers

import (
	businessflow "github.com/depedsdo/portal/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ReferenceHandlerInterface defines the contract for reference data handlers
type ReferenceHandlerInterface interface {
	ListSchools(c fiber.Ctx) error
	ListDesignations(c fiber.Ctx) error
	ListDevices(c fiber.Ctx) error
	AddDevice(c fiber.Ctx) error
	RemoveDevice(c fiber.Ctx) error
}

// ReferenceHandler serves dropdown data for the public forms and admin screens
type ReferenceHandler struct {
	flow      businessflow.ReferenceFlow
	validator *validator.Validate
}

// NewReferenceHandler creates a new reference data handler
func NewReferenceHandler(flow businessflow.ReferenceFlow) *ReferenceHandler {
	return &ReferenceHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ListSchools handles GET /api/v1/schools
func (h *ReferenceHandler) ListSchools(c fiber.Ctx) error {
	var district *string
	if s := c.Query("district"); s != "" {
		district = &s
	}

	rows, err := h.flow.ListSchools(createRequestContext(c, "/api/v1/schools"), district)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list schools", "LIST_SCHOOLS_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Schools retrieved successfully", rows)
}

// ListDesignations handles GET /api/v1/designations
func (h *ReferenceHandler) ListDesignations(c fiber.Ctx) error {
	rows, err := h.flow.ListDesignations(createRequestContext(c, "/api/v1/designations"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list designations", "LIST_DESIGNATIONS_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Designations retrieved successfully", rows)
}

// ListDevices handles GET /api/v1/devices
func (h *ReferenceHandler) ListDevices(c fiber.Ctx) error {
	rows, err := h.flow.ListDevices(createRequestContext(c, "/api/v1/devices"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list devices", "LIST_DEVICES_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Devices retrieved successfully", rows)
}

// deviceNameRequest is the body for catalog add/remove
type deviceNameRequest struct {
	DeviceName string `json:"device_name" validate:"required,max=100"`
}

// AddDevice handles POST /api/v1/devices
func (h *ReferenceHandler) AddDevice(c fiber.Ctx) error {
	var req deviceNameRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	device, err := h.flow.AddDevice(createRequestContext(c, "/api/v1/devices"), req.DeviceName)
	if err != nil {
		if err == businessflow.ErrDeviceNameRequired {
			return errorResponse(c, fiber.StatusBadRequest, "Device name is required", "DEVICE_NAME_REQUIRED", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to add device", "ADD_DEVICE_FAILED", nil)
	}
	return successResponse(c, fiber.StatusCreated, "Device added successfully", device)
}

// RemoveDevice handles DELETE /api/v1/devices/:name
func (h *ReferenceHandler) RemoveDevice(c fiber.Ctx) error {
	name := c.Params("name")

	if err := h.flow.RemoveDevice(createRequestContext(c, "/api/v1/devices"), name); err != nil {
		if businessflow.IsDeviceNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Device not found", "DEVICE_NOT_FOUND", nil)
		}
		if err == businessflow.ErrDeviceNameRequired {
			return errorResponse(c, fiber.StatusBadRequest, "Device name is required", "DEVICE_NAME_REQUIRED", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to remove device", "REMOVE_DEVICE_FAILED", nil)
	}
	return successResponse(c, fiber.StatusOK, "Device removed successfully", nil)
}
