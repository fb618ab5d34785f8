package handlers

import (
	"github.com/depedsdo/portal/app/dto"
	"github.com/depedsdo/portal/app/middleware"
	businessflow "github.com/depedsdo/portal/business_flow"
	"github.com/depedsdo/portal/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ResetRequestHandlerInterface defines the contract for reset request handlers
type ResetRequestHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// ResetRequestHandler handles reset-request HTTP requests
type ResetRequestHandler struct {
	flow      businessflow.ResetRequestFlow
	validator *validator.Validate
}

// NewResetRequestHandler creates a new reset request handler
func NewResetRequestHandler(flow businessflow.ResetRequestFlow) *ResetRequestHandler {
	return &ResetRequestHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Create handles POST /api/v1/reset-request
func (h *ResetRequestHandler) Create(c fiber.Ctx) error {
	var req dto.CreateResetRequestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateResetRequest(createRequestContext(c, "/api/v1/reset-request"), &req, metadata)
	if err != nil {
		if err == businessflow.ErrDepEdEmailRequired {
			return errorResponse(c, fiber.StatusBadRequest, "A valid @deped.gov.ph email is required", "INVALID_DEPED_EMAIL", nil)
		}
		if businessflow.IsTicketSequenceExhausted(err) {
			return errorResponse(c, fiber.StatusConflict, "Daily request limit reached, please try again tomorrow", "SEQUENCE_EXHAUSTED", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok {
			return errorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to submit reset request", "CREATE_RESET_REQUEST_FAILED", nil)
	}

	middleware.RecordTicketIssued(models.TicketTypeReset)
	return successResponse(c, fiber.StatusCreated, result.Message, result)
}

// List handles GET /api/v1/reset-requests
func (h *ResetRequestHandler) List(c fiber.Ctx) error {
	shared, err := parseListFilters(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid filter parameters", "INVALID_FILTERS", err.Error())
	}
	req := &dto.ListResetRequestsRequest{
		Status:    shared.Status,
		School:    shared.School,
		StartDate: shared.StartDate,
		EndDate:   shared.EndDate,
		Page:      shared.Page,
		PageSize:  shared.PageSize,
	}

	result, err := h.flow.ListResetRequests(createRequestContext(c, "/api/v1/reset-requests"), req)
	if err != nil {
		if err == businessflow.ErrStartDateAfterEndDate || err == businessflow.ErrInvalidPageSize {
			return errorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_FILTERS", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list reset requests", "LIST_RESET_REQUESTS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// UpdateStatus handles PUT /api/v1/reset-requests/:id
func (h *ResetRequestHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request ID", "INVALID_ID", nil)
	}

	var req dto.UpdateResetStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	if err := h.flow.UpdateStatus(createRequestContext(c, "/api/v1/reset-requests/:id"), id, &req); err != nil {
		if businessflow.IsResetRequestNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Reset request not found", "RESET_REQUEST_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update reset request", "UPDATE_RESET_REQUEST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Reset request updated successfully", nil)
}

// Delete handles DELETE /api/v1/reset-requests/:id
func (h *ResetRequestHandler) Delete(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request ID", "INVALID_ID", nil)
	}

	if err := h.flow.DeleteResetRequest(createRequestContext(c, "/api/v1/reset-requests/:id"), id); err != nil {
		if businessflow.IsResetRequestNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Reset request not found", "RESET_REQUEST_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete reset request", "DELETE_RESET_REQUEST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Reset request deleted successfully", nil)
}
