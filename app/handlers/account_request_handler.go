package handlers

import (
	"strconv"
	"time"

	"github.com/depedsdo/portal/app/dto"
	"github.com/depedsdo/portal/app/middleware"
	businessflow "github.com/depedsdo/portal/business_flow"
	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AccountRequestHandlerInterface defines the contract for account request handlers
type AccountRequestHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Export(c fiber.Ctx) error
	CheckTransaction(c fiber.Ctx) error
}

// AccountRequestHandler handles account-request HTTP requests
type AccountRequestHandler struct {
	flow       businessflow.AccountRequestFlow
	lookupFlow businessflow.TransactionLookupFlow
	validator  *validator.Validate
}

// NewAccountRequestHandler creates a new account request handler
func NewAccountRequestHandler(flow businessflow.AccountRequestFlow, lookupFlow businessflow.TransactionLookupFlow) *AccountRequestHandler {
	return &AccountRequestHandler{
		flow:       flow,
		lookupFlow: lookupFlow,
		validator:  validator.New(),
	}
}

// Create handles POST /api/v1/request
func (h *AccountRequestHandler) Create(c fiber.Ctx) error {
	var req dto.CreateAccountRequestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateRequest(createRequestContext(c, "/api/v1/request"), &req, metadata)
	if err != nil {
		if businessflow.IsTicketSequenceExhausted(err) {
			return errorResponse(c, fiber.StatusConflict, "Daily request limit reached, please try again tomorrow", "SEQUENCE_EXHAUSTED", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok {
			return errorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to submit request", "CREATE_REQUEST_FAILED", nil)
	}

	middleware.RecordTicketIssued(models.TicketTypeRequest)
	return successResponse(c, fiber.StatusCreated, result.Message, result)
}

// List handles GET /api/v1/requests
func (h *AccountRequestHandler) List(c fiber.Ctx) error {
	req, err := parseListFilters(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid filter parameters", "INVALID_FILTERS", err.Error())
	}

	result, err := h.flow.ListRequests(createRequestContext(c, "/api/v1/requests"), req)
	if err != nil {
		if err == businessflow.ErrStartDateAfterEndDate || err == businessflow.ErrInvalidPageSize {
			return errorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_FILTERS", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to list requests", "LIST_REQUESTS_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, result.Message, result)
}

// UpdateStatus handles PUT /api/v1/requests/:id
func (h *AccountRequestHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request ID", "INVALID_ID", nil)
	}

	var req dto.UpdateRequestStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	if err := h.flow.UpdateStatus(createRequestContext(c, "/api/v1/requests/:id"), id, &req); err != nil {
		if businessflow.IsAccountRequestNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Request not found", "REQUEST_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update request", "UPDATE_REQUEST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Request updated successfully", nil)
}

// Delete handles DELETE /api/v1/requests/:id
func (h *AccountRequestHandler) Delete(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request ID", "INVALID_ID", nil)
	}

	if err := h.flow.DeleteRequest(createRequestContext(c, "/api/v1/requests/:id"), id); err != nil {
		if businessflow.IsAccountRequestNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Request not found", "REQUEST_NOT_FOUND", nil)
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete request", "DELETE_REQUEST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Request deleted successfully", nil)
}

// Export handles GET /api/v1/requests/export
func (h *AccountRequestHandler) Export(c fiber.Ctx) error {
	req, err := parseListFilters(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid filter parameters", "INVALID_FILTERS", err.Error())
	}

	filename, content, err := h.flow.ExportRequests(createRequestContext(c, "/api/v1/requests/export"), req)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to export requests", "EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

// CheckTransaction handles GET /api/v1/check-transaction?number=
func (h *AccountRequestHandler) CheckTransaction(c fiber.Ctx) error {
	number := c.Query("number")

	result, err := h.lookupFlow.CheckTransaction(createRequestContext(c, "/api/v1/check-transaction"), number)
	if err != nil {
		switch {
		case err == businessflow.ErrTicketNumberRequired:
			return errorResponse(c, fiber.StatusBadRequest, "Ticket number is required", "NUMBER_REQUIRED", nil)
		case businessflow.IsInvalidTicketNumber(err):
			return errorResponse(c, fiber.StatusBadRequest, "Ticket number format is not recognized", "INVALID_NUMBER", nil)
		case businessflow.IsTicketNotFound(err):
			return errorResponse(c, fiber.StatusNotFound, "No request found for this ticket number", "TICKET_NOT_FOUND", nil)
		default:
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to check transaction", "CHECK_TRANSACTION_FAILED", nil)
		}
	}

	return successResponse(c, fiber.StatusOK, "Transaction found", result)
}

// parseIDParam reads the :id route parameter.
func parseIDParam(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

// parseListFilters reads the shared admin list query parameters.
func parseListFilters(c fiber.Ctx) (*dto.ListAccountRequestsRequest, error) {
	req := &dto.ListAccountRequestsRequest{}

	if s := c.Query("status"); s != "" {
		req.Status = &s
	}
	if s := c.Query("school"); s != "" {
		req.School = &s
	}
	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(utils.DateOnly, s)
		if err != nil {
			return nil, err
		}
		req.StartDate = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(utils.DateOnly, s)
		if err != nil {
			return nil, err
		}
		// Include the whole end day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		req.EndDate = &t
	}
	if s := c.Query("page"); s != "" {
		page, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Page = uint(page)
	}
	if s := c.Query("page_size"); s != "" {
		size, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, err
		}
		req.PageSize = uint(size)
	}

	return req, nil
}
