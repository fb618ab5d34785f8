package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depedsdo/portal/app/dto"
	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
	"github.com/depedsdo/portal/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AccountRequestFlow defines operations for account creation requests
type AccountRequestFlow interface {
	CreateRequest(ctx context.Context, req *dto.CreateAccountRequestRequest, metadata *ClientMetadata) (*dto.CreateAccountRequestResponse, error)
	ListRequests(ctx context.Context, req *dto.ListAccountRequestsRequest) (*dto.ListAccountRequestsResponse, error)
	UpdateStatus(ctx context.Context, id uint, req *dto.UpdateRequestStatusRequest) error
	DeleteRequest(ctx context.Context, id uint) error
	ExportRequests(ctx context.Context, req *dto.ListAccountRequestsRequest) (string, []byte, error)
}

// AccountRequestFlowImpl implements AccountRequestFlow
type AccountRequestFlowImpl struct {
	db          *gorm.DB
	requestRepo repository.AccountRequestRepository
	counterRepo repository.TicketCounterRepository
	loc         *time.Location
}

func NewAccountRequestFlow(db *gorm.DB, requestRepo repository.AccountRequestRepository, counterRepo repository.TicketCounterRepository, loc *time.Location) AccountRequestFlow {
	return &AccountRequestFlowImpl{db: db, requestRepo: requestRepo, counterRepo: counterRepo, loc: loc}
}

// CreateRequest mints a request number and inserts the submission in one
// transaction. If the insert fails the minted number is never issued.
func (f *AccountRequestFlowImpl) CreateRequest(ctx context.Context, req *dto.CreateAccountRequestRequest, metadata *ClientMetadata) (*dto.CreateAccountRequestResponse, error) {
	if strings.TrimSpace(req.Surname) == "" || strings.TrimSpace(req.FirstName) == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "surname and first name are required", nil)
	}
	if strings.TrimSpace(req.School) == "" || strings.TrimSpace(req.SchoolID) == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "school and school ID are required", nil)
	}

	request := models.AccountRequest{
		SelectedType:      strings.TrimSpace(req.SelectedType),
		Name:              composeFullName(req.Surname, req.FirstName, req.MiddleName),
		Surname:           strings.TrimSpace(req.Surname),
		FirstName:         strings.TrimSpace(req.FirstName),
		MiddleName:        strings.TrimSpace(req.MiddleName),
		Designation:       strings.TrimSpace(req.Designation),
		School:            strings.TrimSpace(req.School),
		SchoolID:          strings.TrimSpace(req.SchoolID),
		PersonalGmail:     strings.TrimSpace(req.PersonalGmail),
		ProofOfIdentity:   req.ProofOfIdentity,
		PRCID:             req.PRCID,
		EndorsementLetter: req.EndorsementLetter,
		Status:            models.RequestStatusPending,
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		number, err := mintTicketNumber(txCtx, f.counterRepo, models.TicketTypeRequest, f.loc)
		if err != nil {
			return err
		}
		request.RequestNumber = number

		return f.requestRepo.Save(txCtx, &request)
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateAccountRequestResponse{
		Message:       "Account request submitted successfully",
		RequestID:     request.ID,
		RequestNumber: request.RequestNumber,
	}, nil
}

// ListRequests returns requests matching the filters, oldest first.
func (f *AccountRequestFlowImpl) ListRequests(ctx context.Context, req *dto.ListAccountRequestsRequest) (*dto.ListAccountRequestsResponse, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	limit, offset, err := listWindow(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.AccountRequestFilter{
		Status:        req.Status,
		School:        req.School,
		CreatedAfter:  req.StartDate,
		CreatedBefore: req.EndDate,
	}

	rows, err := f.requestRepo.ByFilter(ctx, filter, "created_at ASC", limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := f.requestRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AccountRequestItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.AccountRequestItem{
			ID:            r.ID,
			RequestNumber: r.RequestNumber,
			SelectedType:  r.SelectedType,
			Name:          r.Name,
			Designation:   r.Designation,
			School:        r.School,
			SchoolID:      r.SchoolID,
			PersonalGmail: r.PersonalGmail,
			Status:        r.Status,
			RejectReason:  r.RejectReason,
			CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return &dto.ListAccountRequestsResponse{
		Message: "Requests retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// UpdateStatus moves a request to a new status. A reject reason is kept only
// for Rejected and cleared otherwise.
func (f *AccountRequestFlowImpl) UpdateStatus(ctx context.Context, id uint, req *dto.UpdateRequestStatusRequest) error {
	switch req.Status {
	case models.RequestStatusPending, models.RequestStatusCompleted, models.RequestStatusRejected:
	default:
		return ErrInvalidRequestStatus
	}

	updated, err := f.requestRepo.UpdateStatus(ctx, id, req.Status, req.RejectReason)
	if err != nil {
		return err
	}
	if !updated {
		return ErrAccountRequestNotFound
	}
	return nil
}

// DeleteRequest soft-deletes a request. Deleted rows keep their ticket
// number, so the sequence stays gap-free from the allocator's point of view.
func (f *AccountRequestFlowImpl) DeleteRequest(ctx context.Context, id uint) error {
	deleted, err := f.requestRepo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAccountRequestNotFound
	}
	return nil
}

// ExportRequests writes all matching requests to an Excel workbook.
func (f *AccountRequestFlowImpl) ExportRequests(ctx context.Context, req *dto.ListAccountRequestsRequest) (string, []byte, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return "", nil, err
	}

	filter := models.AccountRequestFilter{
		Status:        req.Status,
		School:        req.School,
		CreatedAfter:  req.StartDate,
		CreatedBefore: req.EndDate,
	}

	rows, err := f.requestRepo.ByFilter(ctx, filter, "created_at ASC", 0, 0)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Account Requests"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"request_number", "type", "name", "designation", "school", "school_id", "personal_gmail", "status", "reject_reason", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, r := range rows {
		reason := ""
		if r.RejectReason != nil {
			reason = *r.RejectReason
		}
		record := []string{
			r.RequestNumber,
			r.SelectedType,
			r.Name,
			r.Designation,
			r.School,
			r.SchoolID,
			r.PersonalGmail,
			r.Status,
			reason,
			r.CreatedAt.In(f.loc).Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("account_requests_%s.xlsx", utils.Today(f.loc).Format(utils.DateOnly))
	return filename, buf.Bytes(), nil
}

// composeFullName joins name parts the way the admin screens display them.
func composeFullName(surname, firstName, middleName string) string {
	surname = strings.TrimSpace(surname)
	firstName = strings.TrimSpace(firstName)
	middleName = strings.TrimSpace(middleName)
	if middleName == "" {
		return fmt.Sprintf("%s, %s", surname, firstName)
	}
	return fmt.Sprintf("%s, %s %s", surname, firstName, middleName)
}
