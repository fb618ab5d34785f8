package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/depedsdo/portal/app/dto"
	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
	"github.com/depedsdo/portal/utils"
	"gorm.io/gorm"
)

const depedEmailSuffix = "@deped.gov.ph"

// ResetRequestFlow defines operations for account reset requests
type ResetRequestFlow interface {
	CreateResetRequest(ctx context.Context, req *dto.CreateResetRequestRequest, metadata *ClientMetadata) (*dto.CreateResetRequestResponse, error)
	ListResetRequests(ctx context.Context, req *dto.ListResetRequestsRequest) (*dto.ListResetRequestsResponse, error)
	UpdateStatus(ctx context.Context, id uint, req *dto.UpdateResetStatusRequest) error
	DeleteResetRequest(ctx context.Context, id uint) error
}

// ResetRequestFlowImpl implements ResetRequestFlow
type ResetRequestFlowImpl struct {
	db          *gorm.DB
	resetRepo   repository.ResetRequestRepository
	counterRepo repository.TicketCounterRepository
	loc         *time.Location
}

func NewResetRequestFlow(db *gorm.DB, resetRepo repository.ResetRequestRepository, counterRepo repository.TicketCounterRepository, loc *time.Location) ResetRequestFlow {
	return &ResetRequestFlowImpl{db: db, resetRepo: resetRepo, counterRepo: counterRepo, loc: loc}
}

// CreateResetRequest mints a reset number and inserts the submission in one
// transaction. Reset tickets draw from their own (day, RST) bucket, so they
// never interleave with account request numbers.
func (f *ResetRequestFlowImpl) CreateResetRequest(ctx context.Context, req *dto.CreateResetRequestRequest, metadata *ClientMetadata) (*dto.CreateResetRequestResponse, error) {
	if strings.TrimSpace(req.Surname) == "" || strings.TrimSpace(req.FirstName) == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "surname and first name are required", nil)
	}
	depedEmail := strings.ToLower(strings.TrimSpace(req.DepEdEmail))
	if !strings.HasSuffix(depedEmail, depedEmailSuffix) {
		return nil, ErrDepEdEmailRequired
	}

	request := models.ResetRequest{
		SelectedType:   strings.TrimSpace(req.SelectedType),
		Name:           composeFullName(req.Surname, req.FirstName, req.MiddleName),
		Surname:        strings.TrimSpace(req.Surname),
		FirstName:      strings.TrimSpace(req.FirstName),
		MiddleName:     strings.TrimSpace(req.MiddleName),
		School:         strings.TrimSpace(req.School),
		SchoolID:       strings.TrimSpace(req.SchoolID),
		EmployeeNumber: strings.TrimSpace(req.EmployeeNumber),
		ResetEmail:     strings.TrimSpace(req.PersonalEmail),
		DepEdEmail:     depedEmail,
		Status:         models.RequestStatusPending,
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		number, err := mintTicketNumber(txCtx, f.counterRepo, models.TicketTypeReset, f.loc)
		if err != nil {
			return err
		}
		request.ResetNumber = number

		return f.resetRepo.Save(txCtx, &request)
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateResetRequestResponse{
		Message:     "Reset request submitted successfully",
		RequestID:   request.ID,
		ResetNumber: request.ResetNumber,
		DepEdEmail:  request.DepEdEmail,
	}, nil
}

// ListResetRequests returns reset requests matching the filters, oldest first.
func (f *ResetRequestFlowImpl) ListResetRequests(ctx context.Context, req *dto.ListResetRequestsRequest) (*dto.ListResetRequestsResponse, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	limit, offset, err := listWindow(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.ResetRequestFilter{
		Status:        req.Status,
		School:        req.School,
		CreatedAfter:  req.StartDate,
		CreatedBefore: req.EndDate,
	}

	rows, err := f.resetRepo.ByFilter(ctx, filter, "created_at ASC", limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := f.resetRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ResetRequestItem, 0, len(rows))
	for _, r := range rows {
		var completedAt *string
		if r.CompletedAt != nil {
			s := r.CompletedAt.UTC().Format(time.RFC3339)
			completedAt = &s
		}
		items = append(items, dto.ResetRequestItem{
			ID:             r.ID,
			ResetNumber:    r.ResetNumber,
			SelectedType:   r.SelectedType,
			Name:           r.Name,
			School:         r.School,
			SchoolID:       r.SchoolID,
			EmployeeNumber: r.EmployeeNumber,
			ResetEmail:     r.ResetEmail,
			DepEdEmail:     r.DepEdEmail,
			Status:         r.Status,
			Notes:          r.Notes,
			CompletedAt:    completedAt,
			CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return &dto.ListResetRequestsResponse{
		Message: "Reset requests retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// UpdateStatus moves a reset request to a new status. The completion
// timestamp is stamped when the status becomes Completed and cleared for any
// other status.
func (f *ResetRequestFlowImpl) UpdateStatus(ctx context.Context, id uint, req *dto.UpdateResetStatusRequest) error {
	switch req.Status {
	case models.RequestStatusPending, models.RequestStatusCompleted, models.RequestStatusRejected:
	default:
		return ErrInvalidRequestStatus
	}

	var completedAt *time.Time
	if req.Status == models.RequestStatusCompleted {
		completedAt = utils.UTCNowPtr()
	}

	updated, err := f.resetRepo.UpdateStatus(ctx, id, req.Status, req.Notes, completedAt)
	if err != nil {
		return err
	}
	if !updated {
		return ErrResetRequestNotFound
	}
	return nil
}

// DeleteResetRequest soft-deletes a reset request.
func (f *ResetRequestFlowImpl) DeleteResetRequest(ctx context.Context, id uint) error {
	deleted, err := f.resetRepo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrResetRequestNotFound
	}
	return nil
}
