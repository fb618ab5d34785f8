package businessflow

import (
	"context"
	"regexp"
	"strings"

	"github.com/depedsdo/portal/app/dto"
	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
)

// legacyRequestNumberRe matches pre-migration request numbers (YYYYMMDD-NN).
var legacyRequestNumberRe = regexp.MustCompile(`^\d{8}-\d{2}$`)

// TransactionLookupFlow resolves a ticket number to its request status. This
// is the public "check my transaction" endpoint, so it works for both ticket
// shapes and never exposes more than status and notes.
type TransactionLookupFlow interface {
	CheckTransaction(ctx context.Context, number string) (*dto.CheckTransactionResponse, error)
}

// TransactionLookupFlowImpl implements TransactionLookupFlow
type TransactionLookupFlowImpl struct {
	requestRepo repository.AccountRequestRepository
	resetRepo   repository.ResetRequestRepository
}

func NewTransactionLookupFlow(requestRepo repository.AccountRequestRepository, resetRepo repository.ResetRequestRepository) TransactionLookupFlow {
	return &TransactionLookupFlowImpl{requestRepo: requestRepo, resetRepo: resetRepo}
}

// CheckTransaction routes the lookup by ticket prefix. Lookups are reads
// only; checking a ticket any number of times never changes its state.
func (f *TransactionLookupFlowImpl) CheckTransaction(ctx context.Context, number string) (*dto.CheckTransactionResponse, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, ErrTicketNumberRequired
	}

	switch {
	case strings.HasPrefix(number, models.TicketTypeReset+"-"):
		return f.lookupReset(ctx, number)
	case strings.HasPrefix(number, models.TicketTypeRequest+"-"), legacyRequestNumberRe.MatchString(number):
		return f.lookupRequest(ctx, number)
	default:
		return nil, ErrInvalidTicketNumber
	}
}

func (f *TransactionLookupFlowImpl) lookupRequest(ctx context.Context, number string) (*dto.CheckTransactionResponse, error) {
	row, err := f.requestRepo.ByRequestNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrTicketNotFound
	}

	return &dto.CheckTransactionResponse{
		Number: row.RequestNumber,
		Name:   row.Name,
		School: row.School,
		Status: row.Status,
		Notes:  row.RejectReason,
	}, nil
}

func (f *TransactionLookupFlowImpl) lookupReset(ctx context.Context, number string) (*dto.CheckTransactionResponse, error) {
	row, err := f.resetRepo.ByResetNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrTicketNotFound
	}

	return &dto.CheckTransactionResponse{
		Number: row.ResetNumber,
		Name:   row.Name,
		School: row.School,
		Status: row.Status,
		Notes:  row.Notes,
	}, nil
}
