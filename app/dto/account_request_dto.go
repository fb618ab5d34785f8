// Package dto contains request and response payloads for the API endpoints
package dto

import "time"

// CreateAccountRequestRequest is the public account-request form payload.
// Document fields carry stored file references; upload handling itself is
// outside this service.
type CreateAccountRequestRequest struct {
	SelectedType  string `json:"selected_type" validate:"required,max=50"`
	Surname       string `json:"surname" validate:"required,max=100"`
	FirstName     string `json:"first_name" validate:"required,max=100"`
	MiddleName    string `json:"middle_name" validate:"omitempty,max=100"`
	Designation   string `json:"designation" validate:"required,max=100"`
	School        string `json:"school" validate:"required,max=255"`
	SchoolID      string `json:"school_id" validate:"required,max=50"`
	PersonalGmail string `json:"personal_gmail" validate:"required,email,max=255"`

	ProofOfIdentity   string `json:"proof_of_identity" validate:"required,max=255"`
	PRCID             string `json:"prc_id" validate:"required,max=255"`
	EndorsementLetter string `json:"endorsement_letter" validate:"required,max=255"`
}

// CreateAccountRequestResponse returns the new row id and its ticket number
type CreateAccountRequestResponse struct {
	Message       string `json:"message"`
	RequestID     uint   `json:"request_id"`
	RequestNumber string `json:"request_number"`
}

// ListAccountRequestsRequest carries admin list filters
type ListAccountRequestsRequest struct {
	Status    *string    `json:"status,omitempty" validate:"omitempty,oneof=Pending Completed Rejected"`
	School    *string    `json:"school,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Page      uint       `json:"page,omitempty"`
	PageSize  uint       `json:"page_size,omitempty"`
}

// AccountRequestItem is one row in the admin list
type AccountRequestItem struct {
	ID            uint    `json:"id"`
	RequestNumber string  `json:"request_number"`
	SelectedType  string  `json:"selected_type"`
	Name          string  `json:"name"`
	Designation   string  `json:"designation"`
	School        string  `json:"school"`
	SchoolID      string  `json:"school_id"`
	PersonalGmail string  `json:"personal_gmail"`
	Status        string  `json:"status"`
	RejectReason  *string `json:"reject_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ListAccountRequestsResponse wraps the admin list
type ListAccountRequestsResponse struct {
	Message string               `json:"message"`
	Items   []AccountRequestItem `json:"items"`
	Total   int64                `json:"total"`
}

// UpdateRequestStatusRequest updates an account request's status
type UpdateRequestStatusRequest struct {
	Status       string  `json:"status" validate:"required,oneof=Pending Completed Rejected"`
	RejectReason *string `json:"reject_reason,omitempty" validate:"omitempty,max=1000"`
}

// CheckTransactionResponse is the public status-lookup result for either
// ticket shape
type CheckTransactionResponse struct {
	Number string  `json:"number"`
	Name   string  `json:"name"`
	School string  `json:"school"`
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}
