package dto

import "time"

// CreateResetRequestRequest is the public account-reset form payload
type CreateResetRequestRequest struct {
	SelectedType   string `json:"selected_type" validate:"required,max=50"`
	Surname        string `json:"surname" validate:"required,max=100"`
	FirstName      string `json:"first_name" validate:"required,max=100"`
	MiddleName     string `json:"middle_name" validate:"omitempty,max=100"`
	School         string `json:"school" validate:"required,max=255"`
	SchoolID       string `json:"school_id" validate:"required,max=50"`
	EmployeeNumber string `json:"employee_number" validate:"required,max=50"`
	PersonalEmail  string `json:"personal_email" validate:"required,email,max=255"`
	DepEdEmail     string `json:"deped_email" validate:"required,email,max=255"`
}

// CreateResetRequestResponse returns the new row id and its ticket number
type CreateResetRequestResponse struct {
	Message     string `json:"message"`
	RequestID   uint   `json:"request_id"`
	ResetNumber string `json:"reset_number"`
	DepEdEmail  string `json:"deped_email"`
}

// ListResetRequestsRequest carries admin list filters
type ListResetRequestsRequest struct {
	Status    *string    `json:"status,omitempty" validate:"omitempty,oneof=Pending Completed Rejected"`
	School    *string    `json:"school,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Page      uint       `json:"page,omitempty"`
	PageSize  uint       `json:"page_size,omitempty"`
}

// ResetRequestItem is one row in the admin list
type ResetRequestItem struct {
	ID             uint    `json:"id"`
	ResetNumber    string  `json:"reset_number"`
	SelectedType   string  `json:"selected_type"`
	Name           string  `json:"name"`
	School         string  `json:"school"`
	SchoolID       string  `json:"school_id"`
	EmployeeNumber string  `json:"employee_number"`
	ResetEmail     string  `json:"reset_email"`
	DepEdEmail     string  `json:"deped_email"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes,omitempty"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// ListResetRequestsResponse wraps the admin list
type ListResetRequestsResponse struct {
	Message string             `json:"message"`
	Items   []ResetRequestItem `json:"items"`
	Total   int64              `json:"total"`
}

// UpdateResetStatusRequest updates a reset request's status
type UpdateResetStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=Pending Completed Rejected"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
