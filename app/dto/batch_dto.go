package dto

// BatchDeviceInput is one device in a batch-creation payload
type BatchDeviceInput struct {
	DeviceType   string `json:"device_type" validate:"required,max=100"`
	SerialNumber string `json:"serial_number" validate:"required,max=100"`
}

// CreateBatchRequest registers a shipment together with its devices
type CreateBatchRequest struct {
	BatchNumber string             `json:"batch_number" validate:"required,max=32"`
	SendDate    string             `json:"send_date" validate:"required"` // YYYY-MM-DD
	SchoolCode  string             `json:"school_code" validate:"required,max=50"`
	SchoolName  string             `json:"school_name" validate:"required,max=255"`
	Devices     []BatchDeviceInput `json:"devices" validate:"required,min=1,dive"`
}

// CreateBatchResponse returns the new batch id and its derived status
type CreateBatchResponse struct {
	Message string `json:"message"`
	BatchID uint   `json:"batch_id"`
	Status  string `json:"status"`
}

// UpdateBatchStatusRequest drives the Pending -> Delivered/Cancelled machine
type UpdateBatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Delivered Cancelled"`
}

// UpdateBatchRequest edits a batch's number and send date
type UpdateBatchRequest struct {
	BatchNumber string `json:"batch_number" validate:"required,max=32"`
	SendDate    string `json:"send_date" validate:"required"` // YYYY-MM-DD
}

// BatchDeviceUpdateInput is one serial correction in a bulk device update
type BatchDeviceUpdateInput struct {
	DeviceID     uint   `json:"device_id" validate:"required"`
	SerialNumber string `json:"serial_number" validate:"required,max=100"`
}

// UpdateBatchDevicesRequest applies serial corrections to one batch's devices
type UpdateBatchDevicesRequest struct {
	Devices []BatchDeviceUpdateInput `json:"devices" validate:"required,min=1,dive"`
}

// UpdateBatchDevicesResponse reports how many rows were rewritten
type UpdateBatchDevicesResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// BatchItem is one shipment row in list responses
type BatchItem struct {
	ID            uint    `json:"id"`
	BatchNumber   string  `json:"batch_number"`
	SchoolCode    string  `json:"school_code"`
	SchoolName    string  `json:"school_name"`
	SendDate      string  `json:"send_date"`
	Status        string  `json:"status"`
	ReceivedDate  *string `json:"received_date,omitempty"`
	CancelledDate *string `json:"cancelled_date,omitempty"`
}

// ListBatchesResponse wraps batch lists
type ListBatchesResponse struct {
	Message string      `json:"message"`
	Items   []BatchItem `json:"items"`
}

// BatchDeviceItem is one device row in a batch's device list
type BatchDeviceItem struct {
	ID           uint   `json:"id"`
	BatchID      uint   `json:"batch_id"`
	DeviceType   string `json:"device_type"`
	DeviceNumber string `json:"device_number"`
}

// ListBatchDevicesResponse wraps a batch's device list
type ListBatchDevicesResponse struct {
	Message string            `json:"message"`
	Items   []BatchDeviceItem `json:"items"`
}

// NextBatchNumberResponse suggests a batch number for today
type NextBatchNumberResponse struct {
	NextBatchNumber string `json:"next_batch_number"`
}
