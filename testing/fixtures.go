// Package testing provides test utilities and database setup for testing the portal
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/depedsdo/portal/models"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccountRequest inserts an account request with a unique request number
func (tf *TestFixtures) CreateTestAccountRequest(status string) (*models.AccountRequest, error) {
	seq := rand.Intn(9000) + 1000

	request := &models.AccountRequest{
		RequestNumber: fmt.Sprintf("REQ-%s-%04d", time.Now().Format("2006-01-02"), seq),
		SelectedType:  "Teacher",
		Name:          "Dela Cruz, Juan",
		Surname:       "Dela Cruz",
		FirstName:     "Juan",
		Designation:   "Teacher I",
		School:        "San Isidro Elementary School",
		SchoolID:      "300123",
		PersonalGmail: fmt.Sprintf("juan.delacruz.%d@gmail.com", seq),
		Status:        status,
	}

	if err := tf.DB.DB.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create test account request: %w", err)
	}
	return request, nil
}

// CreateTestResetRequest inserts a reset request with a unique reset number
func (tf *TestFixtures) CreateTestResetRequest(status string) (*models.ResetRequest, error) {
	seq := rand.Intn(9000) + 1000

	request := &models.ResetRequest{
		ResetNumber:    fmt.Sprintf("RST-%s-%04d", time.Now().Format("2006-01-02"), seq),
		SelectedType:   "Teacher",
		Name:           "Santos, Maria",
		Surname:        "Santos",
		FirstName:      "Maria",
		School:         "San Isidro Elementary School",
		SchoolID:       "300123",
		EmployeeNumber: fmt.Sprintf("%07d", seq),
		ResetEmail:     fmt.Sprintf("maria.santos.%d@gmail.com", seq),
		DepEdEmail:     fmt.Sprintf("maria.santos.%d@deped.gov.ph", seq),
		Status:         status,
	}

	if err := tf.DB.DB.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create test reset request: %w", err)
	}
	return request, nil
}

// CreateTestBatch inserts a batch with the given status and a set of devices
func (tf *TestFixtures) CreateTestBatch(status models.BatchStatus, deviceCount int) (*models.Batch, error) {
	tag := rand.Intn(90000) + 10000

	batch := &models.Batch{
		BatchNumber: fmt.Sprintf("%s-%04d", time.Now().Format("20060102"), tag%10000),
		SchoolCode:  "300123",
		SchoolName:  "San Isidro Elementary School",
		SendDate:    time.Now().AddDate(0, 0, 1),
		Status:      status,
	}
	if err := tf.DB.DB.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("failed to create test batch: %w", err)
	}

	for i := 0; i < deviceCount; i++ {
		device := &models.BatchDevice{
			BatchID:      batch.ID,
			DeviceType:   "Laptop",
			DeviceNumber: fmt.Sprintf("SN-%d-%d", tag, i),
		}
		if err := tf.DB.DB.Create(device).Error; err != nil {
			return nil, fmt.Errorf("failed to create test batch device: %w", err)
		}
		batch.Devices = append(batch.Devices, *device)
	}

	return batch, nil
}

// CreateTestSchool inserts a school row
func (tf *TestFixtures) CreateTestSchool(code, name, district string) (*models.School, error) {
	school := &models.School{
		SchoolCode: code,
		School:     name,
		District:   district,
	}
	if err := tf.DB.DB.Create(school).Error; err != nil {
		return nil, fmt.Errorf("failed to create test school: %w", err)
	}
	return school, nil
}
