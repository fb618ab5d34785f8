package models_test

import (
	"testing"
	"time"

	"github.com/depedsdo/portal/models"
	"github.com/stretchr/testify/assert"
)

func TestTicketNumber(t *testing.T) {
	day := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "REQ-2025-01-07-0001", models.TicketNumber(models.TicketTypeRequest, day, 1))
	assert.Equal(t, "RST-2025-01-07-0042", models.TicketNumber(models.TicketTypeReset, day, 42))
	assert.Equal(t, "REQ-2025-01-07-9999", models.TicketNumber(models.TicketTypeRequest, day, models.MaxTicketSeq))
}

func TestBatchStatusTransitions(t *testing.T) {
	pending := &models.Batch{Status: models.BatchStatusPending}
	assert.True(t, pending.CanReceive())
	assert.True(t, pending.CanCancel())
	assert.False(t, pending.IsTerminal())

	delivered := &models.Batch{Status: models.BatchStatusDelivered}
	assert.False(t, delivered.CanReceive())
	assert.False(t, delivered.CanCancel())
	assert.True(t, delivered.IsTerminal())

	cancelled := &models.Batch{Status: models.BatchStatusCancelled}
	assert.False(t, cancelled.CanReceive())
	assert.False(t, cancelled.CanCancel())
	assert.True(t, cancelled.IsTerminal())
}
