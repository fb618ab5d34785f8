package businessflow_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/depedsdo/portal/app/dto"
	businessflow "github.com/depedsdo/portal/business_flow"
	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
	testingutil "github.com/depedsdo/portal/testing"
	"github.com/depedsdo/portal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreateResetRequest(tag string) *dto.CreateResetRequestRequest {
	return &dto.CreateResetRequestRequest{
		SelectedType:   "Teacher",
		Surname:        "Santos",
		FirstName:      "Maria",
		School:         "San Isidro Elementary School",
		SchoolID:       "300123",
		EmployeeNumber: "1234567",
		PersonalEmail:  fmt.Sprintf("maria.santos.%s@gmail.com", tag),
		DepEdEmail:     fmt.Sprintf("maria.santos.%s@deped.gov.ph", tag),
	}
}

func TestResetRequestFlowCreate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		resetRepo := repository.NewResetRequestRepository(testDB.DB)
		requestRepo := repository.NewAccountRequestRepository(testDB.DB)
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		resetFlow := businessflow.NewResetRequestFlow(testDB.DB, resetRepo, counterRepo, time.UTC)
		requestFlow := businessflow.NewAccountRequestFlow(testDB.DB, requestRepo, counterRepo, time.UTC)

		ctx := context.Background()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		today := utils.Today(time.UTC).Format(utils.DateOnly)

		t.Run("MintsFromOwnBucket", func(t *testing.T) {
			// Account requests must not advance the reset sequence.
			_, err := requestFlow.CreateRequest(ctx, newCreateAccountRequest("reset-a"), metadata)
			require.NoError(t, err)

			resp, err := resetFlow.CreateResetRequest(ctx, newCreateResetRequest("a"), metadata)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("RST-%s-0001", today), resp.ResetNumber)
		})

		t.Run("RejectsNonDepEdEmail", func(t *testing.T) {
			req := newCreateResetRequest("b")
			req.DepEdEmail = "maria.santos@gmail.com"
			_, err := resetFlow.CreateResetRequest(ctx, req, metadata)
			assert.ErrorIs(t, err, businessflow.ErrDepEdEmailRequired)
		})

		t.Run("NormalizesDepEdEmail", func(t *testing.T) {
			req := newCreateResetRequest("c")
			req.DepEdEmail = "Maria.Santos.C@DEPED.GOV.PH"
			resp, err := resetFlow.CreateResetRequest(ctx, req, metadata)
			require.NoError(t, err)
			assert.Equal(t, "maria.santos.c@deped.gov.ph", resp.DepEdEmail)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestResetRequestFlowStatus(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		resetRepo := repository.NewResetRequestRepository(testDB.DB)
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		flow := businessflow.NewResetRequestFlow(testDB.DB, resetRepo, counterRepo, time.UTC)
		fixtures := testingutil.NewTestFixtures(testDB)

		ctx := context.Background()

		t.Run("CompletedStampsTimestamp", func(t *testing.T) {
			row, err := fixtures.CreateTestResetRequest(models.RequestStatusPending)
			require.NoError(t, err)

			notes := "Password reset and emailed"
			err = flow.UpdateStatus(ctx, row.ID, &dto.UpdateResetStatusRequest{
				Status: models.RequestStatusCompleted,
				Notes:  &notes,
			})
			require.NoError(t, err)

			updated, err := resetRepo.ByID(ctx, row.ID)
			require.NoError(t, err)
			require.NotNil(t, updated.CompletedAt)
			require.NotNil(t, updated.Notes)
			assert.Equal(t, notes, *updated.Notes)
		})

		t.Run("ReopeningClearsTimestamp", func(t *testing.T) {
			row, err := fixtures.CreateTestResetRequest(models.RequestStatusPending)
			require.NoError(t, err)

			err = flow.UpdateStatus(ctx, row.ID, &dto.UpdateResetStatusRequest{Status: models.RequestStatusCompleted})
			require.NoError(t, err)
			err = flow.UpdateStatus(ctx, row.ID, &dto.UpdateResetStatusRequest{Status: models.RequestStatusPending})
			require.NoError(t, err)

			updated, err := resetRepo.ByID(ctx, row.ID)
			require.NoError(t, err)
			assert.Nil(t, updated.CompletedAt)
		})

		t.Run("DeleteMissing", func(t *testing.T) {
			err := flow.DeleteResetRequest(ctx, 99999)
			assert.True(t, businessflow.IsResetRequestNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
