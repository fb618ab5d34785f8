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

func newCreateAccountRequest(tag string) *dto.CreateAccountRequestRequest {
	return &dto.CreateAccountRequestRequest{
		SelectedType:      "Teacher",
		Surname:           "Dela Cruz",
		FirstName:         "Juan",
		MiddleName:        "Reyes",
		Designation:       "Teacher I",
		School:            "San Isidro Elementary School",
		SchoolID:          "300123",
		PersonalGmail:     fmt.Sprintf("juan.delacruz.%s@gmail.com", tag),
		ProofOfIdentity:   "proof.jpg",
		PRCID:             "prc.jpg",
		EndorsementLetter: "endorsement.pdf",
	}
}

func TestAccountRequestFlowCreate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		requestRepo := repository.NewAccountRequestRepository(testDB.DB)
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		flow := businessflow.NewAccountRequestFlow(testDB.DB, requestRepo, counterRepo, time.UTC)

		ctx := context.Background()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		today := utils.Today(time.UTC).Format(utils.DateOnly)

		t.Run("NumbersAreSequentialWithinTheDay", func(t *testing.T) {
			first, err := flow.CreateRequest(ctx, newCreateAccountRequest("a"), metadata)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("REQ-%s-0001", today), first.RequestNumber)

			second, err := flow.CreateRequest(ctx, newCreateAccountRequest("b"), metadata)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("REQ-%s-0002", today), second.RequestNumber)
		})

		t.Run("PersistedRowMatchesSubmission", func(t *testing.T) {
			resp, err := flow.CreateRequest(ctx, newCreateAccountRequest("c"), metadata)
			require.NoError(t, err)

			row, err := requestRepo.ByRequestNumber(ctx, resp.RequestNumber)
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Equal(t, "Dela Cruz, Juan Reyes", row.Name)
			assert.Equal(t, models.RequestStatusPending, row.Status)
		})

		t.Run("MissingNameRejected", func(t *testing.T) {
			req := newCreateAccountRequest("d")
			req.Surname = "  "
			_, err := flow.CreateRequest(ctx, req, metadata)
			require.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAccountRequestFlowSequenceExhausted(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		requestRepo := repository.NewAccountRequestRepository(testDB.DB)
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		flow := businessflow.NewAccountRequestFlow(testDB.DB, requestRepo, counterRepo, time.UTC)

		ctx := context.Background()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		day := utils.Today(time.UTC)

		// Pin the bucket to its last usable value.
		err := testDB.DB.Exec(
			"INSERT INTO ticket_counters (date, type, last_seq) VALUES (?, ?, ?)",
			day.Format(utils.DateOnly), models.TicketTypeRequest, models.MaxTicketSeq,
		).Error
		require.NoError(t, err)

		_, err = flow.CreateRequest(ctx, newCreateAccountRequest("x"), metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsTicketSequenceExhausted(err))

		// The failed create must not leave a row behind, and the rollback
		// must keep the counter at its cap rather than past it.
		count, err := requestRepo.Count(ctx, models.AccountRequestFilter{})
		require.NoError(t, err)
		assert.Zero(t, count)

		counter, err := counterRepo.Get(ctx, models.TicketTypeRequest, day)
		require.NoError(t, err)
		require.NotNil(t, counter)
		assert.Equal(t, models.MaxTicketSeq, counter.LastSeq)

		return nil
	})
	require.NoError(t, err)
}

func TestAccountRequestFlowStatusAndDelete(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		requestRepo := repository.NewAccountRequestRepository(testDB.DB)
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		flow := businessflow.NewAccountRequestFlow(testDB.DB, requestRepo, counterRepo, time.UTC)
		fixtures := testingutil.NewTestFixtures(testDB)

		ctx := context.Background()

		t.Run("RejectReasonKeptOnlyForRejected", func(t *testing.T) {
			row, err := fixtures.CreateTestAccountRequest(models.RequestStatusPending)
			require.NoError(t, err)

			reason := "Documents unreadable"
			err = flow.UpdateStatus(ctx, row.ID, &dto.UpdateRequestStatusRequest{
				Status:       models.RequestStatusRejected,
				RejectReason: &reason,
			})
			require.NoError(t, err)

			updated, err := requestRepo.ByID(ctx, row.ID)
			require.NoError(t, err)
			require.NotNil(t, updated.RejectReason)
			assert.Equal(t, reason, *updated.RejectReason)

			err = flow.UpdateStatus(ctx, row.ID, &dto.UpdateRequestStatusRequest{
				Status: models.RequestStatusCompleted,
			})
			require.NoError(t, err)

			updated, err = requestRepo.ByID(ctx, row.ID)
			require.NoError(t, err)
			assert.Nil(t, updated.RejectReason)
		})

		t.Run("UpdateMissingRequest", func(t *testing.T) {
			err := flow.UpdateStatus(ctx, 99999, &dto.UpdateRequestStatusRequest{
				Status: models.RequestStatusCompleted,
			})
			assert.True(t, businessflow.IsAccountRequestNotFound(err))
		})

		t.Run("SoftDeleteHidesRowButKeepsNumber", func(t *testing.T) {
			row, err := fixtures.CreateTestAccountRequest(models.RequestStatusPending)
			require.NoError(t, err)

			require.NoError(t, flow.DeleteRequest(ctx, row.ID))

			// Gone from normal reads.
			got, err := requestRepo.ByID(ctx, row.ID)
			require.NoError(t, err)
			assert.Nil(t, got)

			// Deleting again reports not found.
			err = flow.DeleteRequest(ctx, row.ID)
			assert.True(t, businessflow.IsAccountRequestNotFound(err))

			// The row survives underneath with its ticket number intact.
			var count int64
			err = testDB.DB.Raw(
				"SELECT COUNT(*) FROM account_requests WHERE id = ? AND deleted_at IS NOT NULL", row.ID,
			).Scan(&count).Error
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAccountRequestFlowExport(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		requestRepo := repository.NewAccountRequestRepository(testDB.DB)
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		flow := businessflow.NewAccountRequestFlow(testDB.DB, requestRepo, counterRepo, time.UTC)
		fixtures := testingutil.NewTestFixtures(testDB)

		_, err := fixtures.CreateTestAccountRequest(models.RequestStatusPending)
		require.NoError(t, err)
		_, err = fixtures.CreateTestAccountRequest(models.RequestStatusCompleted)
		require.NoError(t, err)

		filename, content, err := flow.ExportRequests(context.Background(), &dto.ListAccountRequestsRequest{})
		require.NoError(t, err)
		assert.Contains(t, filename, "account_requests_")
		assert.NotEmpty(t, content)

		return nil
	})
	require.NoError(t, err)
}
