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

func newCreateBatchRequest(tag string, sendDate time.Time) *dto.CreateBatchRequest {
	return &dto.CreateBatchRequest{
		BatchNumber: fmt.Sprintf("20250107-%s", tag),
		SendDate:    sendDate.Format(utils.DateOnly),
		SchoolCode:  "300123",
		SchoolName:  "San Isidro Elementary School",
		Devices: []dto.BatchDeviceInput{
			{DeviceType: "Laptop", SerialNumber: fmt.Sprintf("LT-%s-001", tag)},
			{DeviceType: "Tablet", SerialNumber: fmt.Sprintf("TB-%s-002", tag)},
		},
	}
}

func TestBatchFlowCreate(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		batchRepo := repository.NewBatchRepository(testDB.DB)
		deviceRepo := repository.NewBatchDeviceRepository(testDB.DB)
		flow := businessflow.NewBatchFlow(testDB.DB, batchRepo, deviceRepo, time.UTC)

		ctx := context.Background()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
		today := utils.Today(time.UTC)

		t.Run("CreatesBatchWithAllDevices", func(t *testing.T) {
			resp, err := flow.CreateBatch(ctx, newCreateBatchRequest("a", today.AddDate(0, 0, 1)), metadata)
			require.NoError(t, err)
			require.NotZero(t, resp.BatchID)

			devices, err := deviceRepo.ListByBatch(ctx, resp.BatchID)
			require.NoError(t, err)
			assert.Len(t, devices, 2)
		})

		t.Run("FutureSendDateStartsPending", func(t *testing.T) {
			resp, err := flow.CreateBatch(ctx, newCreateBatchRequest("b", today.AddDate(0, 0, 1)), metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.BatchStatusPending), resp.Status)

			batch, err := batchRepo.ByID(ctx, resp.BatchID)
			require.NoError(t, err)
			assert.Nil(t, batch.ReceivedDate)
		})

		t.Run("PastSendDateStartsDelivered", func(t *testing.T) {
			yesterday := today.AddDate(0, 0, -1)
			resp, err := flow.CreateBatch(ctx, newCreateBatchRequest("c", yesterday), metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.BatchStatusDelivered), resp.Status)

			batch, err := batchRepo.ByID(ctx, resp.BatchID)
			require.NoError(t, err)
			require.NotNil(t, batch.ReceivedDate)
			assert.Equal(t, yesterday.Format(utils.DateOnly), batch.ReceivedDate.Format(utils.DateOnly))
		})

		t.Run("TodaySendDateStartsPending", func(t *testing.T) {
			resp, err := flow.CreateBatch(ctx, newCreateBatchRequest("d", today), metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.BatchStatusPending), resp.Status)
		})

		t.Run("RejectsSerialsAlreadyInHistory", func(t *testing.T) {
			first, err := flow.CreateBatch(ctx, newCreateBatchRequest("e", today), metadata)
			require.NoError(t, err)

			// Cancelled batches keep their serials reserved forever.
			_, err = flow.UpdateBatchStatus(ctx, first.BatchID, &dto.UpdateBatchStatusRequest{
				Status: string(models.BatchStatusCancelled),
			})
			require.NoError(t, err)

			req := newCreateBatchRequest("f", today)
			req.Devices[1].SerialNumber = "LT-e-001"
			_, err = flow.CreateBatch(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDuplicateSerial(err))

			var dup *businessflow.DuplicateSerialError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, []string{"LT-e-001"}, dup.Serials)

			// Nothing from the failed submission may exist.
			var count int64
			err = testDB.DB.Raw(
				"SELECT COUNT(*) FROM batch_devices WHERE device_number = ?", "TB-f-002",
			).Scan(&count).Error
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("RejectsRepeatedSerialsWithinPayload", func(t *testing.T) {
			req := newCreateBatchRequest("g", today)
			req.Devices[1].SerialNumber = req.Devices[0].SerialNumber
			_, err := flow.CreateBatch(ctx, req, metadata)
			assert.True(t, businessflow.IsDuplicateSerial(err))
		})

		t.Run("RejectsBlankDeviceFields", func(t *testing.T) {
			req := newCreateBatchRequest("h", today)
			req.Devices[0].SerialNumber = "  "
			_, err := flow.CreateBatch(ctx, req, metadata)
			assert.ErrorIs(t, err, businessflow.ErrDeviceFieldsRequired)
		})

		t.Run("RejectsMalformedSendDate", func(t *testing.T) {
			req := newCreateBatchRequest("i", today)
			req.SendDate = "07/01/2025"
			_, err := flow.CreateBatch(ctx, req, metadata)
			assert.ErrorIs(t, err, businessflow.ErrInvalidSendDate)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBatchFlowStatusTransitions(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		batchRepo := repository.NewBatchRepository(testDB.DB)
		deviceRepo := repository.NewBatchDeviceRepository(testDB.DB)
		flow := businessflow.NewBatchFlow(testDB.DB, batchRepo, deviceRepo, time.UTC)
		fixtures := testingutil.NewTestFixtures(testDB)

		ctx := context.Background()
		today := utils.Today(time.UTC).Format(utils.DateOnly)

		t.Run("PendingToDeliveredStampsReceipt", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
			require.NoError(t, err)

			item, err := flow.UpdateBatchStatus(ctx, batch.ID, &dto.UpdateBatchStatusRequest{
				Status: string(models.BatchStatusDelivered),
			})
			require.NoError(t, err)
			assert.Equal(t, string(models.BatchStatusDelivered), item.Status)
			require.NotNil(t, item.ReceivedDate)
			assert.Equal(t, today, *item.ReceivedDate)
		})

		t.Run("PendingToCancelledStampsCancellation", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
			require.NoError(t, err)

			item, err := flow.UpdateBatchStatus(ctx, batch.ID, &dto.UpdateBatchStatusRequest{
				Status: string(models.BatchStatusCancelled),
			})
			require.NoError(t, err)
			require.NotNil(t, item.CancelledDate)
			assert.Equal(t, today, *item.CancelledDate)
		})

		t.Run("TerminalStatesRefuseTransitions", func(t *testing.T) {
			delivered, err := fixtures.CreateTestBatch(models.BatchStatusDelivered, 1)
			require.NoError(t, err)
			cancelled, err := fixtures.CreateTestBatch(models.BatchStatusCancelled, 1)
			require.NoError(t, err)

			_, err = flow.UpdateBatchStatus(ctx, delivered.ID, &dto.UpdateBatchStatusRequest{
				Status: string(models.BatchStatusCancelled),
			})
			assert.True(t, businessflow.IsStateTransition(err))

			_, err = flow.UpdateBatchStatus(ctx, cancelled.ID, &dto.UpdateBatchStatusRequest{
				Status: string(models.BatchStatusDelivered),
			})
			assert.True(t, businessflow.IsStateTransition(err))
		})

		t.Run("MissingBatch", func(t *testing.T) {
			_, err := flow.UpdateBatchStatus(ctx, 99999, &dto.UpdateBatchStatusRequest{
				Status: string(models.BatchStatusDelivered),
			})
			assert.True(t, businessflow.IsBatchNotFound(err))
		})

		t.Run("EditKeepsStatus", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
			require.NoError(t, err)

			// Moving the send date into the past must not re-derive the status.
			lastWeek := utils.Today(time.UTC).AddDate(0, 0, -7)
			item, err := flow.UpdateBatch(ctx, batch.ID, &dto.UpdateBatchRequest{
				BatchNumber: batch.BatchNumber,
				SendDate:    lastWeek.Format(utils.DateOnly),
			})
			require.NoError(t, err)
			assert.Equal(t, string(models.BatchStatusPending), item.Status)
			assert.Equal(t, lastWeek.Format(utils.DateOnly), item.SendDate)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBatchFlowUpdateDevices(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		batchRepo := repository.NewBatchRepository(testDB.DB)
		deviceRepo := repository.NewBatchDeviceRepository(testDB.DB)
		flow := businessflow.NewBatchFlow(testDB.DB, batchRepo, deviceRepo, time.UTC)
		fixtures := testingutil.NewTestFixtures(testDB)

		ctx := context.Background()

		t.Run("RewritesSerials", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(models.BatchStatusPending, 2)
			require.NoError(t, err)

			resp, err := flow.UpdateBatchDevices(ctx, batch.ID, &dto.UpdateBatchDevicesRequest{
				Devices: []dto.BatchDeviceUpdateInput{
					{DeviceID: batch.Devices[0].ID, SerialNumber: "NEW-0001"},
					{DeviceID: batch.Devices[1].ID, SerialNumber: "NEW-0002"},
				},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, resp.Count)

			rows, err := deviceRepo.ListByBatch(ctx, batch.ID)
			require.NoError(t, err)
			serials := []string{rows[0].DeviceNumber, rows[1].DeviceNumber}
			assert.ElementsMatch(t, []string{"NEW-0001", "NEW-0002"}, serials)
		})

		t.Run("ForeignDeviceRollsBackEverything", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
			require.NoError(t, err)
			other, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
			require.NoError(t, err)

			original := batch.Devices[0].DeviceNumber
			_, err = flow.UpdateBatchDevices(ctx, batch.ID, &dto.UpdateBatchDevicesRequest{
				Devices: []dto.BatchDeviceUpdateInput{
					{DeviceID: batch.Devices[0].ID, SerialNumber: "ROLL-0001"},
					{DeviceID: other.Devices[0].ID, SerialNumber: "ROLL-0002"},
				},
			})
			assert.True(t, businessflow.IsDevicesNotInBatch(err))

			rows, err := deviceRepo.ListByBatch(ctx, batch.ID)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, original, rows[0].DeviceNumber)
		})

		t.Run("TakenSerialRejected", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
			require.NoError(t, err)
			other, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
			require.NoError(t, err)

			_, err = flow.UpdateBatchDevices(ctx, batch.ID, &dto.UpdateBatchDevicesRequest{
				Devices: []dto.BatchDeviceUpdateInput{
					{DeviceID: batch.Devices[0].ID, SerialNumber: other.Devices[0].DeviceNumber},
				},
			})
			assert.True(t, businessflow.IsDuplicateSerial(err))
		})

		t.Run("RepeatedTargetSerialsRejected", func(t *testing.T) {
			batch, err := fixtures.CreateTestBatch(models.BatchStatusPending, 2)
			require.NoError(t, err)

			_, err = flow.UpdateBatchDevices(ctx, batch.ID, &dto.UpdateBatchDevicesRequest{
				Devices: []dto.BatchDeviceUpdateInput{
					{DeviceID: batch.Devices[0].ID, SerialNumber: "SAME-0001"},
					{DeviceID: batch.Devices[1].ID, SerialNumber: "SAME-0001"},
				},
			})
			assert.True(t, businessflow.IsDuplicateSerial(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBatchFlowLists(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		batchRepo := repository.NewBatchRepository(testDB.DB)
		deviceRepo := repository.NewBatchDeviceRepository(testDB.DB)
		flow := businessflow.NewBatchFlow(testDB.DB, batchRepo, deviceRepo, time.UTC)
		fixtures := testingutil.NewTestFixtures(testDB)

		ctx := context.Background()

		pending, err := fixtures.CreateTestBatch(models.BatchStatusPending, 1)
		require.NoError(t, err)
		_, err = flow.UpdateBatchStatus(ctx, pending.ID, &dto.UpdateBatchStatusRequest{
			Status: string(models.BatchStatusDelivered),
		})
		require.NoError(t, err)
		_, err = fixtures.CreateTestBatch(models.BatchStatusPending, 1)
		require.NoError(t, err)

		t.Run("ListAll", func(t *testing.T) {
			resp, err := flow.ListBatches(ctx)
			require.NoError(t, err)
			assert.Len(t, resp.Items, 2)
		})

		t.Run("ListBySchoolWithStatus", func(t *testing.T) {
			status := string(models.BatchStatusPending)
			resp, err := flow.ListBatchesBySchool(ctx, "300123", &status)
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, status, resp.Items[0].Status)
		})

		t.Run("ListReceived", func(t *testing.T) {
			resp, err := flow.ListReceivedBatches(ctx)
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.NotNil(t, resp.Items[0].ReceivedDate)
		})

		t.Run("DeliveredBySchoolOrderedByReceiptDate", func(t *testing.T) {
			metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
			today := utils.Today(time.UTC)

			older := newCreateBatchRequest("o1", today.AddDate(0, 0, -3))
			older.SchoolCode = "300777"
			newer := newCreateBatchRequest("o2", today.AddDate(0, 0, -1))
			newer.SchoolCode = "300777"

			_, err := flow.CreateBatch(ctx, older, metadata)
			require.NoError(t, err)
			_, err = flow.CreateBatch(ctx, newer, metadata)
			require.NoError(t, err)

			status := string(models.BatchStatusDelivered)
			resp, err := flow.ListBatchesBySchool(ctx, "300777", &status)
			require.NoError(t, err)
			require.Len(t, resp.Items, 2)

			// Most recent receipt first.
			require.NotNil(t, resp.Items[0].ReceivedDate)
			assert.Equal(t, today.AddDate(0, 0, -1).Format(utils.DateOnly), *resp.Items[0].ReceivedDate)
			require.NotNil(t, resp.Items[1].ReceivedDate)
			assert.Equal(t, today.AddDate(0, 0, -3).Format(utils.DateOnly), *resp.Items[1].ReceivedDate)
		})

		t.Run("DevicesOfMissingBatch", func(t *testing.T) {
			_, err := flow.ListBatchDevices(ctx, 99999)
			assert.True(t, businessflow.IsBatchNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestBatchFlowNextBatchNumber(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		batchRepo := repository.NewBatchRepository(testDB.DB)
		deviceRepo := repository.NewBatchDeviceRepository(testDB.DB)
		flow := businessflow.NewBatchFlow(testDB.DB, batchRepo, deviceRepo, time.UTC)

		ctx := context.Background()
		prefix := utils.Today(time.UTC).Format("20060102")

		t.Run("EmptyDayStartsAtOne", func(t *testing.T) {
			resp, err := flow.NextBatchNumber(ctx)
			require.NoError(t, err)
			assert.Equal(t, prefix+"-0001", resp.NextBatchNumber)
		})

		t.Run("FollowsHighestExisting", func(t *testing.T) {
			batch := &models.Batch{
				BatchNumber: prefix + "-0007",
				SchoolCode:  "300123",
				SchoolName:  "San Isidro Elementary School",
				SendDate:    utils.Today(time.UTC),
				Status:      models.BatchStatusPending,
			}
			require.NoError(t, testDB.DB.Create(batch).Error)

			resp, err := flow.NextBatchNumber(ctx)
			require.NoError(t, err)
			assert.Equal(t, prefix+"-0008", resp.NextBatchNumber)
		})

		return nil
	})
	require.NoError(t, err)
}
