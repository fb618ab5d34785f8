package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
	testingutil "github.com/depedsdo/portal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The unique index on device_number is the authoritative duplicate guard: a
// violation surfacing mid-transaction must discard the already-inserted batch
// row along with every device row.
func TestBatchInsertDuplicateSerialRollsBackBatchRow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		batchRepo := repository.NewBatchRepository(testDB.DB)
		deviceRepo := repository.NewBatchDeviceRepository(testDB.DB)
		ctx := context.Background()

		taken := &models.Batch{
			BatchNumber: "20250602-0001",
			SchoolCode:  "300123",
			SchoolName:  "San Isidro Elementary School",
			SendDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			Status:      models.BatchStatusDelivered,
		}
		require.NoError(t, batchRepo.Save(ctx, taken))
		require.NoError(t, deviceRepo.SaveBatch(ctx, []*models.BatchDevice{
			{BatchID: taken.ID, DeviceType: "Laptop", DeviceNumber: "SN-TAKEN-0001"},
		}))

		doomed := &models.Batch{
			BatchNumber: "20250602-0002",
			SchoolCode:  "300123",
			SchoolName:  "San Isidro Elementary School",
			SendDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			Status:      models.BatchStatusPending,
		}
		err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
			if err := batchRepo.Save(txCtx, doomed); err != nil {
				return err
			}
			require.NotZero(t, doomed.ID)

			// The second serial collides with the committed batch above.
			return deviceRepo.SaveBatch(txCtx, []*models.BatchDevice{
				{BatchID: doomed.ID, DeviceType: "Laptop", DeviceNumber: "SN-FREE-0001"},
				{BatchID: doomed.ID, DeviceType: "Laptop", DeviceNumber: "SN-TAKEN-0001"},
			})
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

		// The batch row inserted inside the transaction must be gone.
		got, err := batchRepo.ByID(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		var batchCount int64
		err = testDB.DB.Raw(
			"SELECT COUNT(*) FROM batches WHERE batch_number = ?", "20250602-0002",
		).Scan(&batchCount).Error
		require.NoError(t, err)
		assert.Zero(t, batchCount)

		// No device row survives either, not even the non-colliding one.
		var deviceCount int64
		err = testDB.DB.Raw(
			"SELECT COUNT(*) FROM batch_devices WHERE device_number = ?", "SN-FREE-0001",
		).Scan(&deviceCount).Error
		require.NoError(t, err)
		assert.Zero(t, deviceCount)

		return nil
	})
	require.NoError(t, err)
}

// A serial update that touches zero rows (the device vanished between the
// ownership check and the write) aborts the bulk update; updates already
// applied in the same transaction must roll back with it.
func TestUpdateSerialZeroRowsRollsBackAppliedUpdates(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		batchRepo := repository.NewBatchRepository(testDB.DB)
		deviceRepo := repository.NewBatchDeviceRepository(testDB.DB)
		ctx := context.Background()

		batch := &models.Batch{
			BatchNumber: "20250603-0001",
			SchoolCode:  "300123",
			SchoolName:  "San Isidro Elementary School",
			SendDate:    time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			Status:      models.BatchStatusPending,
		}
		require.NoError(t, batchRepo.Save(ctx, batch))

		devices := []*models.BatchDevice{
			{BatchID: batch.ID, DeviceType: "Laptop", DeviceNumber: "SN-ZR-0001"},
			{BatchID: batch.ID, DeviceType: "Tablet", DeviceNumber: "SN-ZR-0002"},
		}
		require.NoError(t, deviceRepo.SaveBatch(ctx, devices))

		wantErr := assert.AnError
		err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
			affected, err := deviceRepo.UpdateSerial(txCtx, batch.ID, devices[0].ID, "SN-ZR-NEW")
			require.NoError(t, err)
			require.Equal(t, int64(1), affected)

			// Simulates the device disappearing mid-update: no such row, zero
			// rows affected, whole update aborts.
			affected, err = deviceRepo.UpdateSerial(txCtx, batch.ID, 99999, "SN-ZR-GONE")
			require.NoError(t, err)
			require.Zero(t, affected)
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)

		rows, err := deviceRepo.ListByBatch(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "SN-ZR-0001", rows[0].DeviceNumber)
		assert.Equal(t, "SN-ZR-0002", rows[1].DeviceNumber)

		return nil
	})
	require.NoError(t, err)
}
