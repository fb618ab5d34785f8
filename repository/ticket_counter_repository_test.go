package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/depedsdo/portal/models"
	"github.com/depedsdo/portal/repository"
	testingutil "github.com/depedsdo/portal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketCounterNext(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		ctx := context.Background()
		day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

		t.Run("StartsAtOneAndIncrements", func(t *testing.T) {
			for want := 1; want <= 3; want++ {
				seq, err := counterRepo.Next(ctx, models.TicketTypeRequest, day)
				require.NoError(t, err)
				assert.Equal(t, want, seq)
			}
		})

		t.Run("BucketsAreIndependent", func(t *testing.T) {
			// Same day, different type
			seq, err := counterRepo.Next(ctx, models.TicketTypeReset, day)
			require.NoError(t, err)
			assert.Equal(t, 1, seq)

			// Different day, same type
			nextDay := day.AddDate(0, 0, 1)
			seq, err = counterRepo.Next(ctx, models.TicketTypeRequest, nextDay)
			require.NoError(t, err)
			assert.Equal(t, 1, seq)
		})

		t.Run("GetReturnsNilForUnusedBucket", func(t *testing.T) {
			counter, err := counterRepo.Get(ctx, models.TicketTypeRequest, day.AddDate(0, 1, 0))
			require.NoError(t, err)
			assert.Nil(t, counter)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTicketCounterNextConcurrent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

		const workers = 50

		var wg sync.WaitGroup
		results := make(chan int, workers)
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				seq, err := counterRepo.Next(context.Background(), models.TicketTypeRequest, day)
				if err != nil {
					errs <- err
					return
				}
				results <- seq
			}()
		}
		wg.Wait()
		close(results)
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		// Every worker must observe a distinct value and together they must
		// cover exactly 1..workers: no duplicates, no gaps.
		seen := make(map[int]bool, workers)
		for seq := range results {
			assert.False(t, seen[seq], "sequence value %d issued twice", seq)
			seen[seq] = true
		}
		require.Len(t, seen, workers)
		for want := 1; want <= workers; want++ {
			assert.True(t, seen[want], "sequence value %d never issued", want)
		}

		return nil
	})
	require.NoError(t, err)
}

func TestTicketCounterNextRollback(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		counterRepo := repository.NewTicketCounterRepository(testDB.DB)
		ctx := context.Background()
		day := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

		seq, err := counterRepo.Next(ctx, models.TicketTypeRequest, day)
		require.NoError(t, err)
		require.Equal(t, 1, seq)

		// An aborted enclosing transaction must release the drawn value.
		wantErr := assert.AnError
		err = repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
			seq, err := counterRepo.Next(txCtx, models.TicketTypeRequest, day)
			require.NoError(t, err)
			require.Equal(t, 2, seq)
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)

		// The next draw gets the released value again.
		seq, err = counterRepo.Next(ctx, models.TicketTypeRequest, day)
		require.NoError(t, err)
		assert.Equal(t, 2, seq)

		return nil
	})
	require.NoError(t, err)
}
