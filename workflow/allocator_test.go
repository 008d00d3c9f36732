package workflow

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func batch(id int, batchNumber string, quantity int, expiry time.Time) *models.StockBatch {
	return &models.StockBatch{
		ID:          id,
		ProductId:   1,
		BatchNumber: batchNumber,
		Quantity:    quantity,
		ExpiryDate:  expiry,
	}
}

func TestSelectBatches(t *testing.T) {
	t.Run("spans batches in expiry order", func(t *testing.T) {
		// B1 expires first with 5 on hand, B2 later with 10.
		batches := []*models.StockBatch{
			batch(2, "B2", 10, day(30)),
			batch(1, "B1", 5, day(10)),
		}

		result, err := SelectBatches(8, batches)
		require.NoError(t, err)
		require.True(t, result.FullyFulfilled())
		require.Len(t, result.Allocations, 2)
		assert.Equal(t, "B1", result.Allocations[0].BatchNumber)
		assert.Equal(t, 5, result.Allocations[0].QuantityTaken)
		assert.True(t, result.Allocations[0].FullyConsumed)
		assert.Equal(t, "B2", result.Allocations[1].BatchNumber)
		assert.Equal(t, 3, result.Allocations[1].QuantityTaken)
		assert.False(t, result.Allocations[1].FullyConsumed)
		assert.Equal(t, 8, result.TotalSelected)
	})

	t.Run("reports shortfall without partial fulfilment", func(t *testing.T) {
		batches := []*models.StockBatch{
			batch(1, "B1", 5, day(10)),
			batch(2, "B2", 10, day(30)),
		}

		result, err := SelectBatches(20, batches)
		require.NoError(t, err)
		assert.False(t, result.FullyFulfilled())
		assert.Equal(t, 15, result.TotalSelected)
		assert.Equal(t, 5, result.ShortfallQty)
	})

	t.Run("ties on expiry break by id ascending", func(t *testing.T) {
		sameDay := day(15)
		batches := []*models.StockBatch{
			batch(7, "B7", 4, sameDay),
			batch(3, "B3", 4, sameDay),
		}

		result, err := SelectBatches(6, batches)
		require.NoError(t, err)
		require.Len(t, result.Allocations, 2)
		assert.Equal(t, 3, result.Allocations[0].BatchId)
		assert.Equal(t, 4, result.Allocations[0].QuantityTaken)
		assert.Equal(t, 7, result.Allocations[1].BatchId)
		assert.Equal(t, 2, result.Allocations[1].QuantityTaken)
	})

	t.Run("exact fit consumes the batch", func(t *testing.T) {
		batches := []*models.StockBatch{batch(1, "B1", 5, day(10))}

		result, err := SelectBatches(5, batches)
		require.NoError(t, err)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, 5, result.Allocations[0].QuantityTaken)
		assert.True(t, result.Allocations[0].FullyConsumed)
		assert.True(t, result.FullyFulfilled())
	})

	t.Run("skips empty batches", func(t *testing.T) {
		batches := []*models.StockBatch{
			batch(1, "B1", 0, day(5)),
			batch(2, "B2", 3, day(10)),
		}

		result, err := SelectBatches(2, batches)
		require.NoError(t, err)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, 2, result.Allocations[0].BatchId)
	})

	t.Run("rejects zero and negative quantities", func(t *testing.T) {
		batches := []*models.StockBatch{batch(1, "B1", 5, day(10))}

		for _, requested := range []int{0, -3} {
			_, err := SelectBatches(requested, batches)
			var invalid *InvalidQuantityError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, requested, invalid.Requested)
		}
	})

	t.Run("no stock at all", func(t *testing.T) {
		result, err := SelectBatches(1, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Allocations)
		assert.Equal(t, 1, result.ShortfallQty)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		b1 := batch(1, "B1", 5, day(10))
		b2 := batch(2, "B2", 10, day(30))
		batches := []*models.StockBatch{b2, b1}

		_, err := SelectBatches(8, batches)
		require.NoError(t, err)
		assert.Equal(t, 5, b1.Quantity)
		assert.Equal(t, 10, b2.Quantity)
		assert.Same(t, b2, batches[0])
	})
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := error(&InsufficientStockError{ProductId: 9, Requested: 20, Available: 15})

	var insufficient *InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 20, insufficient.Requested)
	assert.Equal(t, 15, insufficient.Available)
	assert.Contains(t, err.Error(), "requested=20")
	assert.Contains(t, err.Error(), "available=15")
}
