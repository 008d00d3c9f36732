package workflow

import (
	"context"
	"sort"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"gorm.io/gorm"
)

// BatchAllocation assigns part of a requested quantity to one stock batch.
type BatchAllocation struct {
	BatchId       int
	BatchNumber   string
	QuantityTaken int
	FullyConsumed bool
}

// BatchSelectionResult is the outcome of a FEFO walk over candidate batches.
// ShortfallQty > 0 means the candidates could not cover the request.
type BatchSelectionResult struct {
	Allocations   []BatchAllocation
	TotalSelected int
	ShortfallQty  int
}

func (r BatchSelectionResult) FullyFulfilled() bool {
	return r.ShortfallQty == 0
}

// fefoLess is the explicit batch ordering: soonest expiry first, id ascending
// as the deterministic tie-break. Kept as a named comparator so the ordering
// is tested directly instead of relying on storage collation.
func fefoLess(a, b *models.StockBatch) bool {
	if !a.ExpiryDate.Equal(b.ExpiryDate) {
		return a.ExpiryDate.Before(b.ExpiryDate)
	}
	return a.ID < b.ID
}

// SelectBatches walks the candidates in FEFO order, taking
// min(batch quantity, remaining) from each until the request is covered.
// Pure: it never mutates the batches. The min step is what keeps a batch's
// post-allocation quantity from going negative.
func SelectBatches(requested int, batches []*models.StockBatch) (BatchSelectionResult, error) {
	var result BatchSelectionResult

	if requested <= 0 {
		productId := 0
		if len(batches) > 0 {
			productId = batches[0].ProductId
		}
		return result, &InvalidQuantityError{ProductId: productId, Requested: requested}
	}

	sorted := make([]*models.StockBatch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool { return fefoLess(sorted[i], sorted[j]) })

	remaining := requested
	for _, batch := range sorted {
		if remaining == 0 {
			break
		}
		if batch.Quantity <= 0 {
			continue
		}
		take := batch.Quantity
		if take > remaining {
			take = remaining
		}
		result.Allocations = append(result.Allocations, BatchAllocation{
			BatchId:       batch.ID,
			BatchNumber:   batch.BatchNumber,
			QuantityTaken: take,
			FullyConsumed: take == batch.Quantity,
		})
		result.TotalSelected += take
		remaining -= take
	}
	result.ShortfallQty = remaining
	return result, nil
}

// AllocateStock deducts the requested quantity from a product's batches in
// FEFO order inside the caller's transaction. The candidate rows are read
// with SELECT ... FOR UPDATE so concurrent sales against the same product
// serialize and can never jointly overdraw a batch.
//
// On any error nothing has been written; the caller rolls back the whole
// transaction either way.
func AllocateStock(tx *gorm.DB, ctx context.Context, businessId string, productId int, requested int) ([]BatchAllocation, error) {
	logger := config.GetLogger()

	if requested <= 0 {
		return nil, &InvalidQuantityError{ProductId: productId, Requested: requested}
	}

	batches, err := models.GetAvailableBatchesForUpdate(tx, ctx, businessId, productId)
	if err != nil {
		config.LogError(logger, "allocator.go", "AllocateStock", "GetAvailableBatchesForUpdate", productId, err)
		return nil, err
	}

	selection, err := SelectBatches(requested, batches)
	if err != nil {
		return nil, err
	}
	if !selection.FullyFulfilled() {
		return nil, &InsufficientStockError{
			ProductId: productId,
			Requested: requested,
			Available: selection.TotalSelected,
		}
	}

	for _, alloc := range selection.Allocations {
		res := tx.WithContext(ctx).Model(&models.StockBatch{}).
			Where("id = ? AND quantity >= ?", alloc.BatchId, alloc.QuantityTaken).
			Update("quantity", gorm.Expr("quantity - ?", alloc.QuantityTaken))
		if res.Error != nil {
			config.LogError(logger, "allocator.go", "AllocateStock", "Decrement batch", alloc, res.Error)
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// The FOR UPDATE read should make this unreachable; treat it as
			// stock raced away rather than overdraw the batch.
			err := &InsufficientStockError{ProductId: productId, Requested: requested, Available: selection.TotalSelected - alloc.QuantityTaken}
			config.LogError(logger, "allocator.go", "AllocateStock", "Decrement batch raced", alloc, err)
			return nil, err
		}
	}

	return selection.Allocations, nil
}
