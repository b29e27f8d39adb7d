package service

import (
	"context"
	"testing"

	"warehouse/internal/apperr"
	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockService_ApplyStockChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("increase then decrease keeps ledger consistent", func(t *testing.T) {
		product := env.createProduct(t, "bolts", 10, 2, "1.50")

		updated, movement, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), product.ID.String(), StockChangeRequest{
			StockChange: 5,
			ChangeType:  model.MovementIncrease,
		})
		require.NoError(t, err)
		assert.Equal(t, 15.0, updated.StockValue)
		assert.Equal(t, 10.0, movement.StockBefore)
		assert.Equal(t, 15.0, movement.StockAfter)
		assert.Equal(t, model.MovementIncrease, movement.MovementType)

		updated, movement, err = env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), product.ID.String(), StockChangeRequest{
			StockChange: 4,
			ChangeType:  model.MovementDecrease,
		})
		require.NoError(t, err)
		assert.Equal(t, 11.0, updated.StockValue)
		assert.Equal(t, 15.0, movement.StockBefore)
		assert.Equal(t, 11.0, movement.StockAfter)

		// StockValue must equal StockAfter of the latest movement
		last, err := env.movementRepo.LastForProduct(ctx, product.ID)
		require.NoError(t, err)
		stored, err := env.productRepo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, last.StockAfter, stored.StockValue)
	})

	t.Run("decrease below zero is rejected and rolls back", func(t *testing.T) {
		product := env.createProduct(t, "nuts", 3, 1, "0.80")

		_, _, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), product.ID.String(), StockChangeRequest{
			StockChange: 4,
			ChangeType:  model.MovementDecrease,
		})
		require.ErrorIs(t, err, apperr.ErrInsufficientStock)

		stored, err := env.productRepo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, stored.StockValue)

		total, listErr := countMovementsFor(env, product.ID)
		require.NoError(t, listErr)
		assert.Zero(t, total)
	})

	t.Run("exact drain to zero is allowed", func(t *testing.T) {
		product := env.createProduct(t, "washers", 7, 0, "0.10")

		updated, _, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), product.ID.String(), StockChangeRequest{
			StockChange: 7,
			ChangeType:  model.MovementDecrease,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, updated.StockValue)
	})

	t.Run("unknown change type is rejected", func(t *testing.T) {
		product := env.createProduct(t, "screws", 5, 1, "0.20")

		_, _, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), product.ID.String(), StockChangeRequest{
			StockChange: 1,
			ChangeType:  "Adjust",
		})
		require.ErrorIs(t, err, apperr.ErrInvalidChangeType)
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		product := env.createProduct(t, "nails", 5, 1, "0.05")

		for _, qty := range []float64{0, -2} {
			_, _, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), product.ID.String(), StockChangeRequest{
				StockChange: qty,
				ChangeType:  model.MovementIncrease,
			})
			require.ErrorIs(t, err, apperr.ErrValidation)
		}
	})

	t.Run("missing product", func(t *testing.T) {
		_, _, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), uuid.New().String(), StockChangeRequest{
			StockChange: 1,
			ChangeType:  model.MovementIncrease,
		})
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("movement records the acting user", func(t *testing.T) {
		product := env.createProduct(t, "rivets", 5, 1, "0.30")
		userID := uuid.New()

		_, movement, err := env.stockSvc.ApplyStockChange(ctx, userID.String(), product.ID.String(), StockChangeRequest{
			StockChange: 2,
			ChangeType:  model.MovementIncrease,
		})
		require.NoError(t, err)
		require.NotNil(t, movement.UserID)
		assert.Equal(t, userID, *movement.UserID)
	})
}

func TestStockService_ListMovements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productA := env.createProduct(t, "cables", 100, 5, "2.00")
	productB := env.createProduct(t, "plugs", 50, 5, "1.00")

	for i := 0; i < 3; i++ {
		_, _, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), productA.ID.String(), StockChangeRequest{
			StockChange: 1,
			ChangeType:  model.MovementIncrease,
		})
		require.NoError(t, err)
	}
	_, _, err := env.stockSvc.ApplyStockChange(ctx, uuid.New().String(), productB.ID.String(), StockChangeRequest{
		StockChange: 2,
		ChangeType:  model.MovementDecrease,
	})
	require.NoError(t, err)

	t.Run("filter by product", func(t *testing.T) {
		movements, total, err := env.stockSvc.ListMovements(ctx, repository.MovementFilter{ProductID: &productA.ID}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		for _, m := range movements {
			assert.Equal(t, productA.ID.String(), m.ProductID)
		}
	})

	t.Run("filter by movement type", func(t *testing.T) {
		movements, total, err := env.stockSvc.ListMovements(ctx, repository.MovementFilter{MovementType: model.MovementDecrease}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, movements, 1)
		assert.Equal(t, productB.ID.String(), movements[0].ProductID)
	})

	t.Run("pagination caps page size", func(t *testing.T) {
		movements, total, err := env.stockSvc.ListMovements(ctx, repository.MovementFilter{}, 1, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Len(t, movements, 2)
	})
}

func countMovementsFor(env *testEnv, productID uuid.UUID) (int64, error) {
	filter := repository.MovementFilter{ProductID: &productID}
	_, total, err := env.stockSvc.ListMovements(context.Background(), filter, 1, 50)
	return total, err
}
