package service

import (
	"context"
	"testing"

	"warehouse/internal/apperr"
	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("opening stock goes through the ledger", func(t *testing.T) {
		supplier := env.createSupplier(t, "opening-stock")

		product, err := env.productSvc.Create(ctx, uuid.New().String(), CreateProductRequest{
			Name:           "pipes",
			SupplierID:     supplier.ID.String(),
			ProductUnit:    "m",
			ThresholdValue: 5,
			UnitPrice:      decimal.RequireFromString("4.20"),
			StockValue:     12,
		})
		require.NoError(t, err)
		assert.Equal(t, 12.0, product.StockValue)

		total, err := countMovementsFor(env, product.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)

		last, err := env.movementRepo.LastForProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MovementIncrease, last.MovementType)
		assert.Equal(t, 0.0, last.StockBefore)
		assert.Equal(t, 12.0, last.StockAfter)
	})

	t.Run("zero opening stock writes no movement", func(t *testing.T) {
		supplier := env.createSupplier(t, "no-stock")

		product, err := env.productSvc.Create(ctx, uuid.New().String(), CreateProductRequest{
			Name:           "valves",
			SupplierID:     supplier.ID.String(),
			ProductUnit:    "pcs",
			ThresholdValue: 2,
			UnitPrice:      decimal.RequireFromString("9.99"),
		})
		require.NoError(t, err)

		total, err := countMovementsFor(env, product.ID)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("unknown supplier is rejected", func(t *testing.T) {
		_, err := env.productSvc.Create(ctx, uuid.New().String(), CreateProductRequest{
			Name:           "orphans",
			SupplierID:     uuid.New().String(),
			ProductUnit:    "pcs",
			ThresholdValue: 1,
			UnitPrice:      decimal.RequireFromString("1.00"),
		})
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product := env.createProduct(t, "hinges", 30, 3, "0.75")

	t.Run("metadata updates leave stock untouched", func(t *testing.T) {
		newPrice := decimal.RequireFromString("0.99")
		updated, err := env.productSvc.Update(ctx, product.ID.String(), UpdateProductRequest{
			Name:      "brass hinges",
			UnitPrice: &newPrice,
		})
		require.NoError(t, err)
		assert.Equal(t, "brass hinges", updated.Name)
		assert.True(t, updated.UnitPrice.Equal(newPrice))
		assert.Equal(t, 30.0, updated.StockValue)
	})

	t.Run("delete is a soft deactivation", func(t *testing.T) {
		require.NoError(t, env.productSvc.Delete(ctx, product.ID.String()))

		stored, err := env.productRepo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInactive, stored.Status)

		// Inactive products are filtered from active listings
		_, total, err := env.productSvc.List(ctx, repository.ProductFilter{Status: model.StatusActive}, 1, 20)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
