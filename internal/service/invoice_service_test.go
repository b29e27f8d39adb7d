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

func TestInvoiceService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("allocates sequential numbers and prices lines", func(t *testing.T) {
		product := env.createProduct(t, "widget", 100, 5, "2.50")

		first, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName: "Acme Corp",
			Items: []InvoiceItemRequest{
				{ProductID: product.ID.String(), Quantity: 4},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "INV-000001", first.InvoiceNumber)
		assert.Equal(t, model.InvoicePending, first.InvoiceStatus)
		assert.True(t, first.Total.Equal(decimal.RequireFromString("10.00")), "total was %s", first.Total)
		assert.Nil(t, first.DatePaid)

		second, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{CustomerName: "Globex"})
		require.NoError(t, err)
		assert.Equal(t, "INV-000002", second.InvoiceNumber)
		assert.True(t, second.Total.IsZero())
	})

	t.Run("creating as Paid stamps date_paid", func(t *testing.T) {
		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName:  "Initech",
			InvoiceStatus: model.InvoicePaid,
		})
		require.NoError(t, err)
		assert.Equal(t, model.InvoicePaid, invoice.InvoiceStatus)
		require.NotNil(t, invoice.DatePaid)
	})

	t.Run("creating as Delivered is rejected", func(t *testing.T) {
		_, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName:  "Hooli",
			InvoiceStatus: model.InvoiceDelivered,
		})
		require.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		product := env.createProduct(t, "gizmo", 10, 1, "1.00")
		_, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName: "Umbrella",
			Items: []InvoiceItemRequest{
				{ProductID: product.ID.String(), Quantity: 0},
			},
		})
		require.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		_, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName: "Wonka",
			Items: []InvoiceItemRequest{
				{ProductID: uuid.New().String(), Quantity: 1},
			},
		})
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("creation moves no stock", func(t *testing.T) {
		product := env.createProduct(t, "sprocket", 20, 1, "3.00")
		_, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName: "Stark Industries",
			Items: []InvoiceItemRequest{
				{ProductID: product.ID.String(), Quantity: 5},
			},
		})
		require.NoError(t, err)

		stored, err := env.productRepo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 20.0, stored.StockValue)
	})
}

func TestInvoiceService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("replacing items re-prices and recomputes total", func(t *testing.T) {
		cheap := env.createProduct(t, "cheap", 50, 1, "1.00")
		dear := env.createProduct(t, "dear", 50, 1, "10.00")

		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName: "Acme Corp",
			Items: []InvoiceItemRequest{
				{ProductID: cheap.ID.String(), Quantity: 2},
			},
		})
		require.NoError(t, err)

		items := []InvoiceItemRequest{
			{ProductID: dear.ID.String(), Quantity: 3},
		}
		updated, err := env.invoiceSvc.Update(ctx, invoice.ID.String(), UpdateInvoiceRequest{Items: &items})
		require.NoError(t, err)
		assert.True(t, updated.Total.Equal(decimal.RequireFromString("30.00")), "total was %s", updated.Total)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, dear.ID, updated.Items[0].ProductID)
	})

	t.Run("items are frozen after payment", func(t *testing.T) {
		product := env.createProduct(t, "frozen", 50, 1, "2.00")

		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName: "Globex",
			Items: []InvoiceItemRequest{
				{ProductID: product.ID.String(), Quantity: 1},
			},
		})
		require.NoError(t, err)
		_, err = env.invoiceSvc.Pay(ctx, invoice.ID.String())
		require.NoError(t, err)

		items := []InvoiceItemRequest{
			{ProductID: product.ID.String(), Quantity: 5},
		}
		_, err = env.invoiceSvc.Update(ctx, invoice.ID.String(), UpdateInvoiceRequest{Items: &items})
		require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("customer fields are frozen after payment", func(t *testing.T) {
		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName:  "Initech",
			InvoiceStatus: model.InvoicePaid,
		})
		require.NoError(t, err)

		_, err = env.invoiceSvc.Update(ctx, invoice.ID.String(), UpdateInvoiceRequest{CustomerName: "Initech LLC"})
		require.ErrorIs(t, err, apperr.ErrInvalidTransition)

		stored, err := env.invoiceSvc.Get(ctx, invoice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Initech", stored.CustomerName)
	})
}

func TestInvoiceService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("pay moves Pending to Paid once", func(t *testing.T) {
		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{CustomerName: "Acme Corp"})
		require.NoError(t, err)

		paid, err := env.invoiceSvc.Pay(ctx, invoice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.InvoicePaid, paid.InvoiceStatus)
		require.NotNil(t, paid.DatePaid)

		_, err = env.invoiceSvc.Pay(ctx, invoice.ID.String())
		require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("supply requires Paid", func(t *testing.T) {
		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{CustomerName: "Globex"})
		require.NoError(t, err)

		_, err = env.invoiceSvc.Supply(ctx, uuid.New().String(), invoice.ID.String())
		require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("supply decreases stock and records invoice-linked movements", func(t *testing.T) {
		widget := env.createProduct(t, "widget-s", 10, 1, "2.00")
		gadget := env.createProduct(t, "gadget-s", 8, 1, "5.00")
		userID := uuid.New()

		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName:  "Initech",
			InvoiceStatus: model.InvoicePaid,
			Items: []InvoiceItemRequest{
				{ProductID: widget.ID.String(), Quantity: 4},
				{ProductID: gadget.ID.String(), Quantity: 3},
			},
		})
		require.NoError(t, err)

		delivered, err := env.invoiceSvc.Supply(ctx, userID.String(), invoice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceDelivered, delivered.InvoiceStatus)
		require.NotNil(t, delivered.DateSupplied)

		storedWidget, err := env.productRepo.FindByID(ctx, widget.ID)
		require.NoError(t, err)
		assert.Equal(t, 6.0, storedWidget.StockValue)

		storedGadget, err := env.productRepo.FindByID(ctx, gadget.ID)
		require.NoError(t, err)
		assert.Equal(t, 5.0, storedGadget.StockValue)

		movements, total, err := env.movementRepo.List(ctx, repository.MovementFilter{InvoiceID: &invoice.ID}, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, m := range movements {
			assert.Equal(t, model.MovementDecrease, m.MovementType)
			require.NotNil(t, m.UserID)
			assert.Equal(t, userID, *m.UserID)
		}

		// Delivered is terminal
		_, err = env.invoiceSvc.Supply(ctx, userID.String(), invoice.ID.String())
		require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})

	t.Run("insufficient stock rolls the whole fulfilment back", func(t *testing.T) {
		plenty := env.createProduct(t, "plenty", 100, 1, "1.00")
		scarce := env.createProduct(t, "scarce", 2, 1, "1.00")

		invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{
			CustomerName:  "Hooli",
			InvoiceStatus: model.InvoicePaid,
			Items: []InvoiceItemRequest{
				{ProductID: plenty.ID.String(), Quantity: 10},
				{ProductID: scarce.ID.String(), Quantity: 5},
			},
		})
		require.NoError(t, err)

		_, err = env.invoiceSvc.Supply(ctx, uuid.New().String(), invoice.ID.String())
		require.ErrorIs(t, err, apperr.ErrInsufficientStock)

		// No partial movement survives
		storedPlenty, err := env.productRepo.FindByID(ctx, plenty.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, storedPlenty.StockValue)

		stored, err := env.invoiceSvc.Get(ctx, invoice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.InvoicePaid, stored.InvoiceStatus)
		assert.Nil(t, stored.DateSupplied)

		_, total, err := env.movementRepo.List(ctx, repository.MovementFilter{InvoiceID: &invoice.ID}, 1, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	invoice, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{CustomerName: "Acme Corp"})
	require.NoError(t, err)

	require.NoError(t, env.invoiceSvc.Delete(ctx, invoice.ID.String()))

	_, err = env.invoiceSvc.Get(ctx, invoice.ID.String())
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// Soft deleted: number stays burned, the next invoice continues the sequence
	next, err := env.invoiceSvc.Create(ctx, CreateInvoiceRequest{CustomerName: "Globex"})
	require.NoError(t, err)
	assert.NotEqual(t, invoice.InvoiceNumber, next.InvoiceNumber)
}
