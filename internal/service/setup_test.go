package service

import (
	"context"
	"testing"

	"warehouse/internal/database"
	"warehouse/internal/model"
	"warehouse/internal/repository"
	ws "warehouse/internal/websocket"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database
type testEnv struct {
	db           *gorm.DB
	txManager    repository.TransactionManager
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	invoiceRepo  repository.InvoiceRepository
	supplierRepo repository.SupplierRepository
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	tokenRepo    repository.TokenRepository

	stockSvc    StockService
	invoiceSvc  InvoiceService
	productSvc  ProductService
	supplierSvc SupplierService
	userSvc     UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedRoles(context.Background(), db))

	env := &testEnv{
		db:           db,
		txManager:    repository.NewTransactionManager(db),
		productRepo:  repository.NewProductRepository(db),
		movementRepo: repository.NewStockMovementRepository(db),
		invoiceRepo:  repository.NewInvoiceRepository(db),
		supplierRepo: repository.NewSupplierRepository(db),
		userRepo:     repository.NewUserRepository(db),
		roleRepo:     repository.NewRoleRepository(db),
		tokenRepo:    repository.NewTokenRepository(db),
	}

	hub := ws.NewHub()
	env.stockSvc = NewStockService(env.productRepo, env.movementRepo, env.userRepo, env.txManager, nil, hub)
	env.invoiceSvc = NewInvoiceService(env.invoiceRepo, env.productRepo, env.stockSvc, env.txManager)
	env.productSvc = NewProductService(env.productRepo, env.supplierRepo, env.stockSvc, env.txManager)
	env.supplierSvc = NewSupplierService(env.supplierRepo)
	env.userSvc = NewUserService(env.userRepo, env.roleRepo, env.tokenRepo, env.txManager, nil)

	return env
}

func (e *testEnv) createSupplier(t *testing.T, name string) *model.Supplier {
	t.Helper()
	supplier := &model.Supplier{
		Name:        name,
		PhoneNumber: "0123" + name,
		Email:       name + "@suppliers.test",
		Status:      model.StatusActive,
	}
	require.NoError(t, e.supplierRepo.Create(context.Background(), supplier))
	return supplier
}

func (e *testEnv) createProduct(t *testing.T, name string, stock float64, threshold int, price string) *model.Product {
	t.Helper()
	supplier := e.createSupplier(t, "supplier-of-"+name)
	unitPrice, err := decimal.NewFromString(price)
	require.NoError(t, err)

	product := &model.Product{
		Name:           name,
		SupplierID:     supplier.ID,
		ProductUnit:    "pcs",
		ThresholdValue: threshold,
		UnitPrice:      unitPrice,
		StockValue:     stock,
		Status:         model.StatusActive,
	}
	require.NoError(t, e.productRepo.Create(context.Background(), product))
	return product
}
