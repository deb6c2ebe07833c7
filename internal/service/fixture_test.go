package service

import (
	"context"
	"sync"
	"testing"

	"go-asso-stock/internal/model"
	"go-asso-stock/internal/repository"
	"go-asso-stock/pkg/database/databasetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []uuid.UUID
}

func (n *recordingNotifier) Publish(tenantID uuid.UUID, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, tenantID)
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	tenants   TenantService
	catalog   CatalogService
	ledger    LedgerService
	dashboard DashboardService
	notifier  *recordingNotifier
}

func newFixture(t *testing.T, deletePolicy string) *fixture {
	t.Helper()
	db := databasetest.New(t)
	log := zap.NewNop()

	productRepo := repository.NewProductRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	notifier := &recordingNotifier{}

	return &fixture{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		tenants:   NewTenantService(repository.NewTenantRepo(db), nil, log),
		catalog:   NewCatalogService(db, repository.NewCategoryRepo(db), productRepo, deletePolicy, nil, log),
		ledger:    NewLedgerService(db, ledgerRepo, productRepo, notifier, nil, log),
		dashboard: NewDashboardService(repository.NewDashboardRepo(db), productRepo, ledgerRepo, 10, 5, nil, log),
		notifier:  notifier,
	}
}

func (f *fixture) tenant(email string) Scope {
	f.t.Helper()
	tenant, err := f.tenants.ResolveOrCreate(f.ctx, email, "Association "+email)
	if err != nil {
		f.t.Fatalf("resolve tenant %s: %v", email, err)
	}
	return Scope{TenantID: tenant.ID, Actor: tenant.Email}
}

func (f *fixture) category(scope Scope, name string) *model.Category {
	f.t.Helper()
	category, err := f.catalog.CreateCategory(f.ctx, scope, &CategoryInput{Name: name})
	if err != nil {
		f.t.Fatalf("create category %s: %v", name, err)
	}
	return category
}

// product creates a product and brings it to quantity through the ledger
func (f *fixture) product(scope Scope, categoryID uuid.UUID, name, price string, quantity int) *model.ProductView {
	f.t.Helper()
	p := decimal.RequireFromString(price)
	view, err := f.catalog.CreateProduct(f.ctx, scope, &CreateProductInput{
		Name:       name,
		Price:      &p,
		CategoryID: categoryID,
		Unit:       "pcs",
	})
	if err != nil {
		f.t.Fatalf("create product %s: %v", name, err)
	}
	if quantity > 0 {
		if _, err := f.ledger.Replenish(f.ctx, scope, view.ID, quantity); err != nil {
			f.t.Fatalf("replenish %s: %v", name, err)
		}
	}
	return view
}

func (f *fixture) quantity(scope Scope, productID uuid.UUID) int {
	f.t.Helper()
	view, err := f.catalog.GetProduct(f.ctx, scope, productID)
	if err != nil {
		f.t.Fatalf("get product %s: %v", productID, err)
	}
	return view.Quantity
}

func (f *fixture) countTransactions(scope Scope) int64 {
	f.t.Helper()
	var count int64
	if err := f.db.Model(&model.Transaction{}).Where("tenant_id = ?", scope.TenantID).Count(&count).Error; err != nil {
		f.t.Fatalf("count transactions: %v", err)
	}
	return count
}

func (f *fixture) assertConsistent(scope Scope) {
	f.t.Helper()
	violations, err := f.ledger.VerifyInvariant(f.ctx, scope)
	if err != nil {
		f.t.Fatalf("verify invariant: %v", err)
	}
	if len(violations) != 0 {
		f.t.Errorf("Expected ledger and quantities to agree, got %+v", violations)
	}
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected a %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("Expected kind %s, got %s (%v)", want, got, err)
	}
}
