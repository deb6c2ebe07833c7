package repository

import (
	"context"
	"time"

	"go-asso-stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the only writer of products.quantity. The write
// methods take the caller's *gorm.DB transaction so quantity changes and
// ledger lines commit together.
type LedgerRepository interface {
	LockProducts(tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)
	IncrementStock(tx *gorm.DB, tenantID, productID uuid.UUID, quantity int, updatedBy string) (int64, error)
	DecrementStock(tx *gorm.DB, tenantID, productID uuid.UUID, quantity int, updatedBy string) (int64, error)
	Append(tx *gorm.DB, entry *model.Transaction) error

	FindAll(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]model.Transaction, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Transaction, error)
	FindBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Transaction, error)
	Balances(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

// LockProducts reads the tenant's products with FOR UPDATE (ignored by SQLite).
// Rows are locked in id order so overlapping batches cannot deadlock.
func (r *ledgerRepo) LockProducts(tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id").
		Find(&products).Error
	return products, err
}

func (r *ledgerRepo) IncrementStock(tx *gorm.DB, tenantID, productID uuid.UUID, quantity int, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND tenant_id = ?", productID, tenantID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_by": updatedBy,
		})
	return res.RowsAffected, res.Error
}

// DecrementStock only matches when enough stock remains, so a stale
// pre-check can never push quantity below zero. Zero rows affected means
// the floor guard (or the tenant scope) refused the update.
func (r *ledgerRepo) DecrementStock(tx *gorm.DB, tenantID, productID uuid.UUID, quantity int, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND tenant_id = ? AND quantity >= ?", productID, tenantID, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_by": updatedBy,
		})
	return res.RowsAffected, res.Error
}

func (r *ledgerRepo) Append(tx *gorm.DB, entry *model.Transaction) error {
	return tx.Create(entry).Error
}

// withProduct resolves soft-deleted products and categories too: ledger
// lines outlive the catalog rows they reference.
func withProduct(db *gorm.DB) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return db.Preload("Product", unscoped).Preload("Product.Category", unscoped)
}

// TransactionFilter narrows a ledger listing. Zero values disable a
// criterion; Limit <= 0 means no limit.
type TransactionFilter struct {
	ProductID uuid.UUID
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// FindAll lists newest first
func (r *ledgerRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	query := withProduct(r.db.WithContext(ctx)).
		Where("tenant_id = ?", tenantID)
	if filter.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	err := query.Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *ledgerRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := withProduct(r.db.WithContext(ctx)).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *ledgerRepo) FindBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND created_at BETWEEN ? AND ?", tenantID, start, end).
		Order("created_at ASC").
		Find(&transactions).Error
	return transactions, err
}

type balanceRow struct {
	ProductID uuid.UUID
	Balance   int
}

// Balances sums signed ledger lines per product
func (r *ledgerRepo) Balances(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []balanceRow
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select(`product_id,
			COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0) AS balance`, model.TxIn).
		Where("tenant_id = ?", tenantID).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	balances := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		balances[row.ProductID] = row.Balance
	}
	return balances, nil
}
