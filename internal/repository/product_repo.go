package repository

import (
	"context"
	"time"

	"go-asso-stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy string) (int64, error)
	CountByCategory(tx *gorm.DB, tenantID, categoryID uuid.UUID) (int64, error)
	DeleteByCategory(tx *gorm.DB, tenantID, categoryID uuid.UUID, deletedBy string) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// withCategory preloads the category even when it was soft-deleted under
// the orphan policy, so readers still get a name.
func withCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := withCategory(r.db.WithContext(ctx)).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := withCategory(r.db.WithContext(ctx)).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update never touches quantity: that column belongs to the ledger
func (r *productRepo) Update(ctx context.Context, tenantID, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	delete(fields, "quantity")
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *productRepo) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_by": deletedBy,
		})
	return res.RowsAffected, res.Error
}

func (r *productRepo) CountByCategory(tx *gorm.DB, tenantID, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&model.Product{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) DeleteByCategory(tx *gorm.DB, tenantID, categoryID uuid.UUID, deletedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_by": deletedBy,
		})
	return res.RowsAffected, res.Error
}
