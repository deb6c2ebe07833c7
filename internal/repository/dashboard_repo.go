package repository

import (
	"context"

	"go-asso-stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DashboardRepository holds the read-only aggregate queries
type DashboardRepository interface {
	CountProducts(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountReferencedCategories(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountTransactions(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CategoryProductCounts(ctx context.Context, tenantID uuid.UUID) ([]model.CategoryCount, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) CountProducts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// CountReferencedCategories counts categories used by at least one product,
// not category rows.
func (r *dashboardRepo) CountReferencedCategories(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tenant_id = ?", tenantID).
		Distinct("category_id").
		Count(&count).Error
	return count, err
}

func (r *dashboardRepo) CountTransactions(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// CategoryProductCounts returns every live category of the tenant with its
// live product count, in creation order.
func (r *dashboardRepo) CategoryProductCounts(ctx context.Context, tenantID uuid.UUID) ([]model.CategoryCount, error) {
	var counts []model.CategoryCount
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.name AS name, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.tenant_id = categories.tenant_id AND products.deleted_at IS NULL").
		Where("categories.tenant_id = ? AND categories.deleted_at IS NULL", tenantID).
		Group("categories.id, categories.name, categories.created_at").
		Order("categories.created_at ASC, categories.id ASC").
		Scan(&counts).Error
	return counts, err
}
