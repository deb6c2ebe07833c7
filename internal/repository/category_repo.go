package repository

import (
	"context"
	"time"

	"go-asso-stock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepository scopes every statement by tenant id
type CategoryRepository interface {
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.Category, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, tenantID, id uuid.UUID, name, description, updatedBy string) (int64, error)
	Delete(tx *gorm.DB, tenantID, id uuid.UUID, deletedBy string) (int64, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepo) Update(ctx context.Context, tenantID, id uuid.UUID, name, description, updatedBy string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{
			"name":        name,
			"description": description,
			"updated_by":  updatedBy,
		})
	return res.RowsAffected, res.Error
}

// Delete soft-deletes inside the caller's transaction so the product side
// of the delete policy commits with it.
func (r *categoryRepo) Delete(tx *gorm.DB, tenantID, id uuid.UUID, deletedBy string) (int64, error) {
	res := tx.Model(&model.Category{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_by": deletedBy,
		})
	return res.RowsAffected, res.Error
}
