package repository

import (
	"context"
	"errors"

	"go-asso-stock/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TenantRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Tenant, error)
	CreateIfAbsent(ctx context.Context, tenant *model.Tenant) (bool, error)
}

type tenantRepo struct {
	db *gorm.DB
}

func NewTenantRepo(db *gorm.DB) TenantRepository {
	return &tenantRepo{db}
}

// FindByEmail returns (nil, nil) when no association uses this email
func (r *tenantRepo) FindByEmail(ctx context.Context, email string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// CreateIfAbsent inserts the tenant unless the email is already taken.
// Concurrent callers race on the unique index, not on a read-then-write.
func (r *tenantRepo) CreateIfAbsent(ctx context.Context, tenant *model.Tenant) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(tenant)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
