package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-asso-stock/internal/model"
	"go-asso-stock/internal/repository"
	"go-asso-stock/pkg/config"
	"go-asso-stock/pkg/metrics"
	"go-asso-stock/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type CreateProductInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	ImageURL    string           `json:"image_url" validate:"max=512"`
	CategoryID  uuid.UUID        `json:"category_id" validate:"uuid_required"`
	Unit        string           `json:"unit" validate:"max=20"`
}

// UpdateProductInput changes descriptive fields only; quantity moves
// through the ledger and the category is fixed at creation.
type UpdateProductInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	ImageURL    string           `json:"image_url" validate:"max=512"`
}

type CatalogService interface {
	ListCategories(ctx context.Context, scope Scope) ([]model.Category, error)
	CreateCategory(ctx context.Context, scope Scope, in *CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, scope Scope, id uuid.UUID, in *CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, scope Scope, id uuid.UUID) error

	ListProducts(ctx context.Context, scope Scope) ([]model.ProductView, error)
	GetProduct(ctx context.Context, scope Scope, id uuid.UUID) (*model.ProductView, error)
	CreateProduct(ctx context.Context, scope Scope, in *CreateProductInput) (*model.ProductView, error)
	UpdateProduct(ctx context.Context, scope Scope, id uuid.UUID, in *UpdateProductInput) (*model.ProductView, error)
	DeleteProduct(ctx context.Context, scope Scope, id uuid.UUID) error
}

type catalogService struct {
	db           *gorm.DB
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	deletePolicy string
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewCatalogService(db *gorm.DB, cRepo repository.CategoryRepository, pRepo repository.ProductRepository, deletePolicy string, m *metrics.Metrics, log *zap.Logger) CatalogService {
	return &catalogService{
		db:           db,
		categoryRepo: cRepo,
		productRepo:  pRepo,
		deletePolicy: deletePolicy,
		metrics:      m,
		log:          log,
	}
}

func (s *catalogService) ListCategories(ctx context.Context, scope Scope) ([]model.Category, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	defer s.metrics.TrackDBOperation("list_categories")(time.Now())

	categories, err := s.categoryRepo.FindAll(ctx, scope.TenantID)
	if err != nil {
		s.log.Error("failed to list categories", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to list categories", err)
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, scope Scope, in *CategoryInput) (*model.Category, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.First(in); err != nil {
		return nil, precondition("%s", err.Error())
	}

	category := &model.Category{
		Name:        in.Name,
		Description: in.Description,
		TenantID:    scope.TenantID,
	}
	category.CreatedBy = scope.Actor
	category.UpdatedBy = scope.Actor

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		s.log.Error("failed to create category", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to create category", err)
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, scope Scope, id uuid.UUID, in *CategoryInput) (*model.Category, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, precondition("category id is required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.First(in); err != nil {
		return nil, precondition("%s", err.Error())
	}

	rows, err := s.categoryRepo.Update(ctx, scope.TenantID, id, in.Name, in.Description, scope.Actor)
	if err != nil {
		s.log.Error("failed to update category", zap.Stringer("category_id", id), zap.Error(err))
		return nil, storeFailure("failed to update category", err)
	}
	if rows == 0 {
		return nil, notFound("category %s not found", id)
	}

	category, err := s.categoryRepo.FindByID(ctx, scope.TenantID, id)
	if err != nil {
		return nil, storeFailure("failed to reload category", err)
	}
	return category, nil
}

// DeleteCategory applies the configured policy for products still in the
// category, all inside one transaction.
func (s *catalogService) DeleteCategory(ctx context.Context, scope Scope, id uuid.UUID) error {
	if err := scope.valid(); err != nil {
		return err
	}
	if id == uuid.Nil {
		return precondition("category id is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch s.deletePolicy {
		case config.DeleteCascade:
			if _, err := s.productRepo.DeleteByCategory(tx, scope.TenantID, id, scope.Actor); err != nil {
				return err
			}
		case config.DeleteOrphan:
			// products keep pointing at the soft-deleted category
		default:
			count, err := s.productRepo.CountByCategory(tx, scope.TenantID, id)
			if err != nil {
				return err
			}
			if count > 0 {
				return conflict("category still has %d product(s)", count)
			}
		}

		rows, err := s.categoryRepo.Delete(tx, scope.TenantID, id, scope.Actor)
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound("category %s not found", id)
		}
		return nil
	})
	if err != nil {
		appErr := asAppError("failed to delete category", err)
		if appErr.Kind == KindStore {
			s.log.Error("failed to delete category", zap.Stringer("category_id", id), zap.Error(err))
		}
		return appErr
	}

	s.log.Info("category deleted",
		zap.Stringer("tenant_id", scope.TenantID),
		zap.Stringer("category_id", id),
		zap.String("policy", s.deletePolicy))
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, scope Scope) ([]model.ProductView, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	defer s.metrics.TrackDBOperation("list_products")(time.Now())

	products, err := s.productRepo.FindAll(ctx, scope.TenantID)
	if err != nil {
		s.log.Error("failed to list products", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to list products", err)
	}
	return model.ToProductViews(products), nil
}

func (s *catalogService) GetProduct(ctx context.Context, scope Scope, id uuid.UUID) (*model.ProductView, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	product, err := s.findProduct(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	view := product.ToView()
	return &view, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, scope Scope, in *CreateProductInput) (*model.ProductView, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.First(in); err != nil {
		return nil, precondition("%s", err.Error())
	}

	// The category must belong to the same tenant
	if _, err := s.categoryRepo.FindByID(ctx, scope.TenantID, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("category %s not found", in.CategoryID)
		}
		return nil, storeFailure("failed to look up category", err)
	}

	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    0,
		ImageURL:    in.ImageURL,
		Unit:        in.Unit,
		CategoryID:  in.CategoryID,
		TenantID:    scope.TenantID,
	}
	product.CreatedBy = scope.Actor
	product.UpdatedBy = scope.Actor

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.log.Error("failed to create product", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to create product", err)
	}

	return s.GetProduct(ctx, scope, product.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, scope Scope, id uuid.UUID, in *UpdateProductInput) (*model.ProductView, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, precondition("product id is required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.First(in); err != nil {
		return nil, precondition("%s", err.Error())
	}

	rows, err := s.productRepo.Update(ctx, scope.TenantID, id, map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
		"price":       *in.Price,
		"image_url":   in.ImageURL,
		"updated_by":  scope.Actor,
	})
	if err != nil {
		s.log.Error("failed to update product", zap.Stringer("product_id", id), zap.Error(err))
		return nil, storeFailure("failed to update product", err)
	}
	if rows == 0 {
		return nil, notFound("product %s not found", id)
	}

	return s.GetProduct(ctx, scope, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, scope Scope, id uuid.UUID) error {
	if err := scope.valid(); err != nil {
		return err
	}
	if id == uuid.Nil {
		return precondition("product id is required")
	}

	rows, err := s.productRepo.Delete(ctx, scope.TenantID, id, scope.Actor)
	if err != nil {
		s.log.Error("failed to delete product", zap.Stringer("product_id", id), zap.Error(err))
		return storeFailure("failed to delete product", err)
	}
	if rows == 0 {
		return notFound("product %s not found", id)
	}
	return nil
}

func (s *catalogService) findProduct(ctx context.Context, scope Scope, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, scope.TenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product %s not found", id)
	}
	if err != nil {
		s.log.Error("failed to get product", zap.Stringer("product_id", id), zap.Error(err))
		return nil, storeFailure("failed to get product", err)
	}
	return product, nil
}
