package service

import (
	"context"
	"strings"

	"go-asso-stock/internal/model"
	"go-asso-stock/internal/repository"
	"go-asso-stock/pkg/metrics"

	"go.uber.org/zap"
)

// TenantService maps a verified identity (email) to its association
type TenantService interface {
	ResolveOrCreate(ctx context.Context, email, name string) (*model.Tenant, error)
	Get(ctx context.Context, email string) (*model.Tenant, error)
}

type tenantService struct {
	repo    repository.TenantRepository
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewTenantService(repo repository.TenantRepository, m *metrics.Metrics, log *zap.Logger) TenantService {
	return &tenantService{repo: repo, metrics: m, log: log}
}

// ResolveOrCreate is idempotent: concurrent first contacts for one email
// end up on the same row thanks to the unique index.
func (s *tenantService) ResolveOrCreate(ctx context.Context, email, name string) (*model.Tenant, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, precondition("email is required")
	}

	tenant, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("failed to look up association", zap.String("email", email), zap.Error(err))
		return nil, storeFailure("failed to look up association", err)
	}
	if tenant != nil {
		return tenant, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoAssociation
	}

	created, err := s.repo.CreateIfAbsent(ctx, &model.Tenant{Email: email, Name: name})
	if err != nil {
		s.log.Error("failed to create association", zap.String("email", email), zap.Error(err))
		return nil, storeFailure("failed to create association", err)
	}
	if created {
		s.metrics.RecordTenantCreated()
		s.log.Info("association created", zap.String("email", email), zap.String("name", name))
	}

	// Re-read: when another request won the insert race ours did nothing
	tenant, err = s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeFailure("failed to look up association", err)
	}
	if tenant == nil {
		return nil, ErrNoAssociation
	}
	return tenant, nil
}

// Get never creates. An empty email is reported as no association without
// touching the store.
func (s *tenantService) Get(ctx context.Context, email string) (*model.Tenant, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrNoAssociation
	}

	tenant, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("failed to look up association", zap.String("email", email), zap.Error(err))
		return nil, storeFailure("failed to look up association", err)
	}
	if tenant == nil {
		return nil, ErrNoAssociation
	}
	return tenant, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
