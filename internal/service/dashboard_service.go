package service

import (
	"context"
	"sort"
	"time"

	"go-asso-stock/internal/model"
	"go-asso-stock/internal/repository"
	"go-asso-stock/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const dayLayout = "2006-01-02"

// DashboardService computes read-only aggregates. Calling any method twice
// without an intervening write returns the same result.
type DashboardService interface {
	OverviewStats(ctx context.Context, scope Scope) (*model.OverviewStats, error)
	CategoryDistribution(ctx context.Context, scope Scope, topN int) ([]model.CategoryCount, error)
	StockSummary(ctx context.Context, scope Scope) (*model.StockSummary, error)
	RecentTransactions(ctx context.Context, scope Scope, limit int) ([]model.TransactionView, error)
	StockMovement(ctx context.Context, scope Scope, days int) ([]model.StockMovementData, error)
}

type dashboardService struct {
	dashboardRepo repository.DashboardRepository
	productRepo   repository.ProductRepository
	ledgerRepo    repository.LedgerRepository
	recentLimit   int
	defaultTopN   int
	metrics       *metrics.Metrics
	log           *zap.Logger
	now           func() time.Time
}

func NewDashboardService(dRepo repository.DashboardRepository, pRepo repository.ProductRepository, lRepo repository.LedgerRepository, recentLimit, defaultTopN int, m *metrics.Metrics, log *zap.Logger) DashboardService {
	return &dashboardService{
		dashboardRepo: dRepo,
		productRepo:   pRepo,
		ledgerRepo:    lRepo,
		recentLimit:   recentLimit,
		defaultTopN:   defaultTopN,
		metrics:       m,
		log:           log,
		now:           time.Now,
	}
}

func (s *dashboardService) OverviewStats(ctx context.Context, scope Scope) (*model.OverviewStats, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	defer s.metrics.TrackDBOperation("overview_stats")(time.Now())

	stats := &model.OverviewStats{StockValue: decimal.Zero}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.dashboardRepo.CountProducts(gctx, scope.TenantID)
		stats.TotalProducts = n
		return err
	})
	g.Go(func() error {
		n, err := s.dashboardRepo.CountReferencedCategories(gctx, scope.TenantID)
		stats.TotalCategories = n
		return err
	})
	g.Go(func() error {
		n, err := s.dashboardRepo.CountTransactions(gctx, scope.TenantID)
		stats.TotalTransactions = n
		return err
	})
	g.Go(func() error {
		products, err := s.productRepo.FindAll(gctx, scope.TenantID)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for i := range products {
			total = total.Add(products[i].StockValue())
		}
		stats.StockValue = total
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error("failed to compute overview stats", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to compute overview stats", err)
	}
	return stats, nil
}

// CategoryDistribution returns the topN categories by live product count.
// Ties keep category creation order. topN <= 0 falls back to the default.
func (s *dashboardService) CategoryDistribution(ctx context.Context, scope Scope, topN int) ([]model.CategoryCount, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.defaultTopN
	}

	counts, err := s.dashboardRepo.CategoryProductCounts(ctx, scope.TenantID)
	if err != nil {
		s.log.Error("failed to compute category distribution", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to compute category distribution", err)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].ProductCount > counts[j].ProductCount
	})
	if len(counts) > topN {
		counts = counts[:topN]
	}
	if counts == nil {
		counts = []model.CategoryCount{}
	}
	return counts, nil
}

// StockSummary buckets live products by quantity. Low-stock products come
// before out-of-stock ones in CriticalProducts.
func (s *dashboardService) StockSummary(ctx context.Context, scope Scope) (*model.StockSummary, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindAll(ctx, scope.TenantID)
	if err != nil {
		s.log.Error("failed to compute stock summary", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to compute stock summary", err)
	}

	summary := &model.StockSummary{}
	var low, out []model.ProductView
	for i := range products {
		switch model.LevelOf(products[i].Quantity) {
		case model.LevelIn:
			summary.InStockCount++
		case model.LevelLow:
			summary.LowStockCount++
			low = append(low, products[i].ToView())
		case model.LevelOut:
			summary.OutOfStockCount++
			out = append(out, products[i].ToView())
		}
	}
	summary.CriticalProducts = append(append([]model.ProductView{}, low...), out...)
	return summary, nil
}

// RecentTransactions returns the newest ledger lines; limit <= 0 uses the
// configured default.
func (s *dashboardService) RecentTransactions(ctx context.Context, scope Scope, limit int) ([]model.TransactionView, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.recentLimit
	}

	transactions, err := s.ledgerRepo.FindAll(ctx, scope.TenantID, repository.TransactionFilter{Limit: limit})
	if err != nil {
		s.log.Error("failed to list recent transactions", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to list recent transactions", err)
	}
	return model.ToTransactionViews(transactions), nil
}

// StockMovement sums IN and OUT units per day over the last days days,
// today included. Days without movement are reported with zeroes.
func (s *dashboardService) StockMovement(ctx context.Context, scope Scope, days int) ([]model.StockMovementData, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	if days > 90 {
		return nil, precondition("days must be at most 90, got %d", days)
	}

	now := s.now()
	year, month, day := now.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	transactions, err := s.ledgerRepo.FindBetween(ctx, scope.TenantID, start, now)
	if err != nil {
		s.log.Error("failed to load stock movement", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to load stock movement", err)
	}

	data := make([]model.StockMovementData, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(dayLayout)
		data[i] = model.StockMovementData{Date: date}
		index[date] = i
	}

	for _, tx := range transactions {
		i, ok := index[tx.CreatedAt.In(now.Location()).Format(dayLayout)]
		if !ok {
			continue
		}
		if tx.Type == model.TxIn {
			data[i].Inbound += tx.Quantity
		} else {
			data[i].Outbound += tx.Quantity
		}
	}
	return data, nil
}
