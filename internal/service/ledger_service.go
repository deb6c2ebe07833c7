package service

import (
	"context"
	"errors"
	"time"

	"go-asso-stock/internal/model"
	"go-asso-stock/internal/repository"
	"go-asso-stock/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier receives an event after a stock movement has committed
type Notifier interface {
	Publish(tenantID uuid.UUID, event interface{})
}

type DeductItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// LedgerService is the only path that changes product quantities. Every
// change is one database transaction holding both the quantity update and
// the ledger line, so quantity always equals the signed sum of the ledger.
type LedgerService interface {
	Replenish(ctx context.Context, scope Scope, productID uuid.UUID, quantity int) (*model.Transaction, error)
	DeductBatch(ctx context.Context, scope Scope, items []DeductItem) ([]model.Transaction, error)
	ListTransactions(ctx context.Context, scope Scope, filter repository.TransactionFilter) ([]model.TransactionView, error)
	GetTransaction(ctx context.Context, scope Scope, id uuid.UUID) (*model.TransactionView, error)
	VerifyInvariant(ctx context.Context, scope Scope) ([]model.InvariantViolation, error)
}

type ledgerService struct {
	db          *gorm.DB
	ledgerRepo  repository.LedgerRepository
	productRepo repository.ProductRepository
	notifier    Notifier
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func NewLedgerService(db *gorm.DB, lRepo repository.LedgerRepository, pRepo repository.ProductRepository, notifier Notifier, m *metrics.Metrics, log *zap.Logger) LedgerService {
	return &ledgerService{
		db:          db,
		ledgerRepo:  lRepo,
		productRepo: pRepo,
		notifier:    notifier,
		metrics:     m,
		log:         log,
	}
}

func (s *ledgerService) Replenish(ctx context.Context, scope Scope, productID uuid.UUID, quantity int) (*model.Transaction, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, precondition("product id is required")
	}
	if quantity <= 0 {
		return nil, precondition("quantity must be positive, got %d", quantity)
	}

	entry := &model.Transaction{
		Type:      model.TxIn,
		Quantity:  quantity,
		ProductID: productID,
		TenantID:  scope.TenantID,
		CreatedBy: scope.Actor,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.ledgerRepo.IncrementStock(tx, scope.TenantID, productID, quantity, scope.Actor)
		if err != nil {
			return err
		}
		if rows == 0 {
			return notFound("product %s not found", productID)
		}
		return s.ledgerRepo.Append(tx, entry)
	})
	if err != nil {
		appErr := asAppError("failed to replenish stock", err)
		s.metrics.RecordMovement(string(model.TxIn), string(appErr.Kind), quantity)
		if appErr.Kind == KindStore {
			s.log.Error("replenish failed", zap.Stringer("product_id", productID), zap.Error(err))
		}
		return nil, appErr
	}

	s.metrics.RecordMovement(string(model.TxIn), "success", quantity)
	s.log.Info("stock replenished",
		zap.Stringer("tenant_id", scope.TenantID),
		zap.Stringer("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("by", scope.Actor))

	s.notify(scope, "stock_replenished", []model.Transaction{*entry})
	return entry, nil
}

// DeductBatch removes stock for every item or for none. Requests for the
// same product are summed before being checked against the available
// quantity; the conditional decrement then guards against concurrent
// deductions that committed after the check.
func (s *ledgerService) DeductBatch(ctx context.Context, scope Scope, items []DeductItem) ([]model.Transaction, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, precondition("at least one item is required")
	}

	requested := make(map[uuid.UUID]int, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	units := 0
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, precondition("product id is required")
		}
		if item.Quantity <= 0 {
			return nil, precondition("quantity for product %s must be positive, got %d", item.ProductID, item.Quantity)
		}
		if _, seen := requested[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
		units += item.Quantity
	}

	var entries []model.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.ledgerRepo.LockProducts(tx, scope.TenantID, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		for _, id := range ids {
			product, ok := byID[id]
			if !ok {
				return notFound("product %s not found", id)
			}
			if requested[id] > product.Quantity {
				return insufficientStock("insufficient stock for %q: requested %d, available %d",
					product.Name, requested[id], product.Quantity)
			}
		}

		entries = make([]model.Transaction, 0, len(items))
		for _, item := range items {
			rows, err := s.ledgerRepo.DecrementStock(tx, scope.TenantID, item.ProductID, item.Quantity, scope.Actor)
			if err != nil {
				return err
			}
			if rows != 1 {
				return insufficientStock("insufficient stock for %q: stock changed during deduction",
					byID[item.ProductID].Name)
			}

			entry := model.Transaction{
				Type:      model.TxOut,
				Quantity:  item.Quantity,
				ProductID: item.ProductID,
				TenantID:  scope.TenantID,
				CreatedBy: scope.Actor,
			}
			if err := s.ledgerRepo.Append(tx, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		appErr := asAppError("failed to deduct stock", err)
		s.metrics.RecordMovement(string(model.TxOut), string(appErr.Kind), units)
		if appErr.Kind == KindStore {
			s.log.Error("deduction failed", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		} else {
			s.log.Info("deduction refused",
				zap.Stringer("tenant_id", scope.TenantID),
				zap.String("kind", string(appErr.Kind)),
				zap.String("reason", appErr.Message))
		}
		return nil, appErr
	}

	s.metrics.RecordMovement(string(model.TxOut), "success", units)
	s.log.Info("stock deducted",
		zap.Stringer("tenant_id", scope.TenantID),
		zap.Int("lines", len(entries)),
		zap.Int("units", units),
		zap.String("by", scope.Actor))

	s.notify(scope, "stock_deducted", entries)
	return entries, nil
}

// ListTransactions returns the tenant's ledger lines newest first,
// optionally narrowed to one product and a created_at window.
func (s *ledgerService) ListTransactions(ctx context.Context, scope Scope, filter repository.TransactionFilter) ([]model.TransactionView, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, precondition("limit and offset must not be negative")
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, precondition("from must not be after to")
	}
	defer s.metrics.TrackDBOperation("list_transactions")(time.Now())

	transactions, err := s.ledgerRepo.FindAll(ctx, scope.TenantID, filter)
	if err != nil {
		s.log.Error("failed to list transactions", zap.Stringer("tenant_id", scope.TenantID), zap.Error(err))
		return nil, storeFailure("failed to list transactions", err)
	}
	return model.ToTransactionViews(transactions), nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, scope Scope, id uuid.UUID) (*model.TransactionView, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	transaction, err := s.ledgerRepo.FindByID(ctx, scope.TenantID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("transaction %s not found", id)
	}
	if err != nil {
		s.log.Error("failed to get transaction", zap.Stringer("transaction_id", id), zap.Error(err))
		return nil, storeFailure("failed to get transaction", err)
	}
	view := transaction.ToView()
	return &view, nil
}

// VerifyInvariant lists live products whose stored quantity differs from
// the signed sum of their ledger lines. An empty result means the ledger
// and the catalog agree.
func (s *ledgerService) VerifyInvariant(ctx context.Context, scope Scope) ([]model.InvariantViolation, error) {
	if err := scope.valid(); err != nil {
		return nil, err
	}
	defer s.metrics.TrackDBOperation("verify_invariant")(time.Now())

	products, err := s.productRepo.FindAll(ctx, scope.TenantID)
	if err != nil {
		return nil, storeFailure("failed to list products", err)
	}
	balances, err := s.ledgerRepo.Balances(ctx, scope.TenantID)
	if err != nil {
		return nil, storeFailure("failed to sum ledger", err)
	}

	violations := []model.InvariantViolation{}
	for _, p := range products {
		if balance := balances[p.ID]; balance != p.Quantity {
			violations = append(violations, model.InvariantViolation{
				ProductID:      p.ID,
				ProductName:    p.Name,
				StoredQuantity: p.Quantity,
				LedgerQuantity: balance,
			})
		}
	}
	if len(violations) > 0 {
		s.log.Warn("ledger invariant violated",
			zap.Stringer("tenant_id", scope.TenantID),
			zap.Int("products", len(violations)))
	}
	return violations, nil
}

func (s *ledgerService) notify(scope Scope, action string, entries []model.Transaction) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(scope.TenantID, map[string]interface{}{
		"type":         "stock_update",
		"action":       action,
		"transactions": entries,
		"user": map[string]interface{}{
			"email": scope.Actor,
		},
	})
}
