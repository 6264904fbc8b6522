package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/repository"
)

// CheckoutService converts a cart into a committed Sale plus stock
// deductions. Stock never goes negative: each product's deduction is a
// single conditional update, and a failure after earlier products were
// already deducted is compensated by restoring them, so the operation is
// all-or-nothing from the caller's perspective.
type CheckoutService struct {
	products ProductStore
	sales    SaleStore
	events   EventPublisher
	logger   *zap.Logger
}

func NewCheckoutService(products ProductStore, sales SaleStore, events EventPublisher, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		products: products,
		sales:    sales,
		events:   events,
		logger:   logger,
	}
}

// productDeduction groups a request's lines by product, preserving the
// first-seen input order so deductions apply deterministically per request.
type productDeduction struct {
	productID  string
	quantities map[domain.Size]int
}

func aggregateLines(items []domain.CartLine) ([]productDeduction, error) {
	var order []productDeduction
	index := make(map[string]int)

	for _, line := range items {
		if line.ProductID == "" {
			return nil, &domain.ValidationError{Field: "product_id", Reason: "must not be empty"}
		}
		if !line.Size.Valid() {
			return nil, &domain.ValidationError{Field: "size", Reason: "unknown size " + string(line.Size)}
		}
		if line.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		if line.UnitPrice < 0 {
			return nil, &domain.ValidationError{Field: "unit_price", Reason: "must not be negative"}
		}

		i, ok := index[line.ProductID]
		if !ok {
			i = len(order)
			index[line.ProductID] = i
			order = append(order, productDeduction{
				productID:  line.ProductID,
				quantities: make(map[domain.Size]int),
			})
		}
		order[i].quantities[line.Size] += line.Quantity
	}

	return order, nil
}

func (s *CheckoutService) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "cart is empty"}
	}

	deductions, err := aggregateLines(req.Items)
	if err != nil {
		return nil, err
	}

	saleID := req.IdempotencyKey
	if saleID == "" {
		saleID = uuid.NewString()
	} else if existing, err := s.sales.Get(ctx, saleID); err == nil {
		// Retry of a checkout that already committed.
		s.logger.Info("Checkout replayed, returning recorded sale",
			zap.String("sale_id", saleID))
		return existing, nil
	} else if !errors.Is(err, repository.ErrSaleNotFound) {
		return nil, fmt.Errorf("failed to check for existing sale: %w", err)
	}

	applied, deducted, err := s.deductAll(ctx, deductions)
	if err != nil {
		s.rollback(ctx, applied)
		return nil, err
	}

	total := 0.0
	lineItems := make([]domain.SaleItem, 0, len(req.Items))
	for _, line := range req.Items {
		total += line.UnitPrice * float64(line.Quantity)
		lineItems = append(lineItems, domain.SaleItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      line.Size,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	sale := &domain.Sale{
		SaleID:    saleID,
		Items:     lineItems,
		Total:     total,
		Status:    domain.StatusPendiente,
		CreatedAt: time.Now(),
	}

	if err := s.sales.Create(ctx, sale); err != nil {
		s.rollback(ctx, applied)
		if errors.Is(err, repository.ErrSaleExists) {
			// A concurrent retry of the same idempotency key won the
			// insert; its deductions stand, ours were just undone.
			existing, getErr := s.sales.Get(ctx, saleID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load concurrently recorded sale: %w", getErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	s.logger.Info("Checkout completed",
		zap.String("sale_id", sale.SaleID),
		zap.Int("line_count", len(sale.Items)),
		zap.Float64("total", sale.Total))

	s.publish(ctx, sale, deducted)

	return sale, nil
}

// deductAll walks the per-product deductions in order. On failure it
// returns the deductions already applied so the caller can compensate.
func (s *CheckoutService) deductAll(ctx context.Context, deductions []productDeduction) (applied []productDeduction, updated map[string]*domain.Product, err error) {
	updated = make(map[string]*domain.Product, len(deductions))

	for _, d := range deductions {
		product, err := s.products.DeductVariants(ctx, d.productID, d.quantities)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return applied, updated, ErrProductNotFound
			}
			if errors.Is(err, repository.ErrInsufficientStock) {
				return applied, updated, s.explainShortage(ctx, d)
			}
			return applied, updated, fmt.Errorf("failed to deduct stock for %s: %w", d.productID, err)
		}
		applied = append(applied, d)
		updated[d.productID] = product
	}

	return applied, updated, nil
}

// explainShortage re-reads the product after a conditional failure to name
// the offending size and its available count.
func (s *CheckoutService) explainShortage(ctx context.Context, d productDeduction) error {
	product, err := s.products.Get(ctx, d.productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return ErrStockConflict
	}

	for _, size := range domain.AllSizes() {
		qty, ok := d.quantities[size]
		if !ok {
			continue
		}
		if product.Variants[size] < qty {
			return &domain.InsufficientStockError{
				ProductID: product.ProductID,
				Name:      product.Name,
				Size:      size,
				Requested: qty,
				Available: product.Variants[size],
			}
		}
	}

	// The racing checkout that beat us has already been compensated or the
	// stock was corrected between the failure and the re-read.
	return ErrStockConflict
}

// rollback restores deductions already applied by a checkout that failed
// later. Restore failures are logged; the stock drifts low, never negative.
func (s *CheckoutService) rollback(ctx context.Context, applied []productDeduction) {
	for i := len(applied) - 1; i >= 0; i-- {
		d := applied[i]
		if err := s.products.RestoreVariants(ctx, d.productID, d.quantities); err != nil {
			s.logger.Error("Failed to restore stock after aborted checkout",
				zap.String("product_id", d.productID),
				zap.Error(err))
		}
	}
}

func (s *CheckoutService) publish(ctx context.Context, sale *domain.Sale, updated map[string]*domain.Product) {
	if s.events == nil {
		return
	}

	if err := s.events.PublishSaleRegistered(ctx, sale); err != nil {
		s.logger.Error("Failed to publish sale event",
			zap.String("sale_id", sale.SaleID),
			zap.Error(err))
	}

	perProduct := make(map[string]map[domain.Size]int)
	for _, item := range sale.Items {
		if perProduct[item.ProductID] == nil {
			perProduct[item.ProductID] = make(map[domain.Size]int)
		}
		perProduct[item.ProductID][item.Size] += item.Quantity
	}

	for productID, quantities := range perProduct {
		product, ok := updated[productID]
		if !ok {
			continue
		}
		if err := s.events.PublishStockDeducted(ctx, sale.SaleID, product, quantities); err != nil {
			s.logger.Error("Failed to publish stock event",
				zap.String("product_id", productID),
				zap.Error(err))
		}
	}
}
