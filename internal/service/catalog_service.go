package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
	// ErrStockConflict covers the rare case where a deduction lost a race
	// but by re-read time the shortage had already resolved.
	ErrStockConflict = errors.New("stock conflict, retry checkout")
)

// LowStockThreshold is the total-units level under which a product shows
// up in the admin low-stock report.
const LowStockThreshold = 10

type CatalogService struct {
	products ProductStore
	logger   *zap.Logger
}

func NewCatalogService(products ProductStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		logger:   logger,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if req.Price < 0 {
		return nil, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if err := req.Variants.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ProductID: uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Price:     req.Price,
		Image:     req.Image,
		Category:  req.Category,
		Variants:  req.Variants.Normalized(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to save product",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ProductID),
		zap.String("name", product.Name),
		zap.Int("initial_units", product.Variants.TotalUnits()))

	return product, nil
}

func (s *CatalogService) UpdateProductDetails(ctx context.Context, productID string, fields domain.ProductUpdate) error {
	if fields.Name != nil && strings.TrimSpace(*fields.Name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if fields.Price != nil && *fields.Price < 0 {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}

	if err := s.products.UpdateDetails(ctx, productID, fields); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.logger.Info("Product details updated", zap.String("product_id", productID))
	return nil
}

// SetVariantStock replaces the full variants map. Checkouts racing with
// this overwrite can be clobbered; accepted limitation of the manual
// correction path.
func (s *CatalogService) SetVariantStock(ctx context.Context, productID string, variants domain.Variants) error {
	if err := variants.Validate(); err != nil {
		return err
	}

	if err := s.products.SetVariants(ctx, productID, variants.Normalized()); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.logger.Info("Variant stock replaced",
		zap.String("product_id", productID),
		zap.Int("total_units", variants.TotalUnits()))
	return nil
}

// DeleteProduct hard-deletes. Idempotent: an absent id is already-deleted.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", productID))
	return nil
}

// LowStockProducts lists products whose total units across all sizes fall
// below the threshold, for the admin dashboard.
func (s *CatalogService) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.Variants.TotalUnits() < LowStockThreshold {
			low = append(low, p)
		}
	}
	return low, nil
}
