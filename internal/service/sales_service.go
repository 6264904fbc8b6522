package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/repository"
)

type SalesService struct {
	sales  SaleStore
	logger *zap.Logger
}

func NewSalesService(sales SaleStore, logger *zap.Logger) *SalesService {
	return &SalesService{
		sales:  sales,
		logger: logger,
	}
}

func (s *SalesService) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.sales.List(ctx)
}

func (s *SalesService) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.sales.Get(ctx, saleID)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// UpdateSaleStatus is a pure status transition: any status may follow any
// status, and stock is never touched. Marking a sale Cancelado does NOT
// restore its units; restock is a manual correction.
func (s *SalesService) UpdateSaleStatus(ctx context.Context, saleID string, status domain.SaleStatus) error {
	if !status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: "unknown status " + string(status)}
	}

	if err := s.sales.UpdateStatus(ctx, saleID, status); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return ErrSaleNotFound
		}
		return err
	}

	s.logger.Info("Sale status updated",
		zap.String("sale_id", saleID),
		zap.String("status", string(status)))
	return nil
}
