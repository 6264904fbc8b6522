package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

func TestUpdateSaleStatus(t *testing.T) {
	sales := newMemSaleStore()
	require.NoError(t, sales.Create(context.Background(), &domain.Sale{
		SaleID: "S1",
		Status: domain.StatusPendiente,
	}))
	svc := NewSalesService(sales, zap.NewNop())

	require.NoError(t, svc.UpdateSaleStatus(context.Background(), "S1", domain.StatusEnviado))

	sale, err := svc.GetSale(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnviado, sale.Status)

	// No transition restrictions: Entregado back to Pendiente is allowed.
	require.NoError(t, svc.UpdateSaleStatus(context.Background(), "S1", domain.StatusPendiente))
}

func TestUpdateSaleStatusValidation(t *testing.T) {
	svc := NewSalesService(newMemSaleStore(), zap.NewNop())

	err := svc.UpdateSaleStatus(context.Background(), "S1", "Perdido")
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)

	err = svc.UpdateSaleStatus(context.Background(), "missing", domain.StatusEnviado)
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

// Cancelling a sale never restores stock: restock is a manual correction.
func TestCancelDoesNotRestoreStock(t *testing.T) {
	products := newMemProductStore(
		testProduct("P", "Remera", 1000, domain.Variants{domain.SizeM: 5}),
	)
	sales := newMemSaleStore()
	checkout := newCheckout(products, sales, nil)
	svc := NewSalesService(sales, zap.NewNop())

	sale, err := checkout.Checkout(context.Background(), domain.CheckoutRequest{
		Items: []domain.CartLine{
			{ProductID: "P", Size: domain.SizeM, Quantity: 2, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 3, products.variants("P")[domain.SizeM])

	require.NoError(t, svc.UpdateSaleStatus(context.Background(), sale.SaleID, domain.StatusCancelado))

	assert.Equal(t, 3, products.variants("P")[domain.SizeM])
}
