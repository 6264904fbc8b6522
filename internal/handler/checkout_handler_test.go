package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/repository"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/service"
)

// stubStore is the minimal product/sale store pair the checkout endpoint
// needs, with the same conditional-deduct contract as the repository.
type stubStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	sales    map[string]*domain.Sale
}

func newStubStore(products ...*domain.Product) *stubStore {
	s := &stubStore{
		products: make(map[string]*domain.Product),
		sales:    make(map[string]*domain.Sale),
	}
	for _, p := range products {
		cp := *p
		cp.Variants = p.Variants.Normalized()
		s.products[p.ProductID] = &cp
	}
	return s
}

func (s *stubStore) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ProductID] = &cp
	return nil
}

func (s *stubStore) Get(_ context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubStore) List(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubStore) UpdateDetails(_ context.Context, id string, _ domain.ProductUpdate) error {
	return nil
}

func (s *stubStore) SetVariants(_ context.Context, id string, v domain.Variants) error {
	return nil
}

func (s *stubStore) DeductVariants(_ context.Context, id string, quantities map[domain.Size]int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	for size, qty := range quantities {
		if p.Variants[size] < qty {
			return nil, repository.ErrInsufficientStock
		}
	}
	for size, qty := range quantities {
		p.Variants[size] -= qty
	}
	cp := *p
	return &cp, nil
}

func (s *stubStore) RestoreVariants(_ context.Context, id string, quantities map[domain.Size]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		for size, qty := range quantities {
			p.Variants[size] += qty
		}
	}
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	return nil
}

func (s *stubStore) CreateSale(_ context.Context, sale *domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[sale.SaleID]; ok {
		return repository.ErrSaleExists
	}
	cp := *sale
	s.sales[sale.SaleID] = &cp
	return nil
}

// saleStore adapts stubStore to the sale side of the contract.
type saleStore struct{ *stubStore }

func (s saleStore) Create(ctx context.Context, sale *domain.Sale) error {
	return s.CreateSale(ctx, sale)
}

func (s saleStore) Get(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	cp := *sale
	return &cp, nil
}

func (s saleStore) List(_ context.Context) ([]domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, *sale)
	}
	return out, nil
}

func (s saleStore) UpdateStatus(_ context.Context, id string, status domain.SaleStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return repository.ErrSaleNotFound
	}
	sale.Status = status
	return nil
}

func checkoutRouter(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := service.NewCheckoutService(store, saleStore{store}, nil, logger)
	h := NewCheckoutHandler(svc, logger)

	router := gin.New()
	router.POST("/api/v1/checkout", h.Checkout)
	return router
}

func postCheckout(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutEndpointSuccess(t *testing.T) {
	store := newStubStore(&domain.Product{
		ProductID: "P",
		Name:      "Remera",
		Price:     1000,
		Variants:  domain.Variants{domain.SizeM: 5},
	})
	router := checkoutRouter(store)

	rec := postCheckout(t, router, domain.CheckoutRequest{
		Items: []domain.CartLine{
			{ProductID: "P", Name: "Remera", Size: domain.SizeM, Quantity: 2, UnitPrice: 1000},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var sale domain.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	assert.Equal(t, 2000.0, sale.Total)
	assert.Equal(t, domain.StatusPendiente, sale.Status)
	assert.NotEmpty(t, sale.SaleID)
}

func TestCheckoutEndpointEmptyCart(t *testing.T) {
	router := checkoutRouter(newStubStore())

	rec := postCheckout(t, router, map[string]any{"items": []any{}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutEndpointInsufficientStock(t *testing.T) {
	store := newStubStore(&domain.Product{
		ProductID: "P",
		Name:      "Remera",
		Price:     1000,
		Variants:  domain.Variants{domain.SizeM: 1},
	})
	router := checkoutRouter(store)

	rec := postCheckout(t, router, domain.CheckoutRequest{
		Items: []domain.CartLine{
			{ProductID: "P", Size: domain.SizeM, Quantity: 3, UnitPrice: 1000},
		},
	})

	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "P", body["product_id"])
	assert.Equal(t, "M", body["size"])
	assert.Equal(t, float64(1), body["available"])
	assert.Equal(t, float64(3), body["requested"])
}

func TestCheckoutEndpointUnknownProduct(t *testing.T) {
	router := checkoutRouter(newStubStore())

	rec := postCheckout(t, router, domain.CheckoutRequest{
		Items: []domain.CartLine{
			{ProductID: "ghost", Size: domain.SizeM, Quantity: 1, UnitPrice: 1000},
		},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutEndpointMalformedBody(t *testing.T) {
	router := checkoutRouter(newStubStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
