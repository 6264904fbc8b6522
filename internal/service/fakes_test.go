package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/repository"
)

var errTransient = errors.New("transient store failure")

// memProductStore mirrors the DynamoDB repository's semantics, including
// the all-or-nothing conditional deduct, so the services can be exercised
// without a table.
type memProductStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product

	failDeductAfter int // fail the Nth+1 deduct call with a generic error; -1 disables
	deductCalls     int
}

func newMemProductStore(products ...*domain.Product) *memProductStore {
	s := &memProductStore{
		products:        make(map[string]*domain.Product),
		failDeductAfter: -1,
	}
	for _, p := range products {
		cp := *p
		cp.Variants = p.Variants.Normalized()
		s.products[p.ProductID] = &cp
	}
	return s
}

func (s *memProductStore) Create(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *product
	s.products[product.ProductID] = &cp
	return nil
}

func (s *memProductStore) Get(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	cp.Variants = p.Variants.Normalized()
	return &cp, nil
}

func (s *memProductStore) List(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		cp.Variants = p.Variants.Normalized()
		out = append(out, cp)
	}
	return out, nil
}

func (s *memProductStore) UpdateDetails(_ context.Context, productID string, fields domain.ProductUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Price != nil {
		p.Price = *fields.Price
	}
	if fields.Image != nil {
		p.Image = *fields.Image
	}
	if fields.Category != nil {
		p.Category = *fields.Category
	}
	return nil
}

func (s *memProductStore) SetVariants(_ context.Context, productID string, variants domain.Variants) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Variants = variants.Normalized()
	return nil
}

func (s *memProductStore) DeductVariants(_ context.Context, productID string, quantities map[domain.Size]int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deductCalls++
	if s.failDeductAfter >= 0 && s.deductCalls > s.failDeductAfter {
		return nil, errTransient
	}

	p, ok := s.products[productID]
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
	cp.Variants = p.Variants.Normalized()
	return &cp, nil
}

func (s *memProductStore) RestoreVariants(_ context.Context, productID string, quantities map[domain.Size]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil
	}
	for size, qty := range quantities {
		p.Variants[size] += qty
	}
	return nil
}

func (s *memProductStore) Delete(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, productID)
	return nil
}

// variants returns a snapshot for assertions.
func (s *memProductStore) variants(productID string) domain.Variants {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil
	}
	return p.Variants.Normalized()
}

type memSaleStore struct {
	mu    sync.Mutex
	sales map[string]*domain.Sale
}

func newMemSaleStore() *memSaleStore {
	return &memSaleStore{sales: make(map[string]*domain.Sale)}
}

func (s *memSaleStore) Create(_ context.Context, sale *domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[sale.SaleID]; ok {
		return repository.ErrSaleExists
	}
	cp := *sale
	s.sales[sale.SaleID] = &cp
	return nil
}

func (s *memSaleStore) Get(_ context.Context, saleID string) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	cp := *sale
	return &cp, nil
}

func (s *memSaleStore) List(_ context.Context) ([]domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, *sale)
	}
	return out, nil
}

func (s *memSaleStore) UpdateStatus(_ context.Context, saleID string, status domain.SaleStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return repository.ErrSaleNotFound
	}
	sale.Status = status
	return nil
}

func (s *memSaleStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

type memSettingsStore struct {
	mu   sync.Mutex
	rows map[domain.SettingKey]json.RawMessage
}

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{rows: make(map[domain.SettingKey]json.RawMessage)}
}

func (s *memSettingsStore) Put(_ context.Context, key domain.SettingKey, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (s *memSettingsStore) Get(_ context.Context, key domain.SettingKey) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.rows[key]
	if !ok {
		return nil, repository.ErrSettingNotFound
	}
	return raw, nil
}

func (s *memSettingsStore) List(_ context.Context) (map[domain.SettingKey]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.SettingKey]json.RawMessage, len(s.rows))
	for k, v := range s.rows {
		out[k] = v
	}
	return out, nil
}

// recordingPublisher captures events for assertions.
type recordingPublisher struct {
	mu             sync.Mutex
	saleEvents     []string
	stockEvents    []string
	settingChanges []domain.SettingKey
}

func (p *recordingPublisher) PublishSaleRegistered(_ context.Context, sale *domain.Sale) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saleEvents = append(p.saleEvents, sale.SaleID)
	return nil
}

func (p *recordingPublisher) PublishStockDeducted(_ context.Context, _ string, product *domain.Product, _ map[domain.Size]int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stockEvents = append(p.stockEvents, product.ProductID)
	return nil
}

func (p *recordingPublisher) PublishSettingChanged(_ context.Context, key domain.SettingKey, _ json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settingChanges = append(p.settingChanges, key)
	return nil
}
