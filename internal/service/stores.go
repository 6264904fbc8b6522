package service

import (
	"context"
	"encoding/json"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

// ProductStore is the product table contract the services need. The
// DynamoDB repository is the production implementation; tests use an
// in-memory one with the same conditional-deduct semantics.
type ProductStore interface {
	Create(ctx context.Context, product *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	UpdateDetails(ctx context.Context, productID string, fields domain.ProductUpdate) error
	SetVariants(ctx context.Context, productID string, variants domain.Variants) error
	// DeductVariants applies all requested size decrements for one product
	// as a single conditional update: it must fail without any effect when
	// any size has less stock than requested.
	DeductVariants(ctx context.Context, productID string, quantities map[domain.Size]int) (*domain.Product, error)
	RestoreVariants(ctx context.Context, productID string, quantities map[domain.Size]int) error
	Delete(ctx context.Context, productID string) error
}

// SaleStore is the append-only sales ledger contract.
type SaleStore interface {
	Create(ctx context.Context, sale *domain.Sale) error
	Get(ctx context.Context, saleID string) (*domain.Sale, error)
	List(ctx context.Context) ([]domain.Sale, error)
	UpdateStatus(ctx context.Context, saleID string, status domain.SaleStatus) error
}

// SettingsStore is the key→JSON configuration table contract.
type SettingsStore interface {
	Put(ctx context.Context, key domain.SettingKey, value json.RawMessage) error
	Get(ctx context.Context, key domain.SettingKey) (json.RawMessage, error)
	List(ctx context.Context) (map[domain.SettingKey]json.RawMessage, error)
}

// EventPublisher fans out to the event bus. Publishing is best-effort;
// failures are logged, never surfaced to the request.
type EventPublisher interface {
	PublishSaleRegistered(ctx context.Context, sale *domain.Sale) error
	PublishStockDeducted(ctx context.Context, saleID string, product *domain.Product, deducted map[domain.Size]int) error
	PublishSettingChanged(ctx context.Context, key domain.SettingKey, value json.RawMessage) error
}
