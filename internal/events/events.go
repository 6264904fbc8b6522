package events

import (
	"encoding/json"
	"time"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

// SaleRegisteredEvent announces a committed checkout.
type SaleRegisteredEvent struct {
	EventID   string            `json:"event_id"`
	SaleID    string            `json:"sale_id"`
	Items     []domain.SaleItem `json:"items"`
	Total     float64           `json:"total"`
	Status    domain.SaleStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
}

// StockDeductedEvent records one product's stock movement from a checkout,
// with the counters before and after.
type StockDeductedEvent struct {
	EventID   string              `json:"event_id"`
	SaleID    string              `json:"sale_id"`
	ProductID string              `json:"product_id"`
	Deducted  map[domain.Size]int `json:"deducted"`
	Previous  domain.Variants     `json:"previous"`
	Remaining domain.Variants     `json:"remaining"`
	Timestamp time.Time           `json:"timestamp"`
}

// SettingChangedEvent fans a configuration write out to every running
// instance so their caches refresh live.
type SettingChangedEvent struct {
	EventID   string            `json:"event_id"`
	Key       domain.SettingKey `json:"key"`
	Value     json.RawMessage   `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
}
