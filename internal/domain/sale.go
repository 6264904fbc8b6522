package domain

import (
	"time"
)

// SaleStatus is the fulfillment state of a recorded sale.
type SaleStatus string

const (
	StatusPendiente SaleStatus = "Pendiente"
	StatusEnviado   SaleStatus = "Enviado"
	StatusEntregado SaleStatus = "Entregado"
	StatusCancelado SaleStatus = "Cancelado"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case StatusPendiente, StatusEnviado, StatusEntregado, StatusCancelado:
		return true
	}
	return false
}

// SaleItem is a line item snapshotted at checkout time. It is not a live
// reference: the product may later change name or price without touching
// recorded sales.
type SaleItem struct {
	ProductID string  `dynamodbav:"product_id" json:"product_id"`
	Name      string  `dynamodbav:"name"       json:"name"`
	Size      Size    `dynamodbav:"size"       json:"size"`
	Quantity  int     `dynamodbav:"quantity"   json:"quantity"`
	UnitPrice float64 `dynamodbav:"unit_price" json:"unit_price"`
}

type Sale struct {
	SaleID    string     `dynamodbav:"sale_id"    json:"sale_id"`
	Items     []SaleItem `dynamodbav:"items"      json:"items"`
	Total     float64    `dynamodbav:"total"      json:"total"`
	Status    SaleStatus `dynamodbav:"status"     json:"status"`
	CreatedAt time.Time  `dynamodbav:"created_at" json:"created_at"`
}

// CartLine is a checkout request line. UnitPrice is the price the customer
// saw; the total is computed from these snapshots rather than re-priced
// from the catalog at commit time, so the client is trusted on price.
type CartLine struct {
	ProductID string  `json:"product_id" binding:"required"`
	Name      string  `json:"name"`
	Size      Size    `json:"size" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unit_price"`
}

// CheckoutRequest converts a cart into a Sale. IdempotencyKey is optional;
// when set, retrying the same request creates at most one sale.
type CheckoutRequest struct {
	Items          []CartLine `json:"items" binding:"required"`
	IdempotencyKey string     `json:"idempotency_key"`
}

type UpdateSaleStatusRequest struct {
	Status SaleStatus `json:"status" binding:"required"`
}
