package domain

import (
	"time"
)

// Size is one of the fixed variant sizes a product is stocked in.
type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// AllSizes returns the size enumeration in display order.
func AllSizes() []Size {
	return []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}
}

// Valid reports whether s is one of the six known sizes.
func (s Size) Valid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL:
		return true
	}
	return false
}

// Variants maps each size to its stock count. A missing key means zero;
// Normalized fills in missing keys so stored maps always carry all six.
type Variants map[Size]int

// Normalized returns a copy with every known size present.
func (v Variants) Normalized() Variants {
	out := make(Variants, len(AllSizes()))
	for _, size := range AllSizes() {
		out[size] = v[size]
	}
	return out
}

// Validate rejects negative counts and unknown size keys.
func (v Variants) Validate() error {
	for size, count := range v {
		if !size.Valid() {
			return &ValidationError{Field: "variants", Reason: "unknown size " + string(size)}
		}
		if count < 0 {
			return &ValidationError{Field: "variants", Reason: "stock for size " + string(size) + " is negative"}
		}
	}
	return nil
}

// TotalUnits sums stock across all sizes.
func (v Variants) TotalUnits() int {
	total := 0
	for _, count := range v {
		total += count
	}
	return total
}

type Product struct {
	ProductID string    `dynamodbav:"product_id" json:"product_id"`
	Name      string    `dynamodbav:"name"       json:"name"`
	Price     float64   `dynamodbav:"price"      json:"price"`
	Image     string    `dynamodbav:"image"      json:"image,omitempty"`
	Category  string    `dynamodbav:"category"   json:"category,omitempty"`
	Variants  Variants  `dynamodbav:"variants"   json:"variants"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

type CreateProductRequest struct {
	Name     string   `json:"name" binding:"required"`
	Price    float64  `json:"price"`
	Image    string   `json:"image"`
	Category string   `json:"category"`
	Variants Variants `json:"variants"`
}

// ProductUpdate is a partial update of the descriptive fields only.
// Stock lives in Variants and is changed through the dedicated stock
// operation, so the two concerns stay independently retryable.
type ProductUpdate struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Image    *string  `json:"image"`
	Category *string  `json:"category"`
}

type SetVariantsRequest struct {
	Variants Variants `json:"variants" binding:"required"`
}
