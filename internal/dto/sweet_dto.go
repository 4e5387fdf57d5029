package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, matching what the shop client renders.
	decimal.MarshalJSONWithoutQuotes = true
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSweetRequest struct {
	Name        string           `json:"name"        validate:"required,max=120"`
	Category    string           `json:"category"    validate:"required,max=60"`
	Price       *decimal.Decimal `json:"price"       validate:"required,min=0,max=99999999.99"`
	Quantity    *int             `json:"quantity"    validate:"required,min=0,max=2147483647"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string          `json:"imageUrl"    validate:"omitempty,url"`
}

// UpdateSweetRequest is a partial update: nil fields are left untouched.
type UpdateSweetRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=120"`
	Category    *string          `json:"category"    validate:"omitempty,min=1,max=60"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,min=0,max=99999999.99"`
	Quantity    *int             `json:"quantity"    validate:"omitempty,min=0,max=2147483647"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string          `json:"imageUrl"    validate:"omitempty,url"`
}

// Empty reports whether the request changes nothing.
func (r UpdateSweetRequest) Empty() bool {
	return r.Name == nil && r.Category == nil && r.Price == nil &&
		r.Quantity == nil && r.Description == nil && r.ImageURL == nil
}

// PurchaseRequest defaults to a single unit when Quantity is omitted.
type PurchaseRequest struct {
	Quantity *int `json:"quantity" validate:"omitempty,min=1"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=2147483647"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// SweetFilter carries the optional search criteria. All given criteria are ANDed.
type SweetFilter struct {
	Name     string           `form:"name"`
	Category string           `form:"category"`
	MinPrice *decimal.Decimal `form:"-"`
	MaxPrice *decimal.Decimal `form:"-"`
}

// IsZero reports whether no criterion is set, in which case search equals list.
func (f SweetFilter) IsZero() bool {
	return f.Name == "" && f.Category == "" && f.MinPrice == nil && f.MaxPrice == nil
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SweetResponse struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
