package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterProductRequest entrada para registrar un producto con stock inicial opcional.
type RegisterProductRequest struct {
	SKU             string           `json:"sku" validate:"required,min=1,max=100"`
	Name            string           `json:"name" validate:"required,min=1,max=200"`
	CategoryID      *string          `json:"category_id,omitempty"`
	SupplierID      *string          `json:"supplier_id,omitempty"`
	Unit            string           `json:"unit" validate:"max=20"`
	Price           decimal.Decimal  `json:"price"`
	MinQty          decimal.Decimal  `json:"min_qty"`
	InitialQty      decimal.Decimal  `json:"initial_qty"`
	InitialUnitCost *decimal.Decimal `json:"initial_unit_cost,omitempty"`
}

// UpdateProductRequest entrada para actualizar metadatos (sin stock ni costo promedio).
// CategoryID/SupplierID con "" quitan la referencia.
type UpdateProductRequest struct {
	SKU        *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name       *string          `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID *string          `json:"category_id"`
	SupplierID *string          `json:"supplier_id"`
	Unit       *string          `json:"unit" validate:"omitempty,max=20"`
	Price      *decimal.Decimal `json:"price"`
	MinQty     *decimal.Decimal `json:"min_qty"`
}

// ProductListRequest filtros del listado (query string).
type ProductListRequest struct {
	PageRequest
	Q          string `query:"q"`
	CategoryID string `query:"category_id"`
	SupplierID string `query:"supplier_id"`
	Sort       string `query:"sort" validate:"omitempty,oneof=name sku qty price margin"`
	Dir        string `query:"dir" validate:"omitempty,oneof=asc desc"`
}

// ProductResponse instantánea de un producto con sus campos derivados.
type ProductResponse struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	CategoryID *string         `json:"category_id"`
	SupplierID *string         `json:"supplier_id"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
	MinQty     decimal.Decimal `json:"min_qty"`
	CurrentQty decimal.Decimal `json:"current_qty"`
	Margin     decimal.Decimal `json:"margin"`
	MarginPct  decimal.Decimal `json:"margin_pct"`
	LowStock   bool            `json:"low_stock"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
