package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Se informa product_id o barcode; con barcode, quantity son unidades escaneadas.
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id" validate:"required_without=Barcode,omitempty,uuid"`
	Barcode   string           `json:"barcode,omitempty" validate:"required_without=ProductID"`
	Type      string           `json:"type" validate:"required,oneof=IN OUT"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason,omitempty" validate:"max=120"`
	Note      string           `json:"note,omitempty" validate:"max=500"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
}

// UpdateMovementRequest body para PUT /api/inventory/movements/:id.
type UpdateMovementRequest struct {
	Type      string           `json:"type" validate:"required,oneof=IN OUT"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason,omitempty" validate:"max=120"`
	Note      string           `json:"note,omitempty" validate:"max=500"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Type      string           `json:"type"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason"`
	Note      string           `json:"note,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// LowStockItemDTO producto bajo mínimo con la cantidad sugerida de reposición.
type LowStockItemDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	CurrentQty         decimal.Decimal `json:"current_qty"`
	MinQty             decimal.Decimal `json:"min_qty"`
	IdealQty           decimal.Decimal `json:"ideal_qty"`            // MinQty * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealQty - CurrentQty
	AvgCost            decimal.Decimal `json:"avg_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * AvgCost
	Priority           int             `json:"priority"`             // 1 = mayor déficit
}

// ValuationItemDTO valorización de un producto.
type ValuationItemDTO struct {
	ProductID  string          `json:"product_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	CurrentQty decimal.Decimal `json:"current_qty"`
	Price      decimal.Decimal `json:"price"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
	SaleValue  decimal.Decimal `json:"sale_value"`
	CostValue  decimal.Decimal `json:"cost_value"`
}

// ValuationReport valorización total del inventario.
type ValuationReport struct {
	Items          []ValuationItemDTO `json:"items"`
	TotalSaleValue decimal.Decimal    `json:"total_sale_value"`
	TotalCostValue decimal.Decimal    `json:"total_cost_value"`
}

// LedgerDriftDTO producto cuyo stock no coincide con su libro de movimientos.
type LedgerDriftDTO struct {
	ProductID  string          `json:"product_id"`
	SKU        string          `json:"sku"`
	CurrentQty decimal.Decimal `json:"current_qty"`
	LedgerQty  decimal.Decimal `json:"ledger_qty"`
	Difference decimal.Decimal `json:"difference"`
}
