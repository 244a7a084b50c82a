package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// LowStockItem producto en o por debajo de su stock mínimo.
type LowStockItem struct {
	ProductID  string
	SKU        string
	Name       string
	CurrentQty decimal.Decimal
	MinQty     decimal.Decimal
	AvgCost    decimal.Decimal
	Price      decimal.Decimal
}

// ValuationItem valorización de un producto a precio de venta y a costo promedio.
type ValuationItem struct {
	ProductID  string
	SKU        string
	Name       string
	CurrentQty decimal.Decimal
	Price      decimal.Decimal
	AvgCost    decimal.Decimal
	SaleValue  decimal.Decimal // CurrentQty * Price
	CostValue  decimal.Decimal // CurrentQty * AvgCost
}

// DriftItem producto cuyo stock almacenado no coincide con la suma de sus movimientos.
type DriftItem struct {
	ProductID  string
	SKU        string
	CurrentQty decimal.Decimal
	LedgerQty  decimal.Decimal
}

// ReportRepository consultas de solo lectura sobre el inventario.
type ReportRepository interface {
	// LowStock productos con current_qty <= min_qty, ordenados por nombre.
	LowStock(ctx context.Context) ([]LowStockItem, error)
	// Valuation todos los productos ordenados por nombre.
	Valuation(ctx context.Context) ([]ValuationItem, error)
	LedgerDrift(ctx context.Context) ([]DriftItem, error)
}
