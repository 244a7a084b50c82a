package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit unidad de medida cuando no se informa.
const DefaultUnit = "un"

// Product representa un producto del inventario.
// CurrentQty y AvgCost son derivados: solo los modifica el motor de inventario vía movimientos.
type Product struct {
	ID         string
	SKU        string // único
	Name       string
	CategoryID *string
	SupplierID *string
	Unit       string
	Price      decimal.Decimal // precio de venta
	AvgCost    decimal.Decimal // costo promedio ponderado (inicia en 0)
	MinQty     decimal.Decimal // umbral de stock bajo
	CurrentQty decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Margin precio menos costo promedio.
func (p *Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.AvgCost)
}

// MarginPct margen sobre el precio en porcentaje (0 si el precio es 0).
func (p *Product) MarginPct() decimal.Decimal {
	if p.Price.IsZero() {
		return decimal.Zero
	}
	return p.Margin().Div(p.Price).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsLowStock true si el stock actual está en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.CurrentQty.LessThanOrEqual(p.MinQty)
}
