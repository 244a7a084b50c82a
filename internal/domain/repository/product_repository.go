package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Claves de ordenamiento para listados de productos.
const (
	SortByName   = "name"
	SortBySKU    = "sku"
	SortByQty    = "qty"
	SortByPrice  = "price"
	SortByMargin = "margin"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search     string // coincide con nombre o SKU
	CategoryID string
	SupplierID string
	SortBy     string
	Desc       bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID/GetBySKU devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update modifica solo metadatos; nunca CurrentQty ni AvgCost.
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock escribe los campos derivados (uso exclusivo del motor de inventario).
	UpdateStock(ctx context.Context, id string, qty, avgCost decimal.Decimal) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	Delete(ctx context.Context, id string) error
}
