package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BarcodeRepository define el puerto de persistencia para códigos de barras.
type BarcodeRepository interface {
	Create(ctx context.Context, b *entity.Barcode) error
	GetByID(ctx context.Context, id string) (*entity.Barcode, error)
	// GetByCode búsqueda exacta por código; (nil, nil) si no existe.
	GetByCode(ctx context.Context, code string) (*entity.Barcode, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Barcode, error)
	// ClearPrimary desmarca el código principal actual del producto.
	ClearPrimary(ctx context.Context, productID string) error
	Delete(ctx context.Context, id string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
