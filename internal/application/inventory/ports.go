package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn falla no queda ningún cambio.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		barcodeRepo repository.BarcodeRepository,
	) error) error
}

// Locker serializa operaciones sobre una misma clave (un producto).
// Acquire devuelve domain.ErrBusy si no obtiene el bloqueo dentro de su tiempo de espera.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ProductLockKey clave de bloqueo por producto.
func ProductLockKey(productID string) string {
	return "stock-ledger:product:" + productID
}
