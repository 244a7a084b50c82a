package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Motivos por defecto cuando el caller no informa uno.
const (
	DefaultReasonIN    = "Compra"
	DefaultReasonOUT   = "Venta"
	ReasonInitialStock = "Stock inicial"
)

// StockMovement registro del libro de inventario. Quantity siempre positiva; el signo lo da Type.
type StockMovement struct {
	ID        string
	ProductID string
	Type      string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal // solo entradas; nil en salidas
	Reason    string
	Note      string
	Timestamp time.Time
}

// IsValidMovementType indica si t es IN u OUT.
func IsValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}
