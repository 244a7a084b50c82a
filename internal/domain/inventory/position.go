package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Position campos derivados de un producto: cantidad en existencia y costo promedio.
type Position struct {
	Quantity decimal.Decimal
	AvgCost  decimal.Decimal
}

// PositionOf toma la posición actual del producto.
func PositionOf(p *entity.Product) Position {
	return Position{Quantity: p.CurrentQty, AvgCost: p.AvgCost}
}

// Apply aplica el efecto de insertar un movimiento.
// IN suma cantidad y recalcula el promedio solo si trae costo unitario positivo.
// OUT resta cantidad sin tocar el promedio y falla si no alcanza el stock.
func Apply(pos Position, m *entity.StockMovement) (Position, error) {
	if !m.Quantity.GreaterThan(decimal.Zero) {
		return pos, domain.ErrInvalidQuantity
	}
	switch m.Type {
	case entity.MovementTypeIN:
		next := Position{Quantity: pos.Quantity.Add(m.Quantity), AvgCost: pos.AvgCost}
		if m.UnitCost != nil && m.UnitCost.GreaterThan(decimal.Zero) {
			next.AvgCost = CostCalculator(pos.Quantity, pos.AvgCost, m.Quantity, *m.UnitCost)
		}
		return next, nil
	case entity.MovementTypeOUT:
		if m.Quantity.GreaterThan(pos.Quantity) {
			return pos, &domain.InsufficientStockError{
				ProductID: m.ProductID,
				Available: pos.Quantity.String(),
				Requested: m.Quantity.String(),
			}
		}
		return Position{Quantity: pos.Quantity.Sub(m.Quantity), AvgCost: pos.AvgCost}, nil
	}
	return pos, domain.NewValidationError("type", "debe ser IN u OUT")
}

// Reverse deshace el efecto de cantidad de un movimiento borrado.
// El promedio no se reconstruye y el resultado puede quedar negativo.
func Reverse(pos Position, m *entity.StockMovement) Position {
	switch m.Type {
	case entity.MovementTypeIN:
		return Position{Quantity: pos.Quantity.Sub(m.Quantity), AvgCost: pos.AvgCost}
	case entity.MovementTypeOUT:
		return Position{Quantity: pos.Quantity.Add(m.Quantity), AvgCost: pos.AvgCost}
	}
	return pos
}

// Replace compensa el movimiento anterior y aplica el nuevo; el promedio de un IN
// editado toma como base la cantidad ya compensada.
func Replace(pos Position, old, updated *entity.StockMovement) (Position, error) {
	return Apply(Reverse(pos, old), updated)
}
