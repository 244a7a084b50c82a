package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo reportes de inventario en SQL. Los alias de columna coinciden con los campos
// de los structs destino (snake_case) para pgxscan.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) LowStock(ctx context.Context) ([]repository.LowStockItem, error) {
	query := `
		SELECT id AS product_id, sku, name, current_qty, min_qty, avg_cost, price
		FROM products
		WHERE current_qty <= min_qty
		ORDER BY lower(name), id`
	items := []repository.LowStockItem{}
	if err := pgxscan.Select(ctx, r.q, &items, query); err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}
	return items, nil
}

func (r *ReportRepo) Valuation(ctx context.Context) ([]repository.ValuationItem, error) {
	query := `
		SELECT id AS product_id, sku, name, current_qty, price, avg_cost,
			current_qty * price    AS sale_value,
			current_qty * avg_cost AS cost_value
		FROM products
		ORDER BY lower(name), id`
	items := []repository.ValuationItem{}
	if err := pgxscan.Select(ctx, r.q, &items, query); err != nil {
		return nil, fmt.Errorf("valuation report: %w", err)
	}
	return items, nil
}

// LedgerDrift compara current_qty con la suma firmada de los movimientos de cada producto.
func (r *ReportRepo) LedgerDrift(ctx context.Context) ([]repository.DriftItem, error) {
	query := `
		SELECT p.id AS product_id, p.sku, p.current_qty, COALESCE(l.qty, 0) AS ledger_qty
		FROM products p
		LEFT JOIN (
			SELECT product_id,
				SUM(CASE WHEN type = 'IN' THEN quantity ELSE -quantity END) AS qty
			FROM stock_movements
			GROUP BY product_id
		) l ON l.product_id = p.id
		WHERE p.current_qty <> COALESCE(l.qty, 0)
		ORDER BY lower(p.name), p.id`
	items := []repository.DriftItem{}
	if err := pgxscan.Select(ctx, r.q, &items, query); err != nil {
		return nil, fmt.Errorf("ledger drift report: %w", err)
	}
	return items, nil
}
