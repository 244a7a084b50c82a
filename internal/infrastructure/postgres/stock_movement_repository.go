package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, type, quantity, unit_cost, reason, note, occurred_at`

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	if err := row.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.UnitCost, &m.Reason, &m.Note, &m.Timestamp); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un movimiento. seq (BIGSERIAL) desempata movimientos con la misma fecha.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Type, m.Quantity, m.UnitCost, m.Reason, m.Note, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Update reemplaza tipo, cantidad, costo, motivo, nota y fecha. El producto no cambia.
func (r *StockMovementRepo) Update(ctx context.Context, m *entity.StockMovement) error {
	if _, ok := parseID(m.ID); !ok {
		return domain.ErrMovementNotFound
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_movements SET type = $2, quantity = $3, unit_cost = $4, reason = $5, note = $6, occurred_at = $7
		WHERE id = $1`,
		m.ID, m.Type, m.Quantity, m.UnitCost, m.Reason, m.Note, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// Delete elimina un movimiento por ID.
func (r *StockMovementRepo) Delete(ctx context.Context, id string) error {
	id, ok := parseID(id)
	if !ok {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	return nil
}

// DeleteByProduct elimina todos los movimientos del producto.
func (r *StockMovementRepo) DeleteByProduct(ctx context.Context, productID string) error {
	productID, ok := parseID(productID)
	if !ok {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete movements by product: %w", err)
	}
	return nil
}

// ListByProduct lista los movimientos del producto en [from, to], más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	productID, ok := parseID(productID)
	if !ok {
		return []*entity.StockMovement{}, nil
	}
	q := psql.Select(movementColumns).
		From("stock_movements").
		Where(squirrel.Eq{"product_id": productID})
	if from != nil {
		q = q.Where(squirrel.GtOrEq{"occurred_at": *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"occurred_at": *to})
	}
	sql, args, err := q.OrderBy("occurred_at DESC", "seq DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
