package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.BarcodeRepository = (*BarcodeRepo)(nil)

const barcodeColumns = `id, product_id, symbology, code, pack_qty, label, is_primary, created_at`

// BarcodeRepo códigos de barras sobre PostgreSQL.
type BarcodeRepo struct {
	q Querier
}

// NewBarcodeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBarcodeRepository(q Querier) *BarcodeRepo {
	return &BarcodeRepo{q: q}
}

func scanBarcode(row pgx.Row) (*entity.Barcode, error) {
	var b entity.Barcode
	if err := row.Scan(&b.ID, &b.ProductID, &b.Symbology, &b.Code, &b.PackQty, &b.Label, &b.IsPrimary, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BarcodeRepo) Create(ctx context.Context, b *entity.Barcode) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO barcodes (`+barcodeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.ProductID, b.Symbology, b.Code, b.PackQty, b.Label, b.IsPrimary, b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if constraintName(err) == "barcodes_one_primary_idx" {
				return fmt.Errorf("%w: ya existe un código principal", domain.ErrDuplicate)
			}
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert barcode: %w", err)
	}
	return nil
}

func (r *BarcodeRepo) GetByID(ctx context.Context, id string) (*entity.Barcode, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	b, err := scanBarcode(r.q.QueryRow(ctx, `SELECT `+barcodeColumns+` FROM barcodes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get barcode: %w", err)
	}
	return b, nil
}

// GetByCode busca por código exacto (ya normalizado por el caller).
func (r *BarcodeRepo) GetByCode(ctx context.Context, code string) (*entity.Barcode, error) {
	b, err := scanBarcode(r.q.QueryRow(ctx, `SELECT `+barcodeColumns+` FROM barcodes WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get barcode by code: %w", err)
	}
	return b, nil
}

// ListByProduct códigos del producto, el principal primero.
func (r *BarcodeRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Barcode, error) {
	productID, ok := parseID(productID)
	if !ok {
		return []*entity.Barcode{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+barcodeColumns+` FROM barcodes
		WHERE product_id = $1
		ORDER BY is_primary DESC, created_at, code`, productID)
	if err != nil {
		return nil, fmt.Errorf("list barcodes: %w", err)
	}
	defer rows.Close()
	list := []*entity.Barcode{}
	for rows.Next() {
		b, err := scanBarcode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan barcode: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *BarcodeRepo) ClearPrimary(ctx context.Context, productID string) error {
	productID, ok := parseID(productID)
	if !ok {
		return nil
	}
	if _, err := r.q.Exec(ctx, `UPDATE barcodes SET is_primary = false WHERE product_id = $1 AND is_primary`, productID); err != nil {
		return fmt.Errorf("clear primary barcode: %w", err)
	}
	return nil
}

func (r *BarcodeRepo) Delete(ctx context.Context, id string) error {
	id, ok := parseID(id)
	if !ok {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM barcodes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete barcode: %w", err)
	}
	return nil
}

func (r *BarcodeRepo) DeleteByProduct(ctx context.Context, productID string) error {
	productID, ok := parseID(productID)
	if !ok {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM barcodes WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete barcodes by product: %w", err)
	}
	return nil
}
