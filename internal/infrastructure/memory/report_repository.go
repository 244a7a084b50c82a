package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo reportes calculados sobre el estado publicado.
type ReportRepo struct {
	h handle
}

// NewReportRepository construye el repositorio de reportes.
func NewReportRepository(s *Store) *ReportRepo {
	return &ReportRepo{h: handle{s: s}}
}

func (r *ReportRepo) sortedProducts() ([]entity.Product, map[string]decimal.Decimal, error) {
	var products []entity.Product
	ledger := make(map[string]decimal.Decimal)
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			products = append(products, p)
		}
		for _, rec := range st.movements {
			q := rec.m.Quantity
			if rec.m.Type == entity.MovementTypeOUT {
				q = q.Neg()
			}
			ledger[rec.m.ProductID] = ledger[rec.m.ProductID].Add(q)
		}
		return nil
	})
	sort.Slice(products, func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})
	return products, ledger, err
}

func (r *ReportRepo) LowStock(_ context.Context) ([]repository.LowStockItem, error) {
	products, _, err := r.sortedProducts()
	if err != nil {
		return nil, err
	}
	var out []repository.LowStockItem
	for _, p := range products {
		if !p.IsLowStock() {
			continue
		}
		out = append(out, repository.LowStockItem{
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			CurrentQty: p.CurrentQty,
			MinQty:     p.MinQty,
			AvgCost:    p.AvgCost,
			Price:      p.Price,
		})
	}
	return out, nil
}

func (r *ReportRepo) Valuation(_ context.Context) ([]repository.ValuationItem, error) {
	products, _, err := r.sortedProducts()
	if err != nil {
		return nil, err
	}
	out := make([]repository.ValuationItem, 0, len(products))
	for _, p := range products {
		out = append(out, repository.ValuationItem{
			ProductID:  p.ID,
			SKU:        p.SKU,
			Name:       p.Name,
			CurrentQty: p.CurrentQty,
			Price:      p.Price,
			AvgCost:    p.AvgCost,
			SaleValue:  p.CurrentQty.Mul(p.Price),
			CostValue:  p.CurrentQty.Mul(p.AvgCost),
		})
	}
	return out, nil
}

func (r *ReportRepo) LedgerDrift(_ context.Context) ([]repository.DriftItem, error) {
	products, ledger, err := r.sortedProducts()
	if err != nil {
		return nil, err
	}
	var out []repository.DriftItem
	for _, p := range products {
		sum := ledger[p.ID]
		if !sum.Equal(p.CurrentQty) {
			out = append(out, repository.DriftItem{
				ProductID:  p.ID,
				SKU:        p.SKU,
				CurrentQty: p.CurrentQty,
				LedgerQty:  sum,
			})
		}
	}
	return out, nil
}
