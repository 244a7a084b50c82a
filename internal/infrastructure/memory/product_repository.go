package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	h handle
}

// NewProductRepository repositorio sobre el estado publicado (fuera de transacción).
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{h: handle{s: s}}
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, p := range st.products {
			if p.SKU == product.SKU {
				return domain.ErrDuplicateSKU
			}
		}
		st.products[product.ID] = *product
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: las transacciones ya están serializadas.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.read(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update reemplaza metadatos; conserva CurrentQty y AvgCost almacenados.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.h.write(func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return nil
		}
		for id, p := range st.products {
			if id != product.ID && p.SKU == product.SKU {
				return domain.ErrDuplicateSKU
			}
		}
		next := *product
		next.CurrentQty = cur.CurrentQty
		next.AvgCost = cur.AvgCost
		next.CreatedAt = cur.CreatedAt
		st.products[product.ID] = next
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, qty, avgCost decimal.Decimal) error {
	return r.h.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.CurrentQty = qty
		p.AvgCost = avgCost
		p.UpdatedAt = time.Now()
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var list []*entity.Product
	err := r.h.read(func(st *state) error {
		q := strings.ToLower(f.Search)
		for _, p := range st.products {
			if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
				continue
			}
			if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
				continue
			}
			if f.SupplierID != "" && (p.SupplierID == nil || *p.SupplierID != f.SupplierID) {
				continue
			}
			list = append(list, &p)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if f.Desc {
			a, b = b, a
		}
		switch f.SortBy {
		case repository.SortBySKU:
			return a.SKU < b.SKU
		case repository.SortByQty:
			return a.CurrentQty.LessThan(b.CurrentQty)
		case repository.SortByPrice:
			return a.Price.LessThan(b.Price)
		case repository.SortByMargin:
			return a.Margin().LessThan(b.Margin())
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
	total := len(list)
	if f.Offset >= total {
		return []*entity.Product{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < total {
		end = f.Offset + f.Limit
	}
	return list[f.Offset:end], total, nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		delete(st.products, id)
		return nil
	})
}
