package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	h handle
}

// NewCategoryRepository repositorio sobre el estado publicado.
func NewCategoryRepository(s *Store) *CategoryRepo {
	return &CategoryRepo{h: handle{s: s}}
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.h.write(func(st *state) error {
		for _, cur := range st.categories {
			if strings.EqualFold(cur.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.h.read(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	list := []*entity.Category{}
	err := r.h.read(func(st *state) error {
		for _, c := range st.categories {
			list = append(list, &c)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, err
}

// Delete elimina la categoría y deja sin categoría a sus productos.
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		delete(st.categories, id)
		for pid, p := range st.products {
			if p.CategoryID != nil && *p.CategoryID == id {
				p.CategoryID = nil
				st.products[pid] = p
			}
		}
		return nil
	})
}

// SupplierRepo implementación en memoria de SupplierRepository.
type SupplierRepo struct {
	h handle
}

// NewSupplierRepository repositorio sobre el estado publicado.
func NewSupplierRepository(s *Store) *SupplierRepo {
	return &SupplierRepo{h: handle{s: s}}
}

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.h.write(func(st *state) error {
		for _, cur := range st.suppliers {
			if strings.EqualFold(cur.Name, s.Name) {
				return domain.ErrDuplicate
			}
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.h.read(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) List(_ context.Context) ([]*entity.Supplier, error) {
	list := []*entity.Supplier{}
	err := r.h.read(func(st *state) error {
		for _, s := range st.suppliers {
			list = append(list, &s)
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, err
}

// Delete elimina el proveedor y deja sin proveedor a sus productos.
func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		delete(st.suppliers, id)
		for pid, p := range st.products {
			if p.SupplierID != nil && *p.SupplierID == id {
				p.SupplierID = nil
				st.products[pid] = p
			}
		}
		return nil
	})
}
