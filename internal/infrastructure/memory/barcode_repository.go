package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.BarcodeRepository = (*BarcodeRepo)(nil)

// BarcodeRepo implementación en memoria de BarcodeRepository.
type BarcodeRepo struct {
	h handle
}

// NewBarcodeRepository repositorio sobre el estado publicado.
func NewBarcodeRepository(s *Store) *BarcodeRepo {
	return &BarcodeRepo{h: handle{s: s}}
}

func (r *BarcodeRepo) Create(_ context.Context, b *entity.Barcode) error {
	return r.h.write(func(st *state) error {
		for _, cur := range st.barcodes {
			if cur.Code == b.Code {
				return domain.ErrDuplicateCode
			}
			if b.IsPrimary && cur.IsPrimary && cur.ProductID == b.ProductID {
				return domain.ErrDuplicate
			}
		}
		st.barcodes[b.ID] = *b
		return nil
	})
}

func (r *BarcodeRepo) GetByID(_ context.Context, id string) (*entity.Barcode, error) {
	var out *entity.Barcode
	err := r.h.read(func(st *state) error {
		if b, ok := st.barcodes[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *BarcodeRepo) GetByCode(_ context.Context, code string) (*entity.Barcode, error) {
	var out *entity.Barcode
	err := r.h.read(func(st *state) error {
		for _, b := range st.barcodes {
			if b.Code == code {
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *BarcodeRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Barcode, error) {
	list := []*entity.Barcode{}
	err := r.h.read(func(st *state) error {
		for _, b := range st.barcodes {
			if b.ProductID == productID {
				list = append(list, &b)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].IsPrimary != list[j].IsPrimary {
			return list[i].IsPrimary
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, err
}

func (r *BarcodeRepo) ClearPrimary(_ context.Context, productID string) error {
	return r.h.write(func(st *state) error {
		for id, b := range st.barcodes {
			if b.ProductID == productID && b.IsPrimary {
				b.IsPrimary = false
				st.barcodes[id] = b
			}
		}
		return nil
	})
}

func (r *BarcodeRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		delete(st.barcodes, id)
		return nil
	})
}

func (r *BarcodeRepo) DeleteByProduct(_ context.Context, productID string) error {
	return r.h.write(func(st *state) error {
		for id, b := range st.barcodes {
			if b.ProductID == productID {
				delete(st.barcodes, id)
			}
		}
		return nil
	})
}
