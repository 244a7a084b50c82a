package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación en memoria de StockMovementRepository.
type StockMovementRepo struct {
	h handle
}

// NewStockMovementRepository repositorio sobre el estado publicado.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{h: handle{s: s}}
}

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.movements[m.ID]; ok {
			return domain.ErrDuplicate
		}
		st.seq++
		st.movements[m.ID] = movementRecord{m: *m, seq: st.seq}
		return nil
	})
}

func (r *StockMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.h.read(func(st *state) error {
		if rec, ok := st.movements[id]; ok {
			m := rec.m
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *StockMovementRepo) Update(_ context.Context, m *entity.StockMovement) error {
	return r.h.write(func(st *state) error {
		rec, ok := st.movements[m.ID]
		if !ok {
			return domain.ErrMovementNotFound
		}
		rec.m = *m
		st.movements[m.ID] = rec
		return nil
	})
}

func (r *StockMovementRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		delete(st.movements, id)
		return nil
	})
}

func (r *StockMovementRepo) DeleteByProduct(_ context.Context, productID string) error {
	return r.h.write(func(st *state) error {
		for id, rec := range st.movements {
			if rec.m.ProductID == productID {
				delete(st.movements, id)
			}
		}
		return nil
	})
}

func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	var recs []movementRecord
	err := r.h.read(func(st *state) error {
		for _, rec := range st.movements {
			if rec.m.ProductID != productID {
				continue
			}
			if from != nil && rec.m.Timestamp.Before(*from) {
				continue
			}
			if to != nil && rec.m.Timestamp.After(*to) {
				continue
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].m.Timestamp.Equal(recs[j].m.Timestamp) {
			return recs[i].m.Timestamp.After(recs[j].m.Timestamp)
		}
		return recs[i].seq > recs[j].seq
	})
	list := make([]*entity.StockMovement, 0, len(recs))
	for _, rec := range recs {
		m := rec.m
		list = append(list, &m)
	}
	return list, nil
}
