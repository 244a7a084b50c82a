// Package memory implementa los puertos de persistencia en memoria (modo STORAGE=memory y tests).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store guarda todo el estado en mapas. Las transacciones se serializan (una a la vez) y trabajan
// sobre una copia que solo se publica en el commit; si fn falla la copia se descarta.
type Store struct {
	txMu sync.Mutex   // serializa transacciones y escrituras fuera de tx
	mu   sync.RWMutex // protege data
	data *state
}

type movementRecord struct {
	m   entity.StockMovement
	seq int64
}

type state struct {
	products   map[string]entity.Product
	movements  map[string]movementRecord
	barcodes   map[string]entity.Barcode
	categories map[string]entity.Category
	suppliers  map[string]entity.Supplier
	seq        int64
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: &state{
		products:   make(map[string]entity.Product),
		movements:  make(map[string]movementRecord),
		barcodes:   make(map[string]entity.Barcode),
		categories: make(map[string]entity.Category),
		suppliers:  make(map[string]entity.Supplier),
	}}
}

func (st *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(st.products)),
		movements:  make(map[string]movementRecord, len(st.movements)),
		barcodes:   make(map[string]entity.Barcode, len(st.barcodes)),
		categories: make(map[string]entity.Category, len(st.categories)),
		suppliers:  make(map[string]entity.Supplier, len(st.suppliers)),
		seq:        st.seq,
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.movements {
		c.movements[k] = v
	}
	for k, v := range st.barcodes {
		c.barcodes[k] = v
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.suppliers {
		c.suppliers[k] = v
	}
	return c
}

// Run ejecuta fn con repositorios atados a una copia del estado y la publica si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	barcodeRepo repository.BarcodeRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	h := handle{s: s, tx: work}
	if err := fn(&StockMovementRepo{h: h}, &ProductRepo{h: h}, &BarcodeRepo{h: h}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// handle decide sobre qué estado opera un repositorio: la copia de la tx o el estado publicado.
type handle struct {
	s  *Store
	tx *state
}

func (h handle) read(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	return fn(h.s.data)
}

// write fuera de tx toma el lock de transacciones para no pisar un commit en curso.
// Las funciones de escritura validan antes de mutar, así un error no deja cambios parciales.
func (h handle) write(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.s.txMu.Lock()
	defer h.s.txMu.Unlock()
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.data)
}
