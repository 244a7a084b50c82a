package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	products *memory.ProductRepo
	barcodes *inventory.BarcodeUseCase
	ledger   *inventory.RegisterMovementUseCase
	reports  *inventory.ReportUseCase
}

func newFixture(t *testing.T, locker inventory.Locker) *fixture {
	t.Helper()
	s := memory.New()
	productRepo := memory.NewProductRepository(s)
	barcodeUC := inventory.NewBarcodeUseCase(s, memory.NewBarcodeRepository(s), productRepo)
	ledger := inventory.NewRegisterMovementUseCase(
		s, productRepo, memory.NewStockMovementRepository(s), barcodeUC, locker,
		inventory.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
		zerolog.Nop(),
	)
	return &fixture{
		store:    s,
		products: productRepo,
		barcodes: barcodeUC,
		ledger:   ledger,
		reports:  inventory.NewReportUseCase(memory.NewReportRepository(s)),
	}
}

func (f *fixture) newProduct(t *testing.T, sku string) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       sku,
		Name:      "Producto " + sku,
		Unit:      entity.DefaultUnit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) reload(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func (f *fixture) record(t *testing.T, productID, typ, qty string, cost *decimal.Decimal) *entity.StockMovement {
	t.Helper()
	m, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{
		ProductID: productID,
		Type:      typ,
		Quantity:  d(qty),
		UnitCost:  cost,
	})
	require.NoError(t, err)
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t, lock.NewLocal(time.Second))
	p := f.newProduct(t, "PAN-01")

	in1 := f.record(t, p.ID, entity.MovementTypeIN, "20", ptr(d("1.20")))
	f.record(t, p.ID, entity.MovementTypeIN, "3", ptr(d("1.00")))
	out := f.record(t, p.ID, entity.MovementTypeOUT, "2", ptr(d("99")))

	got := f.reload(t, p.ID)
	assert.True(t, d("21").Equal(got.CurrentQty), "qty %s", got.CurrentQty)
	assert.True(t, d("1.1739130435").Equal(got.AvgCost), "avg %s", got.AvgCost)

	assert.Equal(t, entity.DefaultReasonIN, in1.Reason)
	assert.Equal(t, entity.DefaultReasonOUT, out.Reason)
	assert.Nil(t, out.UnitCost, "las salidas no guardan costo unitario")
}

func TestRecordMovement_SalidaInsuficienteNoCambiaNada(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "PAN-02")
	f.record(t, p.ID, entity.MovementTypeIN, "21", ptr(d("1")))

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{
		ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: d("100"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got := f.reload(t, p.ID)
	assert.True(t, d("21").Equal(got.CurrentQty))
	hist, err := f.ledger.History(context.Background(), p.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestRecordMovement_Validaciones(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "PAN-03")
	ctx := context.Background()

	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: p.ID, Type: "TRANSFER", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("1"), UnitCost: ptr(d("-2"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: uuid.NewString(), Type: entity.MovementTypeIN, Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{Type: entity.MovementTypeIN, Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordMovement_EscalaDecimal(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "PAN-ESC")
	ctx := context.Background()

	_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("1.00005"), UnitCost: ptr(d("1"))})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "quantity", vErr.Field)

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("1"), UnitCost: ptr(d("1.23456"))})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "unit_cost", vErr.Field)

	got := f.reload(t, p.ID)
	assert.True(t, got.CurrentQty.IsZero())
	assert.True(t, got.AvgCost.IsZero())

	// Ceros a la derecha no cuentan como decimales extra.
	f.record(t, p.ID, entity.MovementTypeIN, "1.500000", ptr(d("2.10000")))
	assert.True(t, d("1.5").Equal(f.reload(t, p.ID).CurrentQty))
}

func TestRecordMovement_PorCodigoDeEmpaque(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "LECHE-01")
	ctx := context.Background()
	_, err := f.barcodes.Add(ctx, p.ID, inventory.AddBarcodeInput{
		Code: "7891234567895", Symbology: entity.SymbologyEAN13, PackQty: 6, IsPrimary: true,
	})
	require.NoError(t, err)

	m, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{
		Barcode: " 789 1234 56789 5 ", Type: entity.MovementTypeIN, Quantity: d("2"), UnitCost: ptr(d("0.5")),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, m.ProductID)
	assert.True(t, d("12").Equal(m.Quantity), "2 empaques x 6 = 12 unidades")
	assert.True(t, d("12").Equal(f.reload(t, p.ID).CurrentQty))

	_, err = f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{
		Barcode: "0000000000000", Type: entity.MovementTypeIN, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrBarcodeNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteMovement / UpdateMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteMovement_RevierteCantidadSinTocarPromedio(t *testing.T) {
	f := newFixture(t, lock.NewLocal(time.Second))
	p := f.newProduct(t, "PAN-04")
	f.record(t, p.ID, entity.MovementTypeIN, "20", ptr(d("1.20")))
	second := f.record(t, p.ID, entity.MovementTypeIN, "3", ptr(d("1.00")))
	avg := f.reload(t, p.ID).AvgCost

	require.NoError(t, f.ledger.DeleteMovement(context.Background(), second.ID))

	got := f.reload(t, p.ID)
	assert.True(t, d("20").Equal(got.CurrentQty))
	assert.True(t, avg.Equal(got.AvgCost), "el promedio no se reconstruye al borrar")

	err := f.ledger.DeleteMovement(context.Background(), second.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}

func TestDeleteMovement_SalidaDevuelveStock(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "PAN-05")
	f.record(t, p.ID, entity.MovementTypeIN, "10", ptr(d("1")))
	out := f.record(t, p.ID, entity.MovementTypeOUT, "4", nil)

	require.NoError(t, f.ledger.DeleteMovement(context.Background(), out.ID))
	assert.True(t, d("10").Equal(f.reload(t, p.ID).CurrentQty))
}

func TestUpdateMovement_RecalculaSobreCantidadCompensada(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "PAN-06")
	f.record(t, p.ID, entity.MovementTypeIN, "10", ptr(d("2")))
	second := f.record(t, p.ID, entity.MovementTypeIN, "10", ptr(d("4")))
	require.True(t, d("3").Equal(f.reload(t, p.ID).AvgCost))

	updated, err := f.ledger.UpdateMovement(context.Background(), second.ID, inventory.UpdateMovementInput{
		Type: entity.MovementTypeIN, Quantity: d("10"), UnitCost: ptr(d("6")), Reason: "Compra corregida",
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)
	assert.Equal(t, second.Timestamp, updated.Timestamp)
	assert.Equal(t, "Compra corregida", updated.Reason)

	got := f.reload(t, p.ID)
	assert.True(t, d("20").Equal(got.CurrentQty))
	assert.True(t, d("4.5").Equal(got.AvgCost), "avg %s", got.AvgCost)
}

func TestUpdateMovement_SalidaInsuficienteHaceRollback(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "PAN-07")
	f.record(t, p.ID, entity.MovementTypeIN, "5", ptr(d("1")))
	out := f.record(t, p.ID, entity.MovementTypeOUT, "3", nil)

	_, err := f.ledger.UpdateMovement(context.Background(), out.ID, inventory.UpdateMovementInput{
		Type: entity.MovementTypeOUT, Quantity: d("9"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, d("2").Equal(f.reload(t, p.ID).CurrentQty))
	stored, err := memory.NewStockMovementRepository(f.store).GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	assert.True(t, d("3").Equal(stored.Quantity))

	_, err = f.ledger.UpdateMovement(context.Background(), uuid.NewString(), inventory.UpdateMovementInput{
		Type: entity.MovementTypeOUT, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariantes y concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Tras cualquier secuencia de altas, ediciones y bajas el stock coincide con el libro.
func TestLedger_StockIgualASumaDeMovimientos(t *testing.T) {
	f := newFixture(t, lock.NewLocal(time.Second))
	ctx := context.Background()
	p := f.newProduct(t, "INV-01")

	a := f.record(t, p.ID, entity.MovementTypeIN, "50", ptr(d("2")))
	b := f.record(t, p.ID, entity.MovementTypeOUT, "7.5", nil)
	c := f.record(t, p.ID, entity.MovementTypeIN, "4", nil)
	f.record(t, p.ID, entity.MovementTypeOUT, "10", nil)

	_, err := f.ledger.UpdateMovement(ctx, b.ID, inventory.UpdateMovementInput{Type: entity.MovementTypeOUT, Quantity: d("2.5")})
	require.NoError(t, err)
	_, err = f.ledger.UpdateMovement(ctx, c.ID, inventory.UpdateMovementInput{Type: entity.MovementTypeOUT, Quantity: d("1")})
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteMovement(ctx, a.ID))

	hist, err := f.ledger.History(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, m := range hist {
		if m.Type == entity.MovementTypeIN {
			sum = sum.Add(m.Quantity)
		} else {
			sum = sum.Sub(m.Quantity)
		}
	}
	assert.True(t, sum.Equal(f.reload(t, p.ID).CurrentQty))

	drift, err := f.reports.LedgerDrift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

// Dos salidas concurrentes por todo el stock: exactamente una se registra.
func TestRecordMovement_SalidasConcurrentes(t *testing.T) {
	f := newFixture(t, lock.NewLocal(time.Second))
	p := f.newProduct(t, "CONC-01")
	f.record(t, p.ID, entity.MovementTypeIN, "5", ptr(d("1")))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{
				ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: d("5"),
			})
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, f.reload(t, p.ID).CurrentQty.IsZero())
}

func TestRecordMovement_MuchasEntradasConcurrentes(t *testing.T) {
	f := newFixture(t, lock.NewLocal(5*time.Second))
	p := f.newProduct(t, "CONC-02")

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{
				ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("2"), UnitCost: ptr(d("3")),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got := f.reload(t, p.ID)
	assert.True(t, d("50").Equal(got.CurrentQty))
	assert.True(t, d("3").Equal(got.AvgCost))
}

// busyLocker devuelve ErrBusy las primeras n veces.
type busyLocker struct {
	mu    sync.Mutex
	n     int
	calls int
}

func (b *busyLocker) Acquire(_ context.Context, _ string) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= b.n {
		return nil, domain.ErrBusy
	}
	return func() {}, nil
}

func TestRecordMovement_ReintentaAnteBusy(t *testing.T) {
	locker := &busyLocker{n: 2}
	f := newFixture(t, locker)
	p := f.newProduct(t, "BUSY-01")

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{
		ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, locker.calls)
}

func TestRecordMovement_BusyAgotaIntentos(t *testing.T) {
	locker := &busyLocker{n: 100}
	f := newFixture(t, locker)
	p := f.newProduct(t, "BUSY-02")

	_, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInputDTO{
		ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 3, locker.calls)
	assert.True(t, f.reload(t, p.ID).CurrentQty.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// History
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_OrdenDescendenteYRango(t *testing.T) {
	f := newFixture(t, nil)
	p := f.newProduct(t, "HIST-01")
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := f.ledger.RecordMovement(ctx, inventory.MovementInputDTO{
			ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: d("1"),
			Timestamp: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	hist, err := f.ledger.History(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.True(t, hist[0].Timestamp.After(hist[1].Timestamp))
	assert.True(t, hist[1].Timestamp.After(hist[2].Timestamp))

	from := base.AddDate(0, 0, 1)
	hist, err = f.ledger.History(ctx, p.ID, &from, nil)
	require.NoError(t, err)
	assert.Len(t, hist, 2)

	_, err = f.ledger.History(ctx, uuid.NewString(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
