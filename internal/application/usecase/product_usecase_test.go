package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

type deps struct {
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
	suppliers  *usecase.SupplierUseCase
	ledger     *inventory.RegisterMovementUseCase
	barcodes   *inventory.BarcodeUseCase
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	s := memory.New()
	productRepo := memory.NewProductRepository(s)
	categoryRepo := memory.NewCategoryRepository(s)
	supplierRepo := memory.NewSupplierRepository(s)
	barcodes := inventory.NewBarcodeUseCase(s, memory.NewBarcodeRepository(s), productRepo)
	ledger := inventory.NewRegisterMovementUseCase(
		s, productRepo, memory.NewStockMovementRepository(s), barcodes,
		lock.NewLocal(time.Second), inventory.DefaultRetryPolicy(), zerolog.Nop(),
	)
	return &deps{
		products:   usecase.NewProductUseCase(s, productRepo, categoryRepo, supplierRepo, ledger, zerolog.Nop()),
		categories: usecase.NewCategoryUseCase(categoryRepo),
		suppliers:  usecase.NewSupplierUseCase(supplierRepo),
		ledger:     ledger,
		barcodes:   barcodes,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Register
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_StockInicialComoEntrada(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()

	p, err := d.products.Register(ctx, dto.RegisterProductRequest{
		SKU: " PAN-01 ", Name: "Pan de molde", Price: dec("2.5"), MinQty: dec("5"),
		InitialQty: dec("20"), InitialUnitCost: ptr(dec("1.2")),
	})
	require.NoError(t, err)
	assert.Equal(t, "PAN-01", p.SKU)
	assert.Equal(t, entity.DefaultUnit, p.Unit)
	assert.True(t, dec("20").Equal(p.CurrentQty))
	assert.True(t, dec("1.2").Equal(p.AvgCost))
	assert.True(t, dec("1.3").Equal(p.Margin))
	assert.False(t, p.LowStock)

	hist, err := d.ledger.History(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, entity.MovementTypeIN, hist[0].Type)
	assert.Equal(t, entity.ReasonInitialStock, hist[0].Reason)
}

func TestRegister_SinStockInicialNoCreaMovimiento(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()

	p, err := d.products.Register(ctx, dto.RegisterProductRequest{SKU: "SAL-01", Name: "Sal", MinQty: dec("1")})
	require.NoError(t, err)
	assert.True(t, p.CurrentQty.IsZero())
	assert.True(t, p.LowStock, "0 <= mínimo")

	hist, err := d.ledger.History(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestRegister_Validaciones(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.RegisterProductRequest
	}{
		{"sin sku", dto.RegisterProductRequest{Name: "X"}},
		{"sin nombre", dto.RegisterProductRequest{SKU: "X"}},
		{"precio negativo", dto.RegisterProductRequest{SKU: "X", Name: "X", Price: dec("-1")}},
		{"mínimo negativo", dto.RegisterProductRequest{SKU: "X", Name: "X", MinQty: dec("-1")}},
		{"stock inicial negativo", dto.RegisterProductRequest{SKU: "X", Name: "X", InitialQty: dec("-3")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.products.Register(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegister_SKUDuplicado(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	_, err := d.products.Register(ctx, dto.RegisterProductRequest{SKU: "DUP", Name: "Uno"})
	require.NoError(t, err)

	_, err = d.products.Register(ctx, dto.RegisterProductRequest{SKU: "DUP", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRegister_CategoriaInexistente(t *testing.T) {
	d := newDeps(t)
	_, err := d.products.Register(context.Background(), dto.RegisterProductRequest{
		SKU: "CAT-01", Name: "Con categoría", CategoryID: ptr("no-existe"),
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / List
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_NoTocaStockNiCosto(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	p, err := d.products.Register(ctx, dto.RegisterProductRequest{
		SKU: "UPD-01", Name: "Original", InitialQty: dec("4"), InitialUnitCost: ptr(dec("3")),
	})
	require.NoError(t, err)

	updated, err := d.products.Update(ctx, p.ID, dto.UpdateProductRequest{
		Name: ptr("Renombrado"), Price: ptr(dec("5")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", updated.Name)
	assert.True(t, dec("4").Equal(updated.CurrentQty))
	assert.True(t, dec("3").Equal(updated.AvgCost))
	assert.True(t, dec("2").Equal(updated.Margin))

	_, err = d.products.Update(ctx, "no-existe", dto.UpdateProductRequest{Name: ptr("X")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdate_SKUDeOtroProducto(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	_, err := d.products.Register(ctx, dto.RegisterProductRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)
	b, err := d.products.Register(ctx, dto.RegisterProductRequest{SKU: "B", Name: "B"})
	require.NoError(t, err)

	_, err = d.products.Update(ctx, b.ID, dto.UpdateProductRequest{SKU: ptr("A")})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestList_BusquedaOrdenYPaginacion(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	for _, in := range []dto.RegisterProductRequest{
		{SKU: "LEC-1", Name: "Leche entera", Price: dec("3")},
		{SKU: "LEC-2", Name: "Leche descremada", Price: dec("4")},
		{SKU: "PAN-1", Name: "Pan", Price: dec("1")},
	} {
		_, err := d.products.Register(ctx, in)
		require.NoError(t, err)
	}

	res, err := d.products.List(ctx, dto.ProductListRequest{Q: "leche"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page.Total)
	assert.Equal(t, 20, res.Page.Limit)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Leche descremada", res.Items[0].Name)

	res, err = d.products.List(ctx, dto.ProductListRequest{Sort: "price", Dir: "desc", PageRequest: dto.PageRequest{Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "LEC-2", res.Items[0].SKU)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_CascadaMovimientosYCodigos(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	p, err := d.products.Register(ctx, dto.RegisterProductRequest{SKU: "DEL-01", Name: "Borrable", InitialQty: dec("3")})
	require.NoError(t, err)
	bc, err := d.barcodes.Add(ctx, p.ID, inventory.AddBarcodeInput{Code: "DEL-CODE"})
	require.NoError(t, err)
	movs, err := d.ledger.History(ctx, p.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, movs, 1)

	require.NoError(t, d.products.Delete(ctx, p.ID))

	_, err = d.products.GetSnapshot(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = d.ledger.History(ctx, p.ID, nil, nil)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, _, err = d.barcodes.Resolve(ctx, "DEL-CODE")
	assert.ErrorIs(t, err, domain.ErrBarcodeNotFound)

	// Las filas hijas ya no existen por id.
	assert.ErrorIs(t, d.ledger.DeleteMovement(ctx, movs[0].ID), domain.ErrMovementNotFound)
	assert.ErrorIs(t, d.barcodes.Delete(ctx, bc.ID), domain.ErrBarcodeNotFound)

	assert.ErrorIs(t, d.products.Delete(ctx, p.ID), domain.ErrProductNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías y proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryDelete_ProductosQuedanSinCategoria(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	c, err := d.categories.Create(ctx, dto.CreateCategoryRequest{Name: "Lácteos"})
	require.NoError(t, err)
	p, err := d.products.Register(ctx, dto.RegisterProductRequest{SKU: "Q-1", Name: "Queso", CategoryID: &c.ID})
	require.NoError(t, err)
	require.NotNil(t, p.CategoryID)

	_, err = d.categories.Create(ctx, dto.CreateCategoryRequest{Name: "lácteos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, d.categories.Delete(ctx, c.ID))
	got, err := d.products.GetSnapshot(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	assert.ErrorIs(t, d.categories.Delete(ctx, c.ID), domain.ErrCategoryNotFound)
}

func TestSupplier_CrearYListar(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()
	_, err := d.suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "Molinos", Contact: "ventas@molinos.test"})
	require.NoError(t, err)
	_, err = d.suppliers.Create(ctx, dto.CreateSupplierRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := d.suppliers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Molinos", list[0].Name)
}
