// seed importa productos desde un CSV a PostgreSQL usando los mismos casos de uso que la API:
// el stock inicial queda registrado como movimiento de entrada y los códigos pasan la validación EAN/UPC.
//
// Uso: go run ./cmd/seed -file productos.csv [-latin1]
// Columnas: sku,name,unit,price,min_qty,initial_qty,initial_unit_cost,barcode,pack_qty
// La primera fila es encabezado. Las columnas desde unit son opcionales.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	colSKU = iota
	colName
	colUnit
	colPrice
	colMinQty
	colInitialQty
	colInitialCost
	colBarcode
	colPackQty
)

type row struct {
	line    int
	product dto.RegisterProductRequest
	barcode string
	packQty int
}

func main() {
	file := flag.String("file", "productos.csv", "CSV de productos")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "seed"})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir CSV")
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = decodeLatin1(f)
	}
	rows, err := readRows(in)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log.Zerolog()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	tx := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
	productRepo := postgres.NewProductRepository(pool)
	barcodeUC := inventory.NewBarcodeUseCase(tx, postgres.NewBarcodeRepository(pool), productRepo)
	ledger := inventory.NewRegisterMovementUseCase(
		tx, productRepo, postgres.NewStockMovementRepository(pool), barcodeUC,
		lock.NewLocal(cfg.Ledger.LockTimeout), inventory.DefaultRetryPolicy(), zerolog.Nop(),
	)
	productUC := usecase.NewProductUseCase(
		tx, productRepo, postgres.NewCategoryRepository(pool), postgres.NewSupplierRepository(pool),
		ledger, log.Zerolog(),
	)

	var created, skipped int
	for _, r := range rows {
		p, err := productUC.Register(ctx, r.product)
		if errors.Is(err, domain.ErrDuplicateSKU) {
			skipped++
			log.Warn().Int("line", r.line).Str("sku", r.product.SKU).Msg("SKU existente, se omite")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Int("line", r.line).Str("sku", r.product.SKU).Msg("registrar producto")
		}
		created++
		if r.barcode == "" {
			continue
		}
		if _, err := barcodeUC.Add(ctx, p.ID, inventory.AddBarcodeInput{
			Code:      r.barcode,
			Symbology: guessSymbology(r.barcode),
			PackQty:   r.packQty,
			IsPrimary: true,
		}); err != nil {
			log.Error().Err(err).Int("line", r.line).Str("barcode", r.barcode).Msg("código de barras rechazado")
		}
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Msg("importación terminada")
}

func decodeLatin1(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
}

func readRows(in io.Reader) ([]row, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []row
	line := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se requieren sku y name", line)
		}
		parsed, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		parsed.line = line
		out = append(out, parsed)
	}
	return out, nil
}

func parseRow(rec []string) (row, error) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	num := func(i int) (decimal.Decimal, error) {
		s := field(i)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	}

	var r row
	var err error
	r.product.SKU = field(colSKU)
	r.product.Name = field(colName)
	r.product.Unit = field(colUnit)
	if r.product.Price, err = num(colPrice); err != nil {
		return r, fmt.Errorf("price: %w", err)
	}
	if r.product.MinQty, err = num(colMinQty); err != nil {
		return r, fmt.Errorf("min_qty: %w", err)
	}
	if r.product.InitialQty, err = num(colInitialQty); err != nil {
		return r, fmt.Errorf("initial_qty: %w", err)
	}
	if field(colInitialCost) != "" {
		cost, err := num(colInitialCost)
		if err != nil {
			return r, fmt.Errorf("initial_unit_cost: %w", err)
		}
		r.product.InitialUnitCost = &cost
	}
	r.barcode = field(colBarcode)
	if s := field(colPackQty); s != "" {
		if r.packQty, err = strconv.Atoi(s); err != nil {
			return r, fmt.Errorf("pack_qty: %w", err)
		}
	}
	return r, nil
}

// guessSymbology toma EAN13/UPC para códigos numéricos de 12 o 13 dígitos; el resto como CODE128.
func guessSymbology(code string) string {
	digits := strings.ReplaceAll(code, " ", "")
	if _, err := strconv.ParseUint(digits, 10, 64); err == nil {
		switch len(digits) {
		case 13:
			return entity.SymbologyEAN13
		case 12:
			return entity.SymbologyUPC
		}
	}
	return entity.SymbologyCODE128
}
