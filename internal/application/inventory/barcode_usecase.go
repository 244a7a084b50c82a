package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/barcode"
)

// BarcodeUseCase resuelve códigos escaneados a productos y administra los códigos de cada producto.
type BarcodeUseCase struct {
	txRunner    TxRunner
	barcodeRepo repository.BarcodeRepository
	productRepo repository.ProductRepository
}

// NewBarcodeUseCase construye el caso de uso.
func NewBarcodeUseCase(txRunner TxRunner, barcodeRepo repository.BarcodeRepository, productRepo repository.ProductRepository) *BarcodeUseCase {
	return &BarcodeUseCase{txRunner: txRunner, barcodeRepo: barcodeRepo, productRepo: productRepo}
}

// AddBarcodeInput datos de un nuevo código. PackQty 0 se toma como 1.
type AddBarcodeInput struct {
	Code      string
	Symbology string // vacío = CODE128
	PackQty   int
	Label     string
	IsPrimary bool
}

// Resolve busca el producto de un código escaneado. Si el código valida como EAN-13/UPC-A se
// busca su forma normalizada; si no, el texto recortado tal cual. Devuelve el producto y su PackQty (>= 1).
func (uc *BarcodeUseCase) Resolve(ctx context.Context, raw string) (*entity.Product, int, error) {
	key := barcode.LookupKey(raw)
	if key == "" {
		return nil, 0, domain.ErrBarcodeNotFound
	}
	b, err := uc.barcodeRepo.GetByCode(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	if b == nil {
		return nil, 0, domain.ErrBarcodeNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, b.ProductID)
	if err != nil {
		return nil, 0, err
	}
	if product == nil {
		return nil, 0, domain.ErrBarcodeNotFound
	}
	return product, b.EffectivePackQty(), nil
}

// Add asocia un código al producto. EAN13/UPC se validan y guardan en forma de 13 dígitos.
// Si IsPrimary, el principal anterior deja de serlo en la misma transacción.
func (uc *BarcodeUseCase) Add(ctx context.Context, productID string, in AddBarcodeInput) (*entity.Barcode, error) {
	b, err := buildBarcode(productID, in)
	if err != nil {
		return nil, err
	}
	err = uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		barcodeRepo repository.BarcodeRepository,
	) error {
		product, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		existing, err := barcodeRepo.GetByCode(ctx, b.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateCode
		}
		if b.IsPrimary {
			if err := barcodeRepo.ClearPrimary(ctx, productID); err != nil {
				return err
			}
		}
		return barcodeRepo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListByProduct códigos del producto, el principal primero.
func (uc *BarcodeUseCase) ListByProduct(ctx context.Context, productID string) ([]*entity.Barcode, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return uc.barcodeRepo.ListByProduct(ctx, productID)
}

// Delete elimina un código.
func (uc *BarcodeUseCase) Delete(ctx context.Context, id string) error {
	b, err := uc.barcodeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrBarcodeNotFound
	}
	return uc.barcodeRepo.Delete(ctx, id)
}

func buildBarcode(productID string, in AddBarcodeInput) (*entity.Barcode, error) {
	symbology := strings.ToUpper(strings.TrimSpace(in.Symbology))
	if symbology == "" {
		symbology = entity.SymbologyCODE128
	}
	if !entity.IsValidSymbology(symbology) {
		return nil, domain.NewValidationError("symbology", "simbología no soportada")
	}
	if in.PackQty < 0 {
		return nil, domain.NewValidationError("pack_qty", "debe ser mayor o igual a 1")
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.NewValidationError("code", "requerido")
	}
	if symbology == entity.SymbologyEAN13 || symbology == entity.SymbologyUPC {
		ean, err := barcode.ValidateAndNormalize(code)
		if err != nil {
			return nil, err
		}
		code = ean
	}
	b := &entity.Barcode{
		ID:        uuid.New().String(),
		ProductID: productID,
		Symbology: symbology,
		Code:      code,
		PackQty:   in.PackQty,
		Label:     strings.TrimSpace(in.Label),
		IsPrimary: in.IsPrimary,
		CreatedAt: time.Now(),
	}
	b.PackQty = b.EffectivePackQty()
	return b, nil
}

// ToBarcodeResponse convierte la entidad a su DTO de salida.
func ToBarcodeResponse(b *entity.Barcode) dto.BarcodeResponse {
	return dto.BarcodeResponse{
		ID:        b.ID,
		ProductID: b.ProductID,
		Symbology: b.Symbology,
		Code:      b.Code,
		PackQty:   b.PackQty,
		Label:     b.Label,
		IsPrimary: b.IsPrimary,
		CreatedAt: b.CreatedAt,
	}
}
