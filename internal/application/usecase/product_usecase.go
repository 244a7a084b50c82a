package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductUseCase casos de uso de productos. CurrentQty y AvgCost se manejan vía movimientos.
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	ledger       *inventory.RegisterMovementUseCase
	log          zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	ledger *inventory.RegisterMovementUseCase,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		ledger:       ledger,
		log:          log.With().Str("component", "products").Logger(),
	}
}

// Register crea el producto con stock 0 y, si InitialQty > 0, registra la entrada inicial
// por el motor de inventario en la misma transacción.
func (uc *ProductUseCase) Register(ctx context.Context, in dto.RegisterProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" {
		return nil, domain.NewValidationError("sku", "requerido")
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	if in.Price.IsNegative() {
		return nil, domain.NewValidationError("price", "no puede ser negativo")
	}
	if in.MinQty.IsNegative() {
		return nil, domain.NewValidationError("min_qty", "no puede ser negativo")
	}
	if in.InitialQty.IsNegative() {
		return nil, domain.NewValidationError("initial_qty", "no puede ser negativo")
	}
	if in.Unit = strings.TrimSpace(in.Unit); in.Unit == "" {
		in.Unit = entity.DefaultUnit
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateSKU
	}
	categoryID, err := uc.checkCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	supplierID, err := uc.checkSupplier(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:         uuid.New().String(),
		SKU:        in.SKU,
		Name:       in.Name,
		CategoryID: categoryID,
		SupplierID: supplierID,
		Unit:       in.Unit,
		Price:      in.Price,
		AvgCost:    decimal.Zero,
		MinQty:     in.MinQty,
		CurrentQty: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var saved *entity.Product
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		_ repository.BarcodeRepository,
	) error {
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialQty.GreaterThan(decimal.Zero) {
			if _, err := uc.ledger.RecordInTx(ctx, movRepo, productRepo, inventory.MovementInputDTO{
				ProductID: product.ID,
				Type:      entity.MovementTypeIN,
				Quantity:  in.InitialQty,
				UnitCost:  in.InitialUnitCost,
				Reason:    entity.ReasonInitialStock,
				Timestamp: now,
			}); err != nil {
				return err
			}
		}
		p, err := productRepo.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", saved.ID).Str("sku", saved.SKU).Msg("producto registrado")
	return ToProductResponse(saved), nil
}

// GetSnapshot obtiene el producto con stock, costo promedio y margen actuales.
func (uc *ProductUseCase) GetSnapshot(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualiza metadatos del producto. No permite modificar stock ni costo promedio.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return nil, domain.NewValidationError("sku", "requerido")
		}
		if sku != product.SKU {
			other, err := uc.repo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicateSKU
			}
			product.SKU = sku
		}
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "requerido")
		}
		product.Name = name
	}
	if in.CategoryID != nil {
		if product.CategoryID, err = uc.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}
	if in.SupplierID != nil {
		if product.SupplierID, err = uc.checkSupplier(ctx, in.SupplierID); err != nil {
			return nil, err
		}
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.NewValidationError("price", "no puede ser negativo")
		}
		product.Price = *in.Price
	}
	if in.MinQty != nil {
		if in.MinQty.IsNegative() {
			return nil, domain.NewValidationError("min_qty", "no puede ser negativo")
		}
		product.MinQty = *in.MinQty
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con búsqueda, filtros, orden y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	if in.Limit > 100 {
		in.Limit = 100
	}
	sortBy := in.Sort
	if sortBy == "" {
		sortBy = repository.SortByName
	}
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		SupplierID: in.SupplierID,
		SortBy:     sortBy,
		Desc:       strings.EqualFold(in.Dir, "desc"),
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Delete elimina el producto con sus movimientos y códigos de barras en una sola transacción.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		barcodeRepo repository.BarcodeRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		if err := movRepo.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		if err := barcodeRepo.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado con sus movimientos")
	return nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	c, err := uc.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return &c.ID, nil
}

func (uc *ProductUseCase) checkSupplier(ctx context.Context, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	s, err := uc.supplierRepo.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrSupplierNotFound
	}
	return &s.ID, nil
}

// ToProductResponse convierte la entidad a su DTO con margen e indicador de stock bajo.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		SupplierID: p.SupplierID,
		Unit:       p.Unit,
		Price:      p.Price,
		AvgCost:    p.AvgCost,
		MinQty:     p.MinQty,
		CurrentQty: p.CurrentQty,
		Margin:     p.Margin(),
		MarginPct:  p.MarginPct(),
		LowStock:   p.IsLowStock(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
