package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// RetryPolicy reintentos ante domain.ErrBusy.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // espera lineal: Backoff * intento
}

// DefaultRetryPolicy 3 intentos con 50ms de espera base.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 50 * time.Millisecond}
}

// RegisterMovementUseCase registra, edita y elimina movimientos de inventario manteniendo
// CurrentQty y AvgCost del producto en la misma transacción (fila bloqueada con SELECT FOR UPDATE).
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	resolver    *BarcodeUseCase
	locker      Locker
	retry       RetryPolicy
	log         zerolog.Logger
	now         func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso. locker puede ser nil: en ese caso la
// serialización depende solo del bloqueo de fila de la transacción.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	resolver *BarcodeUseCase,
	locker Locker,
	retry RetryPolicy,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		resolver:    resolver,
		locker:      locker,
		retry:       retry,
		log:         log.With().Str("component", "ledger").Logger(),
		now:         time.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// Se identifica el producto por ProductID o por Barcode; con Barcode, Quantity son unidades
// escaneadas y se multiplica por el PackQty del código.
type MovementInputDTO struct {
	ProductID string
	Barcode   string
	Type      string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal // solo IN; ignorado en OUT
	Reason    string
	Note      string
	Timestamp time.Time // cero = ahora
}

// UpdateMovementInput nuevos valores de un movimiento existente. El producto no cambia.
type UpdateMovementInput struct {
	Type      string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	Reason    string
	Note      string
	Timestamp *time.Time // nil conserva la fecha original
}

// RecordMovement resuelve el producto (ID o código de barras), bloquea el producto y registra el
// movimiento junto con sus efectos en una sola transacción.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, input MovementInputDTO) (*entity.StockMovement, error) {
	if input.ProductID == "" && strings.TrimSpace(input.Barcode) == "" {
		return nil, domain.NewValidationError("product_id", "producto o código de barras requerido")
	}
	if input.ProductID == "" {
		if uc.resolver == nil {
			return nil, domain.ErrBarcodeNotFound
		}
		product, packQty, err := uc.resolver.Resolve(ctx, input.Barcode)
		if err != nil {
			return nil, err
		}
		input.ProductID = product.ID
		input.Quantity = input.Quantity.Mul(decimal.NewFromInt(int64(packQty)))
	}
	// Validación previa al bloqueo; RecordInTx la repite por ser punto de entrada público.
	if _, err := uc.buildMovement(input); err != nil {
		return nil, err
	}

	var created *entity.StockMovement
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			productRepo repository.ProductRepository,
			_ repository.BarcodeRepository,
		) error {
			m, err := uc.RecordInTx(ctx, movRepo, productRepo, input)
			if err != nil {
				return err
			}
			created = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RecordInTx registra un movimiento usando los repositorios proporcionados (misma transacción del caller).
// Bloquea la fila del producto, aplica la regla de costo promedio y persiste producto y movimiento.
func (uc *RegisterMovementUseCase) RecordInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	input MovementInputDTO,
) (*entity.StockMovement, error) {
	mov, err := uc.buildMovement(input)
	if err != nil {
		return nil, err
	}
	// Bloquea la fila del producto (SELECT FOR UPDATE) para evitar condiciones de carrera
	product, err := productRepo.GetForUpdate(ctx, mov.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	pos, err := inventory.Apply(inventory.PositionOf(product), mov)
	if err != nil {
		return nil, err
	}
	if err := productRepo.UpdateStock(ctx, product.ID, pos.Quantity, pos.AvgCost); err != nil {
		return nil, err
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("product_id", product.ID).
		Str("type", mov.Type).
		Str("qty", mov.Quantity.String()).
		Str("current_qty", pos.Quantity.String()).
		Str("avg_cost", pos.AvgCost.String()).
		Msg("movimiento registrado")
	return mov, nil
}

// DeleteMovement elimina un movimiento revirtiendo su efecto de cantidad. El costo promedio
// no se reconstruye.
func (uc *RegisterMovementUseCase) DeleteMovement(ctx context.Context, id string) error {
	existing, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrMovementNotFound
	}
	return uc.withProductLock(ctx, existing.ProductID, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			productRepo repository.ProductRepository,
			_ repository.BarcodeRepository,
		) error {
			product, err := productRepo.GetForUpdate(ctx, existing.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductNotFound
			}
			mov, err := movRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if mov == nil {
				return domain.ErrMovementNotFound
			}
			pos := inventory.Reverse(inventory.PositionOf(product), mov)
			if err := productRepo.UpdateStock(ctx, product.ID, pos.Quantity, pos.AvgCost); err != nil {
				return err
			}
			if err := movRepo.Delete(ctx, id); err != nil {
				return err
			}
			uc.log.Info().
				Str("movement_id", id).
				Str("product_id", product.ID).
				Str("current_qty", pos.Quantity.String()).
				Msg("movimiento eliminado")
			return nil
		})
	})
}

// UpdateMovement reemplaza un movimiento: compensa el efecto anterior y aplica el nuevo.
func (uc *RegisterMovementUseCase) UpdateMovement(ctx context.Context, id string, input UpdateMovementInput) (*entity.StockMovement, error) {
	existing, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrMovementNotFound
	}

	var updated *entity.StockMovement
	err = uc.withProductLock(ctx, existing.ProductID, func() error {
		return uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			productRepo repository.ProductRepository,
			_ repository.BarcodeRepository,
		) error {
			product, err := productRepo.GetForUpdate(ctx, existing.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductNotFound
			}
			old, err := movRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if old == nil {
				return domain.ErrMovementNotFound
			}
			ts := old.Timestamp
			if input.Timestamp != nil {
				ts = *input.Timestamp
			}
			next, err := uc.buildMovement(MovementInputDTO{
				ProductID: old.ProductID,
				Type:      input.Type,
				Quantity:  input.Quantity,
				UnitCost:  input.UnitCost,
				Reason:    input.Reason,
				Note:      input.Note,
				Timestamp: ts,
			})
			if err != nil {
				return err
			}
			next.ID = old.ID

			pos, err := inventory.Replace(inventory.PositionOf(product), old, next)
			if err != nil {
				return err
			}
			if err := productRepo.UpdateStock(ctx, product.ID, pos.Quantity, pos.AvgCost); err != nil {
				return err
			}
			if err := movRepo.Update(ctx, next); err != nil {
				return err
			}
			updated = next
			uc.log.Info().
				Str("movement_id", id).
				Str("product_id", product.ID).
				Str("current_qty", pos.Quantity.String()).
				Str("avg_cost", pos.AvgCost.String()).
				Msg("movimiento actualizado")
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// History devuelve los movimientos del producto (más recientes primero) en el rango opcional [from, to].
func (uc *RegisterMovementUseCase) History(ctx context.Context, productID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return uc.movRepo.ListByProduct(ctx, productID, from, to)
}

// buildMovement valida la entrada y arma la entidad con motivo por defecto según el tipo.
func (uc *RegisterMovementUseCase) buildMovement(input MovementInputDTO) (*entity.StockMovement, error) {
	if input.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if !entity.IsValidMovementType(input.Type) {
		return nil, domain.NewValidationError("type", "debe ser IN u OUT")
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	if !inventory.FitsScale(input.Quantity, inventory.QtyScale) {
		return nil, domain.NewValidationError("quantity", "máximo 4 decimales")
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Reason:    strings.TrimSpace(input.Reason),
		Note:      strings.TrimSpace(input.Note),
		Timestamp: input.Timestamp,
	}
	if mov.Timestamp.IsZero() {
		mov.Timestamp = uc.now()
	}
	switch input.Type {
	case entity.MovementTypeIN:
		if input.UnitCost != nil {
			if input.UnitCost.LessThan(decimal.Zero) {
				return nil, domain.NewValidationError("unit_cost", "no puede ser negativo")
			}
			if !inventory.FitsScale(*input.UnitCost, inventory.QtyScale) {
				return nil, domain.NewValidationError("unit_cost", "máximo 4 decimales")
			}
			c := *input.UnitCost
			mov.UnitCost = &c
		}
		if mov.Reason == "" {
			mov.Reason = entity.DefaultReasonIN
		}
	case entity.MovementTypeOUT:
		if mov.Reason == "" {
			mov.Reason = entity.DefaultReasonOUT
		}
	}
	return mov, nil
}

// withProductLock ejecuta fn con el bloqueo del producto, reintentando ante ErrBusy con espera lineal.
func (uc *RegisterMovementUseCase) withProductLock(ctx context.Context, productID string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= uc.retry.MaxAttempts; attempt++ {
		err = uc.runLocked(ctx, productID, fn)
		if !errors.Is(err, domain.ErrBusy) || attempt == uc.retry.MaxAttempts {
			return err
		}
		uc.log.Warn().
			Str("product_id", productID).
			Int("attempt", attempt).
			Msg("producto ocupado, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uc.retry.Backoff * time.Duration(attempt)):
		}
	}
	return err
}

func (uc *RegisterMovementUseCase) runLocked(ctx context.Context, productID string, fn func() error) error {
	if uc.locker == nil {
		return fn()
	}
	release, err := uc.locker.Acquire(ctx, ProductLockKey(productID))
	if err != nil {
		return err
	}
	defer release()
	return fn()
}
