package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement(ctx, MovementInputDTO).
func (uc *RegisterMovementUseCase) RecordMovementFromRequest(ctx context.Context, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	input := MovementInputDTO{
		ProductID: in.ProductID,
		Barcode:   in.Barcode,
		Type:      in.Type,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reason:    in.Reason,
		Note:      in.Note,
	}
	if in.Timestamp != nil {
		input.Timestamp = *in.Timestamp
	}
	mov, err := uc.RecordMovement(ctx, input)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// UpdateMovementFromRequest adapta el request HTTP a UpdateMovement.
func (uc *RegisterMovementUseCase) UpdateMovementFromRequest(ctx context.Context, id string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.UpdateMovement(ctx, id, UpdateMovementInput{
		Type:      in.Type,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reason:    in.Reason,
		Note:      in.Note,
		Timestamp: in.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ToMovementResponse convierte la entidad a su DTO de salida.
func ToMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		Reason:    m.Reason,
		Note:      m.Note,
		Timestamp: m.Timestamp,
	}
}
