package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportUseCase reportes de inventario: stock bajo con sugerencia de reposición,
// valorización y verificación del libro de movimientos.
type ReportUseCase struct {
	reportRepo repository.ReportRepository
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(reportRepo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo}
}

// LowStock devuelve los productos con stock en o bajo su mínimo (ordenados por nombre) con la
// cantidad sugerida de pedido. Priority ordena por déficit relativo (1 = más urgente).
func (uc *ReportUseCase) LowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	rawItems, err := uc.reportRepo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.LowStockItemDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	items := make([]dto.LowStockItemDTO, 0, len(rawItems))
	for _, item := range rawItems {
		ideal := item.MinQty.Mul(factor)
		suggested := ideal.Sub(item.CurrentQty)
		if suggested.LessThanOrEqual(decimal.Zero) {
			suggested = decimal.Zero
		}
		items = append(items, dto.LowStockItemDTO{
			ProductID:          item.ProductID,
			SKU:                item.SKU,
			Name:               item.Name,
			CurrentQty:         item.CurrentQty,
			MinQty:             item.MinQty,
			IdealQty:           ideal,
			SuggestedOrderQty:  suggested,
			AvgCost:            item.AvgCost,
			EstimatedOrderCost: suggested.Mul(item.AvgCost),
		})
	}

	// Prioridad: mayor déficit relativo al mínimo; sin mínimo cuenta como déficit absoluto.
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return deficitRatio(items[order[i]]).GreaterThan(deficitRatio(items[order[j]]))
	})
	for rank, idx := range order {
		items[idx].Priority = rank + 1
	}
	return items, nil
}

func deficitRatio(item dto.LowStockItemDTO) decimal.Decimal {
	deficit := item.MinQty.Sub(item.CurrentQty)
	if item.MinQty.LessThanOrEqual(decimal.Zero) {
		return deficit
	}
	return deficit.Div(item.MinQty)
}

// Valuation valoriza el inventario a precio de venta y a costo promedio.
func (uc *ReportUseCase) Valuation(ctx context.Context) (*dto.ValuationReport, error) {
	rows, err := uc.reportRepo.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	report := &dto.ValuationReport{Items: make([]dto.ValuationItemDTO, 0, len(rows))}
	for _, r := range rows {
		report.Items = append(report.Items, dto.ValuationItemDTO{
			ProductID:  r.ProductID,
			SKU:        r.SKU,
			Name:       r.Name,
			CurrentQty: r.CurrentQty,
			Price:      r.Price,
			AvgCost:    r.AvgCost,
			SaleValue:  r.SaleValue,
			CostValue:  r.CostValue,
		})
		report.TotalSaleValue = report.TotalSaleValue.Add(r.SaleValue)
		report.TotalCostValue = report.TotalCostValue.Add(r.CostValue)
	}
	return report, nil
}

// LedgerDrift lista los productos cuyo stock almacenado difiere de la suma de sus movimientos.
// Lista vacía significa libro consistente.
func (uc *ReportUseCase) LedgerDrift(ctx context.Context) ([]dto.LedgerDriftDTO, error) {
	rows, err := uc.reportRepo.LedgerDrift(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerDriftDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LedgerDriftDTO{
			ProductID:  r.ProductID,
			SKU:        r.SKU,
			CurrentQty: r.CurrentQty,
			LedgerQty:  r.LedgerQty,
			Difference: r.CurrentQty.Sub(r.LedgerQty),
		})
	}
	return out, nil
}
