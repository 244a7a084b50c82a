package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// ReportHandler reportes de inventario (solo lectura).
type ReportHandler struct {
	uc *inventory.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// LowStock godoc
// @Summary      Productos bajo el stock mínimo
// @Description  current_qty <= min_qty, ordenados por nombre, con cantidad sugerida de pedido.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "total, items []dto.LowStockItemDTO"
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"items": list,
	})
}

// Valuation godoc
// @Summary      Valorización del inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationReport
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.uc.Valuation(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LedgerDrift godoc
// @Summary      Productos con stock descuadrado
// @Description  Lista vacía: el stock de cada producto coincide con la suma de sus movimientos.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LedgerDriftDTO
// @Router       /api/reports/ledger-drift [get]
func (h *ReportHandler) LedgerDrift(c *fiber.Ctx) error {
	out, err := h.uc.LedgerDrift(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
