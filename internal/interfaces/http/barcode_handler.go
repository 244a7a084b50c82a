package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// BarcodeHandler códigos de barras de productos y resolución de códigos escaneados.
type BarcodeHandler struct {
	uc *inventory.BarcodeUseCase
}

// NewBarcodeHandler construye el handler.
func NewBarcodeHandler(uc *inventory.BarcodeUseCase) *BarcodeHandler {
	return &BarcodeHandler{uc: uc}
}

// Resolve godoc
// @Summary      Resolver código escaneado
// @Tags         barcodes
// @Security     Bearer
// @Produce      json
// @Param        code  query  string  true  "Código leído"
// @Success      200   {object}  dto.ResolveBarcodeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/barcodes/resolve [get]
func (h *BarcodeHandler) Resolve(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return respondError(c, domain.NewValidationError("code", "requerido"))
	}
	product, packQty, err := h.uc.Resolve(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ResolveBarcodeResponse{Product: *usecase.ToProductResponse(product), PackQty: packQty})
}

// Add godoc
// @Summary      Agregar código de barras
// @Description  EAN13/UPC se validan y se guardan con 13 dígitos. is_primary desmarca el principal anterior.
// @Tags         barcodes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AddBarcodeRequest  true  "Código"
// @Success      201   {object}  dto.BarcodeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/barcodes [post]
func (h *BarcodeHandler) Add(c *fiber.Ctx) error {
	var in dto.AddBarcodeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	b, err := h.uc.Add(c.UserContext(), c.Params("id"), inventory.AddBarcodeInput{
		Code:      in.Code,
		Symbology: in.Symbology,
		PackQty:   in.PackQty,
		Label:     in.Label,
		IsPrimary: in.IsPrimary,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToBarcodeResponse(b))
}

// List godoc
// @Summary      Códigos de barras del producto
// @Tags         barcodes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.BarcodeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/barcodes [get]
func (h *BarcodeHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BarcodeResponse, 0, len(list))
	for _, b := range list {
		out = append(out, inventory.ToBarcodeResponse(b))
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar código de barras
// @Tags         barcodes
// @Security     Bearer
// @Param        id   path  string  true  "ID del código"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/barcodes/{id} [delete]
func (h *BarcodeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
