package dto

import "time"

// AddBarcodeRequest body para POST /api/products/:id/barcodes.
type AddBarcodeRequest struct {
	Code      string `json:"code" validate:"required,max=128"`
	Symbology string `json:"symbology" validate:"omitempty,oneof=EAN13 EAN8 UPC CODE128 ITF14 QR"`
	PackQty   int    `json:"pack_qty" validate:"min=0"`
	Label     string `json:"label" validate:"max=120"`
	IsPrimary bool   `json:"is_primary"`
}

// BarcodeResponse salida de un código de barras.
type BarcodeResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Symbology string    `json:"symbology"`
	Code      string    `json:"code"`
	PackQty   int       `json:"pack_qty"`
	Label     string    `json:"label,omitempty"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}

// ResolveBarcodeResponse producto asociado a un código escaneado.
type ResolveBarcodeResponse struct {
	Product ProductResponse `json:"product"`
	PackQty int             `json:"pack_qty"`
}
