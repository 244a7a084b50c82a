package entity

import "time"

// Simbologías soportadas.
const (
	SymbologyEAN13   = "EAN13"
	SymbologyEAN8    = "EAN8"
	SymbologyUPC     = "UPC"
	SymbologyCODE128 = "CODE128"
	SymbologyITF14   = "ITF14"
	SymbologyQR      = "QR"
)

// Barcode código escaneable asociado a un producto. Un código de empaque (PackQty > 1)
// equivale a PackQty unidades base al registrar movimientos.
type Barcode struct {
	ID        string
	ProductID string
	Symbology string
	Code      string // único global, se guarda tal cual (incluye ceros a la izquierda)
	PackQty   int
	Label     string
	IsPrimary bool
	CreatedAt time.Time
}

// IsValidSymbology indica si s es una simbología soportada.
func IsValidSymbology(s string) bool {
	switch s {
	case SymbologyEAN13, SymbologyEAN8, SymbologyUPC, SymbologyCODE128, SymbologyITF14, SymbologyQR:
		return true
	}
	return false
}

// EffectivePackQty devuelve PackQty, o 1 si no es positivo.
func (b *Barcode) EffectivePackQty() int {
	if b.PackQty <= 0 {
		return 1
	}
	return b.PackQty
}
