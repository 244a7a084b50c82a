package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrBusy el producto está bloqueado por otra operación; se puede reintentar.
	ErrBusy = errors.New("producto ocupado, reintente")
)

// Variantes específicas; envuelven al error genérico para que errors.Is funcione con ambos.
var (
	ErrProductNotFound  = fmt.Errorf("producto no encontrado: %w", ErrNotFound)
	ErrBarcodeNotFound  = fmt.Errorf("código de barras no encontrado: %w", ErrNotFound)
	ErrMovementNotFound = fmt.Errorf("movimiento no encontrado: %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("categoría no encontrada: %w", ErrNotFound)
	ErrSupplierNotFound = fmt.Errorf("proveedor no encontrado: %w", ErrNotFound)
	ErrInvalidQuantity  = fmt.Errorf("la cantidad debe ser mayor que cero: %w", ErrInvalidInput)
	ErrDuplicateSKU     = fmt.Errorf("el SKU ya existe: %w", ErrDuplicate)
	ErrDuplicateCode    = fmt.Errorf("el código de barras ya existe: %w", ErrDuplicate)
)

// ValidationError indica el campo que no cumple la regla.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un error de validación de campo.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// InsufficientStockError detalla el stock disponible frente a lo solicitado.
type InsufficientStockError struct {
	ProductID string
	Available string
	Requested string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s", e.ProductID, e.Available, e.Requested)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
