package barcode

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidFormat el código no tiene 12 (UPC-A) ni 13 (EAN-13) dígitos.
var ErrInvalidFormat = errors.New("barcode: formato EAN-13/UPC-A inválido")

// ErrCheckDigitMismatch permite errors.Is sobre *CheckDigitError.
var ErrCheckDigitMismatch = errors.New("barcode: dígito de control incorrecto")

// CheckDigitError informa el dígito esperado y el recibido.
type CheckDigitError struct {
	Expected byte
	Got      byte
}

func (e *CheckDigitError) Error() string {
	return fmt.Sprintf("barcode: dígito de control inválido: esperado %c, recibido %c", e.Expected, e.Got)
}

// Is hace que errors.Is(err, ErrCheckDigitMismatch) funcione.
func (e *CheckDigitError) Is(target error) bool {
	return target == ErrCheckDigitMismatch
}

// Normalize deja solo dígitos y completa UPC-A (12) a EAN-13 con un 0 a la izquierda.
// "0 12345 67890 5" -> "0012345678905".
func Normalize(code string) (string, error) {
	digits := extractDigits(code)
	if len(digits) == 12 {
		digits = "0" + digits
	}
	if len(digits) != 13 {
		return "", fmt.Errorf("%w: se encontraron %d dígitos", ErrInvalidFormat, len(digits))
	}
	return digits, nil
}

// CheckDigit calcula el dígito de control EAN-13 para los 12 primeros dígitos.
// Posiciones impares (base 1) pesan 1, pares pesan 3.
func CheckDigit(first12 string) (byte, error) {
	if len(first12) != 12 {
		return 0, fmt.Errorf("%w: se requieren 12 dígitos, se recibieron %d", ErrInvalidFormat, len(first12))
	}
	var sum int
	for i := 0; i < 12; i++ {
		c := first12[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: carácter no numérico %q", ErrInvalidFormat, c)
		}
		d := int(c - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return byte('0' + (10-sum%10)%10), nil
}

// ValidateAndNormalize normaliza el código y verifica su dígito de control.
// Devuelve la forma canónica de 13 dígitos.
func ValidateAndNormalize(code string) (string, error) {
	ean, err := Normalize(code)
	if err != nil {
		return "", err
	}
	expected, err := CheckDigit(ean[:12])
	if err != nil {
		return "", err
	}
	if ean[12] != expected {
		return "", &CheckDigitError{Expected: expected, Got: ean[12]}
	}
	return ean, nil
}

// LookupKey devuelve la clave de búsqueda de un código escaneado: la forma EAN-13 si
// valida, o el texto recortado tal cual (CODE128, QR, etc.).
func LookupKey(raw string) string {
	if ean, err := ValidateAndNormalize(raw); err == nil {
		return ean
	}
	return strings.TrimSpace(raw)
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
