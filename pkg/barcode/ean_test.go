package barcode_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/barcode"
)

func TestCheckDigit_CodigoConocido(t *testing.T) {
	d, err := barcode.CheckDigit("789123456789")
	require.NoError(t, err)
	assert.Equal(t, byte('5'), d)

	d, err = barcode.CheckDigit("400638133393")
	require.NoError(t, err)
	assert.Equal(t, byte('1'), d)
}

func TestCheckDigit_LongitudInvalida(t *testing.T) {
	_, err := barcode.CheckDigit("12345")
	assert.ErrorIs(t, err, barcode.ErrInvalidFormat)
}

func TestNormalize_UPCARellenaConCero(t *testing.T) {
	ean, err := barcode.Normalize("012345678905")
	require.NoError(t, err)
	assert.Equal(t, "0012345678905", ean)
}

func TestNormalize_IgnoraSeparadores(t *testing.T) {
	ean, err := barcode.Normalize(" 789-1234-56789 5 ")
	require.NoError(t, err)
	assert.Equal(t, "7891234567895", ean)
}

func TestNormalize_LongitudIncorrecta(t *testing.T) {
	for _, in := range []string{"", "1234567", "12345678901234", "abc"} {
		_, err := barcode.Normalize(in)
		assert.ErrorIs(t, err, barcode.ErrInvalidFormat, "entrada %q", in)
	}
}

func TestValidateAndNormalize_Valido(t *testing.T) {
	ean, err := barcode.ValidateAndNormalize("7891234567895")
	require.NoError(t, err)
	assert.Equal(t, "7891234567895", ean)

	// UPC-A válido: pasa tras el relleno y el dígito sigue siendo correcto.
	ean, err = barcode.ValidateAndNormalize("012345678905")
	require.NoError(t, err)
	assert.Equal(t, "0012345678905", ean)
}

func TestValidateAndNormalize_DigitoIncorrecto(t *testing.T) {
	_, err := barcode.ValidateAndNormalize("7891234567894")
	require.Error(t, err)
	assert.True(t, errors.Is(err, barcode.ErrCheckDigitMismatch))

	var cdErr *barcode.CheckDigitError
	require.True(t, errors.As(err, &cdErr))
	assert.Equal(t, byte('5'), cdErr.Expected)
	assert.Equal(t, byte('4'), cdErr.Got)
}

// Cualquier código de 12 dígitos completado con su dígito calculado debe validar,
// y alterar ese dígito debe fallar.
func TestValidateAndNormalize_RoundTrip(t *testing.T) {
	bases := []string{"000000000000", "123456789012", "999999999999", "590123412345"}
	for _, base := range bases {
		d, err := barcode.CheckDigit(base)
		require.NoError(t, err)
		code := base + string(d)

		got, err := barcode.ValidateAndNormalize(code)
		require.NoError(t, err, code)
		assert.Equal(t, code, got)

		wrong := byte('0' + (int(d-'0')+1)%10)
		_, err = barcode.ValidateAndNormalize(base + string(wrong))
		assert.ErrorIs(t, err, barcode.ErrCheckDigitMismatch, base)
	}
}

func TestLookupKey(t *testing.T) {
	assert.Equal(t, "0012345678905", barcode.LookupKey("012345678905"))
	assert.Equal(t, "ABC-123", barcode.LookupKey("  ABC-123 "))
	// EAN con dígito incorrecto se busca verbatim.
	assert.Equal(t, "7891234567894", barcode.LookupKey("7891234567894"))
}
