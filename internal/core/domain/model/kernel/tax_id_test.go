package kernel_test

import (
	"testing"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaxID(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{name: "empty means none", raw: "", expected: ""},
		{name: "blank means none", raw: "   ", expected: ""},
		{name: "punctuated cnpj", raw: "12.345.678/0001-90", expected: "12345678000190"},
		{name: "punctuated cpf", raw: "123.456.789-09", expected: "12345678909"},
		{name: "cnpj with leading zero", raw: "01234567000189", expected: "01234567000189"},
		{name: "wrong length", raw: "12345", wantErr: true},
		{name: "letters only", raw: "abc", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			taxID, err := kernel.NewTaxID(tc.raw)
			if tc.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, taxID.String())
			assert.Equal(t, tc.expected == "", taxID.IsEmpty())
		})
	}
}

func TestTrimLeadingZeros(t *testing.T) {
	assert.Equal(t, "123", kernel.TrimLeadingZeros("000123"))
	assert.Equal(t, "0", kernel.TrimLeadingZeros("000"))
	assert.Equal(t, "", kernel.TrimLeadingZeros(""))
	assert.Equal(t, "1020", kernel.TrimLeadingZeros("1020"))
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "0123", kernel.OnlyDigits(" 0-1.2/3x"))
	assert.Equal(t, "", kernel.OnlyDigits("abc"))
}
