package kernel

import (
	"fmt"
	"strings"

	"deliverytracker/internal/pkg/errs"
)

// Lengths of the two Brazilian tax identifiers a client may carry.
const (
	CPFLength  = 11
	CNPJLength = 14
)

// TaxID is a client's CPF or CNPJ kept as bare digits. The zero value means
// "no tax id" and is valid; invoices from some senders omit it.
type TaxID struct {
	digits string
}

// NewTaxID accepts punctuated input ("12.345.678/0001-90") and keeps only digits.
// A non-empty result must have CPF or CNPJ length.
func NewTaxID(raw string) (TaxID, error) {
	digits := OnlyDigits(raw)
	if digits == "" {
		if strings.TrimSpace(raw) != "" {
			return TaxID{}, errs.NewValueIsInvalidErrorWithCause("taxID", fmt.Errorf("%q has no digits", raw))
		}
		return TaxID{}, nil
	}
	if len(digits) != CPFLength && len(digits) != CNPJLength {
		return TaxID{}, errs.NewValueIsInvalidErrorWithCause(
			"taxID",
			fmt.Errorf("%d digits is neither a CPF (%d) nor a CNPJ (%d)", len(digits), CPFLength, CNPJLength),
		)
	}
	return TaxID{digits: digits}, nil
}

func (t TaxID) String() string {
	return t.digits
}

func (t TaxID) IsEmpty() bool {
	return t.digits == ""
}

// OnlyDigits drops every rune that is not an ASCII digit.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TrimLeadingZeros keeps at least one digit, so "000" becomes "0".
func TrimLeadingZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" && digits != "" {
		return "0"
	}
	return trimmed
}
