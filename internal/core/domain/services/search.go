package services

import (
	"strings"

	"deliverytracker/internal/core/domain/model/kernel"
)

// SearchKind tells which delivery field a free-text search targets.
type SearchKind int

const (
	SearchNone SearchKind = iota
	SearchTaxID
	SearchInvoiceNumber
	SearchClientName
)

func (k SearchKind) String() string {
	switch k {
	case SearchTaxID:
		return "tax_id"
	case SearchInvoiceNumber:
		return "invoice_number"
	case SearchClientName:
		return "client_name"
	default:
		return "none"
	}
}

// Search is a classified free-text search.
type Search struct {
	Kind  SearchKind
	Value string
}

// ClassifySearch decides how the search box of the delivery list is matched.
//
// Digits-only input has its leading zeros removed. Input of CPF or CNPJ length
// (11 or 14 digits, before or after removing the zeros) matches the tax id
// exactly, compared without leading zeros so a CNPJ starting with 0 is still
// found. Any other number matches the invoice number exactly, so "0042" finds
// invoice 42 and never 142.
// Everything else is a case-insensitive substring of the client name.
func ClassifySearch(input string) Search {
	input = strings.TrimSpace(input)
	if input == "" {
		return Search{Kind: SearchNone}
	}

	if kernel.OnlyDigits(input) == input {
		digits := kernel.TrimLeadingZeros(input)
		if isTaxIDLength(len(input)) || isTaxIDLength(len(digits)) {
			return Search{Kind: SearchTaxID, Value: digits}
		}
		return Search{Kind: SearchInvoiceNumber, Value: digits}
	}

	return Search{Kind: SearchClientName, Value: strings.ToLower(input)}
}

func isTaxIDLength(n int) bool {
	return n == kernel.CPFLength || n == kernel.CNPJLength
}
