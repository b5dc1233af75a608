package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Invoice is the fiscal document a delivery was created from. Its fields are
// refreshed whenever the same invoice number is ingested again, while the
// delivery's lifecycle fields stay untouched.
type Invoice struct {
	number      string
	clientName  string
	clientTaxID kernel.TaxID
	issueDate   time.Time
	totalValue  decimal.Decimal
	sender      string
}

// NewInvoice validates and normalizes invoice data. The number must be numeric and
// is stored without leading zeros, so "000123" and "123" are the same invoice.
func NewInvoice(
	number string,
	clientName string,
	clientTaxID kernel.TaxID,
	issueDate time.Time,
	totalValue decimal.Decimal,
	sender string,
) (Invoice, error) {
	inv := Invoice{
		clientTaxID: clientTaxID,
		sender:      strings.TrimSpace(sender),
	}

	if err := errors.Join(
		inv.setNumber(number),
		inv.setClientName(clientName),
		inv.setIssueDate(issueDate),
		inv.setTotalValue(totalValue),
	); err != nil {
		return Invoice{}, err
	}

	return inv, nil
}

func (i Invoice) Number() string {
	return i.number
}

func (i Invoice) ClientName() string {
	return i.clientName
}

func (i Invoice) ClientTaxID() kernel.TaxID {
	return i.clientTaxID
}

func (i Invoice) IssueDate() time.Time {
	return i.issueDate
}

func (i Invoice) TotalValue() decimal.Decimal {
	return i.totalValue
}

func (i Invoice) Sender() string {
	return i.sender
}

// Validate rejects the zero value.
func (i Invoice) Validate() error {
	if i.number == "" {
		return errs.NewValueIsRequiredError("invoice")
	}
	return nil
}

func (i *Invoice) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("invoice number")
	}
	if kernel.OnlyDigits(number) != number {
		return errs.NewValueIsInvalidErrorWithCause("invoice number", fmt.Errorf("%q is not numeric", number))
	}
	i.number = kernel.TrimLeadingZeros(number)
	return nil
}

func (i *Invoice) setClientName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("client name")
	}
	i.clientName = name
	return nil
}

func (i *Invoice) setIssueDate(date time.Time) error {
	if date.IsZero() {
		return errs.NewValueIsRequiredError("issue date")
	}
	y, m, d := date.Date()
	i.issueDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nil
}

func (i *Invoice) setTotalValue(total decimal.Decimal) error {
	if total.IsNegative() {
		return errs.NewValueIsOutOfRangeError("total value", total.String(), 0, "unbounded")
	}
	i.totalValue = total
	return nil
}
