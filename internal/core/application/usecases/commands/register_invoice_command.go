package commands

import (
	"errors"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrRegisterInvoiceCommandIsNotConstructed = errors.New(
	"RegisterInvoiceCommand must be created via NewRegisterInvoiceCommand constructor",
)

// RegisterInvoiceCommand ingests the fiscal data of one invoice. The invoice
// itself is parsed elsewhere; this command only sees its fields.
//
// Example:
//
//	cmd, err := NewRegisterInvoiceCommand(actor, "000123", "ACME", "12345678901", issued, total, "")
type RegisterInvoiceCommand struct {
	actor   kernel.Actor
	invoice delivery.Invoice
	guard   guard.ConstructorGuard
}

func NewRegisterInvoiceCommand(
	actor kernel.Actor,
	number string,
	clientName string,
	clientTaxID string,
	issueDate time.Time,
	totalValue decimal.Decimal,
	sender string,
) (RegisterInvoiceCommand, error) {
	taxID, err := kernel.NewTaxID(clientTaxID)
	if err != nil {
		return RegisterInvoiceCommand{}, err
	}

	invoice, err := delivery.NewInvoice(number, clientName, taxID, issueDate, totalValue, sender)
	if err != nil {
		return RegisterInvoiceCommand{}, err
	}

	return RegisterInvoiceCommand{
		actor:   actor,
		invoice: invoice,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrRegisterInvoiceCommandIsNotConstructed)
}

func (c RegisterInvoiceCommand) Actor() kernel.Actor {
	return c.actor
}

func (c RegisterInvoiceCommand) Invoice() delivery.Invoice {
	return c.invoice
}
