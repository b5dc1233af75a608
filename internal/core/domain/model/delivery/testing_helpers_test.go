package delivery_test

import (
	"testing"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var issued = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func newTestInvoice(t *testing.T, number string) delivery.Invoice {
	t.Helper()
	taxID, err := kernel.NewTaxID("12.345.678/0001-90")
	require.NoError(t, err)
	inv, err := delivery.NewInvoice(number, "ACME Ltda", taxID, issued, decimal.RequireFromString("150.25"), "Distribuidora Sul")
	require.NoError(t, err)
	return inv
}

func newPendingDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(kernel.NewUUID(), newTestInvoice(t, "1001"))
	require.NoError(t, err)
	return d
}

func newAssignedDelivery(t *testing.T) (*delivery.Delivery, kernel.UUID) {
	t.Helper()
	d := newPendingDelivery(t)
	courierID := kernel.NewUUID()
	require.NoError(t, d.AssignCourier(&courierID, "Maria"))
	return d, courierID
}
