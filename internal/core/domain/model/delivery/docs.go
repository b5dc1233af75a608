// Package delivery provides the Delivery aggregate and its lifecycle state machine.
//
// The package includes:
//   - Delivery: the aggregate root tying an invoice to a courier and a proof of delivery
//   - Invoice: the fiscal data a delivery is created from
//   - Status: Pending, Delivered and Cancelled with their legal transitions
//
// Key business rules:
//   - deliveries start Pending without a courier
//   - assignment leaves a delivery Pending, re-opens a Cancelled one and is refused once Delivered
//   - completion needs an assigned courier and records the delivery time
//   - only an administrative proof revert leaves Delivered
package delivery
