// Package services provides domain services of the delivery tracker that do not
// belong to a single aggregate.
//
// The package includes:
//   - ClassifySearch: decides whether a free-text delivery search targets a tax id,
//     an invoice number or a client name
package services
