// Package kernel holds the value objects shared by every aggregate of the
// delivery tracker: UUID identifiers, client TaxIDs and the authenticated Actor
// with its Role.
//
// All of them are immutable. Zero values are invalid (except TaxID, where the
// zero value means the client has none) and fail Validate.
package kernel
