// Package courier provides the Courier aggregate: a directory user that deliveries
// can be assigned to.
//
// Users are managed by an external directory; this package only validates the
// data read from it and decides whether a user may receive deliveries.
package courier
