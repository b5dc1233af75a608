// Package errs provides standardized error types for the delivery tracker.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types grouped by concern:
//   - Validation: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError,
//     VersionIsInvalidError
//   - Lookup: ObjectNotFoundError
//   - Lifecycle: InvalidTransitionError, AlreadyTerminalError
//   - Access: UnauthenticatedError, UnauthorizedError
//   - Proof delivery: TransportFailureError (recoverable), CorruptError (dropped)
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is classifies it
package errs
