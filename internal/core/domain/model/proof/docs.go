// Package proof models proofs of delivery captured on the courier side.
//
// A Submission is a typed, versioned entry of the local proof store. Entries
// carry their image as text so they survive restarts, and CheckIntegrity lets
// the submission pipeline detect damaged or legacy entries structurally.
package proof
