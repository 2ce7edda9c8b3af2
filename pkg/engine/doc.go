// Package engine implements the contract router at the heart of parkmock.
//
// An incoming request is matched against the loaded OpenAPI contract,
// checked against the configured Basic credentials when the matched
// operation is guarded, validated against the contract, and then dispatched
// to a registered operation handler. Operations without a bespoke handler
// fall through to a synthesized, contract-shaped example response.
//
// Dispatch is serialized: the whole match-validate-handle sequence for one
// request completes before the next begins, so handlers can perform
// read-modify-write sequences on the store without their own locking.
package engine
