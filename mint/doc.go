// Package mint implements the signing authority of the ecash system.
//
// A mint holds one private key per denomination (the keyset), blind-signs
// wallet outputs, verifies presented notes, and enforces single-use of
// note secrets through a spent-secret store. The mint never sees a note's
// secret before redemption and never learns the blinding factors used by
// wallets.
//
// The keyset is immutable after construction and all operations are safe
// for concurrent use; the spent store provides the only mutable state.
package mint
