// Package protocol defines the wire types exchanged between wallets and
// mints, the signed-envelope helper used for authenticated mint responses,
// and the mint configuration schema.
//
// Points cross the wire as lowercase hex of their 33-byte compressed SEC
// encoding; scalars as hex of their 32-byte big-endian form. Note secrets
// are raw bytes and serialize through encoding/json's base64.
package protocol
