// Package handshake owns protocol version and capability negotiation.
//
// Ownership boundary:
// - daemon greeting line parse/format
// - in-band binary version exchange
// - compat flag derivation
// - the immutable negotiated session record
package handshake
