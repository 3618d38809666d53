// Package wire owns the primitive integer encodings of the sync protocol.
//
// Ownership boundary:
// - short-form int32 primitives
// - sentinel-prefixed int64 primitives
// - varlong primitives
// - tagged echo values
package wire
