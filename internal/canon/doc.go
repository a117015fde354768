// Package canon computes content-addressed identities for terms.
//
// Values are serialized as RFC 8785 canonical JSON (sorted keys by UTF-16 code
// units, no HTML escaping, NFC-normalized strings, no floats or nulls) and
// hashed with SHA-256 under a versioned domain prefix. The same term always
// yields the same id, independent of how shared subterms are laid out.
package canon
