// Package hash provides helpers for hashing and verifying secrets.
//
// Typical usage is for verification codes: store only the keyed hash, then
// verify user input by comparing the plaintext against the stored hash in
// constant time. Implementations live in this package behind a small
// interface.
package hash
