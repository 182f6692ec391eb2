// Package metacache memoizes decrypted metadata keyed by the exact
// ciphertext blob the server returned.
//
// A blob always decrypts to the same plaintext, so entries are inserted once
// and never updated or evicted. Put on an existing blob is a no-op.
package metacache
