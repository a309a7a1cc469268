package profile

import "crypto/sha256"

// Hash is a SHA-256 digest of a ValidatedBytes. Because canonical form
// guarantees byte-identical encodings for semantically equal values, this
// digest is stable across producers and directly usable as a content
// address or signing input, without a separate canonicalization step.
type Hash [sha256.Size]byte

// HashCanonical returns the SHA-256 digest of vb's canonical bytes.
func HashCanonical(vb ValidatedBytes) Hash {
	return sha256.Sum256(vb.Bytes())
}

// Equal reports whether two ValidatedBytes values are canonically
// identical, i.e. their digests match. Comparing digests rather than raw
// bytes lets callers hold only the hash (e.g. in an index) without
// retaining the full payload.
func (h Hash) Equal(other Hash) bool { return h == other }
