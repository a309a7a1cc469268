package profile

import "math/big"

// Bignum is an integer outside the Safe integer range, encoded as tag 2
// (positive, Negative == false) or tag 3 (negative, Negative == true)
// wrapping a byte string. Magnitude holds exactly the wrapped byte
// string's content, unsigned-big-endian, with no leading zero byte — the
// same bytes the canonical walker validates directly, before any tag-3
// sign adjustment. The actual integer value is:
//
//	tag 2 (Negative == false): value = uint(Magnitude)
//	tag 3 (Negative == true):  value = -1 - uint(Magnitude)
//
// per RFC 8949 §3.4.3.
type Bignum struct {
	Negative  bool
	Magnitude []byte
}

// checkCanonicalMagnitude validates a bignum's wrapped byte string against
// the Profile's structural rules: non-empty, no leading zero byte, and a
// numeric value strictly greater than MaxSafeInteger.
func checkCanonicalMagnitude(mag []byte) error {
	if len(mag) == 0 || mag[0] == 0x00 {
		return err0(BignumNotCanonical)
	}
	if !exceedsSafeRange(mag) {
		return err0(BignumMustBeOutsideSafeRange)
	}
	return nil
}

// exceedsSafeRange reports whether mag, interpreted as an unsigned
// big-endian integer, is strictly greater than MaxSafeInteger (2^53 - 1).
func exceedsSafeRange(mag []byte) bool {
	const maxSafe = uint64(1<<53) - 1
	if len(mag) > 8 {
		return true
	}
	var v uint64
	for _, b := range mag {
		v = (v << 8) | uint64(b)
	}
	if len(mag) == 8 {
		// A full 8 bytes can exceed uint64 shifting range only if the
		// top byte is nonzero, which a canonical magnitude guarantees;
		// the shift above is exact for all 8-byte canonical values.
		return v > maxSafe
	}
	return v > maxSafe
}

// BigInt materializes the Bignum's value as a *big.Int.
func (n Bignum) BigInt() *big.Int {
	u := new(big.Int).SetBytes(n.Magnitude)
	if n.Negative {
		u.Add(u, big.NewInt(1))
		u.Neg(u)
	}
	return u
}

// tag returns the CBOR tag number (2 or 3) for this Bignum's sign.
func (n Bignum) tag() uint64 {
	if n.Negative {
		return tagNegBignum
	}
	return tagPosBignum
}

// NewBignum constructs a Bignum from a *big.Int. It fails with
// BignumMustBeOutsideSafeRange if z fits in the Safe integer range —
// such values must be encoded as Safe integers, not Bignums.
func NewBignum(z *big.Int) (Bignum, error) {
	var mag []byte
	negative := z.Sign() < 0
	if negative {
		u := new(big.Int).Neg(z)      // abs(z)
		u.Sub(u, big.NewInt(1))       // abs(z) - 1
		mag = u.Bytes()
	} else {
		mag = z.Bytes()
	}
	if err := checkCanonicalMagnitude(mag); err != nil {
		return Bignum{}, err
	}
	return Bignum{Negative: negative, Magnitude: mag}, nil
}
