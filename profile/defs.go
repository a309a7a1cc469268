// Package profile implements the canonical CBOR Profile: a strict,
// deterministic binary-object encoding over the CBOR data model (RFC 8949)
// intended for hot-path validation of framed network payloads where
// byte-level canonicalization is relied on for hashing, signing, and
// byte-equality-as-semantic-equality.
//
// The package is organized around four families of operations:
//   - Validate/ValidateTrusted: the canonical walker, the sole source of
//     truth for "is this input canonical under the Profile?"
//   - ValueRef/MapRef/ArrayRef: the zero-copy query engine over bytes the
//     walker has already proven canonical.
//   - Value: an owned tree representation, constructed only through
//     fallible constructors that enforce the Profile's invariants.
//   - Encoder/Patch/Apply: the streaming canonical encoder and the
//     structural editor built on top of it.
package profile

// CBOR major types (3 bits), per RFC 8949 §3.
const (
	majorTypeUint   = 0 // unsigned integer
	majorTypeNegInt = 1 // negative integer
	majorTypeBytes  = 2 // byte string
	majorTypeText   = 3 // text string (UTF-8)
	majorTypeArray  = 4 // array
	majorTypeMap    = 5 // map
	majorTypeTag    = 6 // semantic tag
	majorTypeSimple = 7 // float, simple values
)

// Additional info values (5 bits).
const (
	addInfoDirect     = 23 // max directly-encoded value
	addInfoUint8      = 24 // 1-byte argument follows
	addInfoUint16     = 25 // 2-byte argument follows
	addInfoUint32     = 26 // 4-byte argument follows
	addInfoUint64     = 27 // 8-byte argument follows
	addInfoIndefinite = 31 // indefinite length; forbidden under the Profile
)

// Simple values the Profile accepts under major type 7.
const (
	simpleFalse   = 20
	simpleTrue    = 21
	simpleNull    = 22
	simpleFloat64 = 27
)

// Tags the Profile accepts under major type 6: bignum magnitudes only.
const (
	tagPosBignum = 2 // positive bignum
	tagNegBignum = 3 // negative bignum
)

// CanonicalNaNBits is the single IEEE-754 binary64 bit pattern the Profile
// accepts for NaN. Every other NaN bit pattern is rejected with
// NonCanonicalNaN. This pins Open Question 1 of the source specification.
const CanonicalNaNBits uint64 = 0x7FF8000000000000

// negativeZeroBits is the float64 bit pattern for -0.0, which the Profile
// forbids (NegativeZeroForbidden): canonical encoding always uses +0.0.
const negativeZeroBits uint64 = 0x8000000000000000

// MaxSafeInteger is the largest (and, negated, the smallest) integer value
// representable by the Profile's Safe integer variant: 2^53 - 1.
const MaxSafeInteger int64 = (1 << 53) - 1

// makeByte builds a CBOR initial byte from a major type and additional info.
func makeByte(major, addInfo uint8) byte {
	return byte((major << 5) | addInfo)
}

// getMajorType extracts the major type from a CBOR initial byte.
func getMajorType(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional info from a CBOR initial byte.
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}

// Type identifies the kind of value a ValueRef refers to.
type Type byte

// Kinds the Profile's data model allows. Unlike the teacher's generic
// runtime, there is no Float32Type, DurationType, ExtensionType-as-tag,
// or TimeType: the Profile has no semantic tags beyond bignums, and no
// half/single precision floats.
const (
	InvalidType Type = iota
	TextType
	BytesType
	MapType
	ArrayType
	IntType    // safe signed integer (fits in int64)
	UintType   // safe unsigned integer (0 to MaxSafeInteger)
	BignumType // integer outside the safe range, tag 2/3
	FloatType  // float64
	BoolType
	NilType
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TextType:
		return "text"
	case BytesType:
		return "bytes"
	case MapType:
		return "map"
	case ArrayType:
		return "array"
	case IntType:
		return "int"
	case UintType:
		return "uint"
	case BignumType:
		return "bignum"
	case FloatType:
		return "float"
	case BoolType:
		return "bool"
	case NilType:
		return "nil"
	default:
		return "<invalid>"
	}
}
