package profile

import (
	"math"
	"sort"
)

// Value is an owned, in-memory representation of one canonical item. It is
// the building block for constructing a message programmatically and
// editing one: every constructor enforces the same invariants the walker
// checks on the wire (Safe integer range, bignum canonical form, UTF-8
// text, NaN/zero normalization, map key uniqueness), so a Value tree can
// always be encoded without a late validation failure.
//
// The zero Value has InvalidType and fails to encode with
// MalformedCanonical; CBOR null is Nil().
type Value struct {
	kind    Type
	i       int64
	u       uint64
	f       float64
	b       bool
	s       string
	bytes   []byte
	bignum  Bignum
	array   []Value
	entries []mapEntry // sorted by canonical key order, unique keys
}

type mapEntry struct {
	key      string
	encKey   []byte
	valueRef *Value
}

// MapEntry is one caller-supplied (key, value) pair passed to NewMap. Using
// a slice of pairs, rather than a Go map, lets NewMap actually observe and
// reject duplicate keys instead of relying on Go's own map semantics to
// rule them out before the constructor ever sees them.
type MapEntry struct {
	Key   string
	Value Value
}

// Nil returns the null Value.
func Nil() Value { return Value{kind: NilType} }

// NewBool returns a bool Value.
func NewBool(v bool) Value { return Value{kind: BoolType, b: v} }

// NewInt returns a signed-integer Value. It fails IntegerOutsideSafeRange
// if v falls outside the Safe integer range.
func NewInt(v int64) (Value, error) {
	if v > MaxSafeInteger || v < -MaxSafeInteger {
		return Value{}, err0(IntegerOutsideSafeRange)
	}
	if v >= 0 {
		return Value{kind: UintType, u: uint64(v)}, nil
	}
	return Value{kind: IntType, i: v}, nil
}

// NewUint returns an unsigned-integer Value. It fails
// IntegerOutsideSafeRange if v exceeds MaxSafeInteger.
func NewUint(v uint64) (Value, error) {
	if v > uint64(MaxSafeInteger) {
		return Value{}, err0(IntegerOutsideSafeRange)
	}
	return Value{kind: UintType, u: v}, nil
}

// NewBignumValue returns a Value wrapping n, which must already be in
// canonical form (as produced by the package-level NewBignum).
func NewBignumValue(n Bignum) (Value, error) {
	if err := checkCanonicalMagnitude(n.Magnitude); err != nil {
		return Value{}, err
	}
	return Value{kind: BignumType, bignum: n}, nil
}

// NewFloat64 returns a float Value, normalizing -0.0 to +0.0 and any NaN
// bit pattern to the canonical one, mirroring Encoder.Float64.
func NewFloat64(v float64) Value {
	bits := math.Float64bits(v)
	switch {
	case bits == negativeZeroBits:
		return Value{kind: FloatType, f: 0}
	case isNaNBits(bits):
		return Value{kind: FloatType, f: math.Float64frombits(CanonicalNaNBits)}
	default:
		return Value{kind: FloatType, f: v}
	}
}

// NewText returns a text Value. It fails MalformedCanonical if s is not
// valid UTF-8.
func NewText(s string) (Value, error) {
	if !isUTF8Valid(unsafeBytes(s)) {
		return Value{}, err0(MalformedCanonical)
	}
	return Value{kind: TextType, s: s}, nil
}

// NewBytes returns a byte-string Value. The slice is retained, not
// copied; callers must not mutate it afterward.
func NewBytes(b []byte) Value {
	return Value{kind: BytesType, bytes: b}
}

// NewArray returns an array Value over elems, retained in order.
func NewArray(elems []Value) Value {
	return Value{kind: ArrayType, array: elems}
}

// NewMap returns a map Value built from entries, which need not be
// presorted. It fails DuplicateMapKey if two entries share a key. Entries
// are stored internally in canonical key order.
func NewMap(entries ...MapEntry) (Value, error) {
	out := make([]mapEntry, 0, len(entries))
	for _, ent := range entries {
		vv := ent.Value
		out = append(out, mapEntry{key: ent.Key, encKey: encodeKeyBytes(ent.Key), valueRef: &vv})
	}
	sort.Slice(out, func(i, j int) bool {
		return compareEncodedKeys(out[i].encKey, out[j].encKey) < 0
	})
	for i := 1; i < len(out); i++ {
		if compareEncodedKeys(out[i].encKey, out[i-1].encKey) == 0 {
			return Value{}, err0(DuplicateMapKey)
		}
	}
	return Value{kind: MapType, entries: out}, nil
}

// Type reports the Value's kind.
func (v Value) Type() Type { return v.kind }

// EncodeCanonical renders v as canonical CBOR bytes wrapped in a
// ValidatedBytes, re-validating the output under limits.
func (v Value) EncodeCanonical(limits Limits) (ValidatedBytes, error) {
	return EncodeCanonical(limits, func(e *Encoder) error {
		return v.encodeInto(e)
	})
}

func (v Value) encodeInto(e *Encoder) error {
	switch v.kind {
	case NilType:
		return e.Nil()
	case BoolType:
		return e.Bool(v.b)
	case IntType:
		return e.Int(v.i)
	case UintType:
		return e.Uint(v.u)
	case BignumType:
		return e.Bignum(v.bignum)
	case FloatType:
		return e.Float64(v.f)
	case TextType:
		return e.Text(v.s)
	case BytesType:
		return e.Bytes(v.bytes)
	case ArrayType:
		elems := v.array
		return e.Array(len(elems), func(c *Encoder) error {
			for _, el := range elems {
				if err := el.encodeInto(c); err != nil {
					return err
				}
			}
			return nil
		})
	case MapType:
		entries := v.entries
		return e.Map(len(entries), func(me *MapEncoder) error {
			for _, ent := range entries {
				ve := ent.valueRef
				if err := me.Entry(ent.key, func(c *Encoder) error {
					return ve.encodeInto(c)
				}); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return err0(MalformedCanonical)
	}
}

// DecodeValue materializes a ValueRef (and, transitively, its subtree)
// into an owned Value. Text and byte-string leaves are copied, so the
// result outlives the original buffer.
func DecodeValue(v ValueRef) (Value, error) {
	switch v.Type() {
	case NilType:
		return Nil(), nil
	case BoolType:
		b, err := v.Bool()
		if err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case UintType:
		u, err := v.Uint()
		if err != nil {
			return Value{}, err
		}
		return NewUint(u)
	case IntType:
		i, err := v.Int()
		if err != nil {
			return Value{}, err
		}
		return NewInt(i)
	case BignumType:
		n, err := v.Bignum()
		if err != nil {
			return Value{}, err
		}
		mag := append([]byte(nil), n.Magnitude...)
		return NewBignumValue(Bignum{Negative: n.Negative, Magnitude: mag})
	case FloatType:
		f, err := v.Float64()
		if err != nil {
			return Value{}, err
		}
		return NewFloat64(f), nil
	default:
		return decodeValueRest(v)
	}
}

func decodeValueRest(v ValueRef) (Value, error) {
	switch v.Type() {
	case TextType:
		s, err := v.Text()
		if err != nil {
			return Value{}, err
		}
		return NewText(string(append([]byte(nil), s...)))
	case BytesType:
		raw, err := v.Bytes()
		if err != nil {
			return Value{}, err
		}
		return NewBytes(append([]byte(nil), raw...)), nil
	case ArrayType:
		a, err := v.Array()
		if err != nil {
			return Value{}, err
		}
		refs, err := a.All()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, len(refs))
		for i, r := range refs {
			ev, err := DecodeValue(r)
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return NewArray(elems), nil
	case MapType:
		m, err := v.Map()
		if err != nil {
			return Value{}, err
		}
		all, err := m.All()
		if err != nil {
			return Value{}, err
		}
		entries := make([]mapEntry, len(all))
		for i, ent := range all {
			ev, err := DecodeValue(ent.Value)
			if err != nil {
				return Value{}, err
			}
			vv := ev
			entries[i] = mapEntry{key: ent.Key, encKey: encodeKeyBytes(ent.Key), valueRef: &vv}
		}
		return Value{kind: MapType, entries: entries}, nil
	default:
		return Value{}, err0(MalformedCanonical)
	}
}
