package profile

import "math"

// Encoder builds one canonical CBOR item by appending to a shared
// ByteBuffer. It is never used directly for a whole message: callers get
// one by calling EncodeCanonical or by entering an Array/Map callback, and
// every method writes exactly one complete item.
//
// An Encoder scopes exactly one call site: each of Array and Map hands the
// callback a fresh child Encoder bound to the same buffer, so the parent's
// own "have I written my one item yet" bookkeeping never gets confused
// with the child's arity count.
type Encoder struct {
	bb      *ByteBuffer
	limits  Limits
	written int
}

// newEncoder wraps bb for top-level use under limits.
func newEncoder(bb *ByteBuffer, limits Limits) *Encoder {
	return &Encoder{bb: bb, limits: limits}
}

func (e *Encoder) child() *Encoder {
	return &Encoder{bb: e.bb, limits: e.limits}
}

func (e *Encoder) mark() { e.written++ }

// Nil writes a CBOR null.
func (e *Encoder) Nil() error {
	e.bb.AppendByte(makeByte(majorTypeSimple, simpleNull))
	e.mark()
	return nil
}

// Bool writes a CBOR boolean.
func (e *Encoder) Bool(v bool) error {
	if v {
		e.bb.AppendByte(makeByte(majorTypeSimple, simpleTrue))
	} else {
		e.bb.AppendByte(makeByte(majorTypeSimple, simpleFalse))
	}
	e.mark()
	return nil
}

// Int writes a Safe signed integer. Values outside [-MaxSafeInteger,
// +MaxSafeInteger] must go through Bignum instead.
func (e *Encoder) Int(v int64) error {
	if v > MaxSafeInteger || v < -MaxSafeInteger {
		return err0(IntegerOutsideSafeRange)
	}
	if v >= 0 {
		e.bb.AppendHeader(majorTypeUint, uint64(v))
	} else {
		e.bb.AppendHeader(majorTypeNegInt, uint64(-v-1))
	}
	e.mark()
	return nil
}

// Uint writes a Safe unsigned integer. v must not exceed MaxSafeInteger.
func (e *Encoder) Uint(v uint64) error {
	if v > uint64(MaxSafeInteger) {
		return err0(IntegerOutsideSafeRange)
	}
	e.bb.AppendHeader(majorTypeUint, v)
	e.mark()
	return nil
}

// Bignum writes an integer outside the Safe range as a tagged bignum. It
// re-validates the magnitude defensively even though NewBignum already
// enforces canonical form, since a Bignum value can be built by a caller
// bypassing that constructor.
func (e *Encoder) Bignum(n Bignum) error {
	if err := checkCanonicalMagnitude(n.Magnitude); err != nil {
		return err
	}
	e.bb.AppendHeader(majorTypeTag, n.tag())
	e.bb.AppendHeader(majorTypeBytes, uint64(len(n.Magnitude)))
	e.bb.Append(n.Magnitude)
	e.mark()
	return nil
}

// Float64 writes a float64, normalizing -0.0 to +0.0 and any NaN bit
// pattern to CanonicalNaNBits. Unlike the walker, which rejects
// non-canonical bit patterns found in existing bytes, the encoder always
// produces canonical output rather than failing on these two cases — it
// has a choice of bits to emit, where the walker does not.
func (e *Encoder) Float64(v float64) error {
	bits := math.Float64bits(v)
	switch {
	case bits == negativeZeroBits:
		bits = 0
	case isNaNBits(bits):
		bits = CanonicalNaNBits
	}
	e.bb.AppendByte(makeByte(majorTypeSimple, simpleFloat64))
	var tmp [8]byte
	be.PutUint64(tmp[:], bits)
	e.bb.Append(tmp[:])
	e.mark()
	return nil
}

// Text writes a UTF-8 text string.
func (e *Encoder) Text(s string) error {
	if e.limits.MaxTextLen > 0 && len(s) > e.limits.MaxTextLen {
		return err0(TextLenLimitExceeded)
	}
	if !isUTF8Valid(unsafeBytes(s)) {
		return err0(MalformedCanonical)
	}
	e.bb.AppendHeader(majorTypeText, uint64(len(s)))
	e.bb.WriteString(s)
	e.mark()
	return nil
}

// Bytes writes a byte string.
func (e *Encoder) Bytes(b []byte) error {
	if e.limits.MaxBytesLen > 0 && len(b) > e.limits.MaxBytesLen {
		return err0(BytesLenLimitExceeded)
	}
	e.bb.AppendHeader(majorTypeBytes, uint64(len(b)))
	e.bb.Append(b)
	e.mark()
	return nil
}

// Raw splices the bytes of an already-validated item in place, useful for
// copying a subtree unchanged rather than re-encoding it field by field.
func (e *Encoder) Raw(vb ValidatedBytes) error {
	e.bb.Append(vb.Bytes())
	e.mark()
	return nil
}

// Array writes an array of exactly n elements. f is called with a child
// Encoder and must write exactly n items through it, in order; if f
// returns an error, or writes a different number of items than n, the
// whole array (header and any partial body) is rolled back and the error
// is returned to the caller.
func (e *Encoder) Array(n int, f func(*Encoder) error) error {
	if e.limits.MaxArrayLen > 0 && n > e.limits.MaxArrayLen {
		return err0(ArrayLenLimitExceeded)
	}
	start := e.bb.Len()
	e.bb.AppendHeader(majorTypeArray, uint64(n))
	c := e.child()
	if err := f(c); err != nil {
		e.bb.Truncate(start)
		return err
	}
	if c.written != n {
		e.bb.Truncate(start)
		return err0(ArrayLenMismatch)
	}
	e.mark()
	return nil
}

// MapEncoder builds the entries of one canonical map, enforcing canonical
// key order and rejecting duplicate keys as entries are added.
type MapEncoder struct {
	e       *Encoder
	lastKey []byte
	hasLast bool
}

// Entry writes one (key, value) pair. key must be strictly greater, in
// canonical key order, than every previously written key in this map — the
// Profile's canonical order is a property of the whole message, not
// something the encoder can reorder for the caller, so callers must
// present keys already sorted. If f returns an error, only this entry's
// bytes are rolled back; earlier entries in the map remain.
func (m *MapEncoder) Entry(key string, f func(*Encoder) error) error {
	if m.e.limits.MaxTextLen > 0 && len(key) > m.e.limits.MaxTextLen {
		return err0(TextLenLimitExceeded)
	}
	if !isUTF8Valid(unsafeBytes(key)) {
		return err0(MalformedCanonical)
	}
	start := m.e.bb.Len()
	m.e.bb.AppendHeader(majorTypeText, uint64(len(key)))
	m.e.bb.WriteString(key)
	encodedKey := append([]byte(nil), m.e.bb.Bytes()[start:]...)

	if m.hasLast {
		switch compareEncodedKeys(encodedKey, m.lastKey) {
		case 0:
			m.e.bb.Truncate(start)
			return err0(DuplicateMapKey)
		case -1:
			m.e.bb.Truncate(start)
			return err0(NonCanonicalMapOrder)
		}
	}

	c := m.e.child()
	if err := f(c); err != nil {
		m.e.bb.Truncate(start)
		return err
	}
	if c.written != 1 {
		m.e.bb.Truncate(start)
		return err0(MapLenMismatch)
	}
	m.lastKey = encodedKey
	m.hasLast = true
	m.e.mark()
	return nil
}

// Map writes a map of exactly n entries. f is called with a MapEncoder and
// must call Entry exactly n times, with keys in strictly ascending
// canonical order. As with Array, any error rolls back the whole map.
func (e *Encoder) Map(n int, f func(*MapEncoder) error) error {
	if e.limits.MaxMapLen > 0 && n > e.limits.MaxMapLen {
		return err0(MapLenLimitExceeded)
	}
	start := e.bb.Len()
	e.bb.AppendHeader(majorTypeMap, uint64(n))
	c := e.child()
	me := &MapEncoder{e: c}
	if err := f(me); err != nil {
		e.bb.Truncate(start)
		return err
	}
	if c.written != n {
		e.bb.Truncate(start)
		return err0(MapLenMismatch)
	}
	e.mark()
	return nil
}

// EncodeCanonical runs build against a fresh top-level Encoder and, on
// success, re-validates the result with the checked walker before handing
// it back as a ValidatedBytes — the encoder's own output must satisfy
// every rule it is trusted to produce, not merely the rules it happened to
// enforce while writing.
func EncodeCanonical(limits Limits, build func(*Encoder) error) (ValidatedBytes, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)

	e := newEncoder(bb, limits)
	if err := build(e); err != nil {
		return ValidatedBytes{}, err
	}
	if e.written != 1 {
		return ValidatedBytes{}, err0(MalformedCanonical)
	}

	out := append([]byte(nil), bb.Bytes()...)
	return Validate(out, limits)
}
