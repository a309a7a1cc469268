package profile

import "math"

// ValueRef is a zero-copy reference to one item inside a ValidatedBytes.
// It borrows its bytes from the ValidatedBytes it was obtained from and is
// valid only as long as that buffer is not reused; it never allocates to
// read scalars. MapRef lookups allocate (an offset index built on the first
// lookup into a non-empty map, plus the encoded search key), and the All
// methods allocate their result slices.
type ValueRef struct {
	b      []byte // the item's complete encoded bytes: header + body
	limits Limits
}

// Root returns a ValueRef over the single top-level item of vb.
func Root(vb ValidatedBytes) ValueRef {
	return ValueRef{b: vb.Bytes(), limits: vb.Limits()}
}

// Type reports the kind of value this reference points to.
func (v ValueRef) Type() Type {
	if len(v.b) == 0 {
		return InvalidType
	}
	major := getMajorType(v.b[0])
	switch major {
	case majorTypeUint:
		return UintType
	case majorTypeNegInt:
		return IntType
	case majorTypeBytes:
		return BytesType
	case majorTypeText:
		return TextType
	case majorTypeArray:
		return ArrayType
	case majorTypeMap:
		return MapType
	case majorTypeTag:
		return BignumType
	case majorTypeSimple:
		add := getAddInfo(v.b[0])
		switch add {
		case simpleFalse, simpleTrue:
			return BoolType
		case simpleNull:
			return NilType
		case simpleFloat64:
			return FloatType
		}
	}
	return InvalidType
}

// Raw returns the value's complete encoded bytes (header and body), e.g.
// for splicing unchanged into another message via Encoder.Raw.
func (v ValueRef) Raw() []byte { return v.b }

// Int returns the value as an int64. It fails with ExpectedInteger if the
// value is not a Safe integer (use Bignum for out-of-range values).
func (v ValueRef) Int() (int64, error) {
	major := getMajorType(v.b[0])
	_, arg, _, err := decodeHeader(v.b, 0)
	if err != nil {
		return 0, err
	}
	switch major {
	case majorTypeUint:
		if arg > uint64(MaxSafeInteger) {
			return 0, err0(ExpectedInteger)
		}
		return int64(arg), nil
	case majorTypeNegInt:
		return -1 - int64(arg), nil
	default:
		return 0, err0(ExpectedInteger)
	}
}

// Uint returns the value as a uint64. It fails with ExpectedInteger unless
// the value is a non-negative Safe integer.
func (v ValueRef) Uint() (uint64, error) {
	if getMajorType(v.b[0]) != majorTypeUint {
		return 0, err0(ExpectedInteger)
	}
	_, arg, _, err := decodeHeader(v.b, 0)
	if err != nil {
		return 0, err
	}
	return arg, nil
}

// Bignum returns the value as a Bignum. It fails with ExpectedInteger if
// the value is not a tagged bignum.
func (v ValueRef) Bignum() (Bignum, error) {
	if getMajorType(v.b[0]) != majorTypeTag {
		return Bignum{}, err0(ExpectedInteger)
	}
	_, tag, hlen, err := decodeHeader(v.b, 0)
	if err != nil {
		return Bignum{}, err
	}
	_, barg, bhlen, err := decodeHeader(v.b[hlen:], 0)
	if err != nil {
		return Bignum{}, err
	}
	bodyStart := hlen + bhlen
	mag := v.b[bodyStart : bodyStart+int(barg)]
	return Bignum{Negative: tag == tagNegBignum, Magnitude: mag}, nil
}

// Text returns the value as a string sharing memory with the underlying
// ValidatedBytes, with no copy. The returned string is valid only as long
// as the ValidatedBytes it came from is not reused.
func (v ValueRef) Text() (string, error) {
	if getMajorType(v.b[0]) != majorTypeText {
		return "", err0(ExpectedText)
	}
	_, arg, hlen, err := decodeHeader(v.b, 0)
	if err != nil {
		return "", err
	}
	return unsafeString(v.b[hlen : hlen+int(arg)]), nil
}

// Bytes returns the value's byte-string content with no copy.
func (v ValueRef) Bytes() ([]byte, error) {
	if getMajorType(v.b[0]) != majorTypeBytes {
		return nil, err0(ExpectedBytes)
	}
	_, arg, hlen, err := decodeHeader(v.b, 0)
	if err != nil {
		return nil, err
	}
	return v.b[hlen : hlen+int(arg)], nil
}

// Bool returns the value as a bool.
func (v ValueRef) Bool() (bool, error) {
	if getMajorType(v.b[0]) != majorTypeSimple {
		return false, err0(ExpectedBool)
	}
	switch getAddInfo(v.b[0]) {
	case simpleTrue:
		return true, nil
	case simpleFalse:
		return false, nil
	default:
		return false, err0(ExpectedBool)
	}
}

// IsNil reports whether the value is CBOR null.
func (v ValueRef) IsNil() bool {
	return getMajorType(v.b[0]) == majorTypeSimple && getAddInfo(v.b[0]) == simpleNull
}

// Float64 returns the value as a float64.
func (v ValueRef) Float64() (float64, error) {
	if getMajorType(v.b[0]) != majorTypeSimple || getAddInfo(v.b[0]) != simpleFloat64 {
		return 0, err0(ExpectedFloat)
	}
	bits := be.Uint64(v.b[1:9])
	return math.Float64frombits(bits), nil
}

// Array views the value as an ArrayRef. It fails with ExpectedArray if the
// value is not an array.
func (v ValueRef) Array() (ArrayRef, error) {
	if getMajorType(v.b[0]) != majorTypeArray {
		return ArrayRef{}, err0(ExpectedArray)
	}
	_, arg, hlen, err := decodeHeader(v.b, 0)
	if err != nil {
		return ArrayRef{}, err
	}
	return ArrayRef{b: v.b[hlen:], n: int(arg), limits: v.limits}, nil
}

// Map views the value as a MapRef. It fails with ExpectedMap if the value
// is not a map.
func (v ValueRef) Map() (MapRef, error) {
	if getMajorType(v.b[0]) != majorTypeMap {
		return MapRef{}, err0(ExpectedMap)
	}
	_, arg, hlen, err := decodeHeader(v.b, 0)
	if err != nil {
		return MapRef{}, err
	}
	return MapRef{b: v.b[hlen:], n: int(arg), limits: v.limits}, nil
}

// ArrayRef is a zero-copy, lazily-indexed view over an array's elements.
type ArrayRef struct {
	b      []byte // array body, elements back to back
	n      int
	limits Limits
}

// Len returns the number of elements.
func (a ArrayRef) Len() int { return a.n }

// At returns the element at index i (trusted-mode boundary scan; the
// elements are already known to be canonical since they came from a
// ValidatedBytes). It fails with IndexOutOfBounds if i is out of range.
func (a ArrayRef) At(i int) (ValueRef, error) {
	if i < 0 || i >= a.n {
		return ValueRef{}, err0(IndexOutOfBounds)
	}
	pos := 0
	for j := 0; j < i; j++ {
		end, err := walkOne(a.b[pos:], pos, a.limits, false)
		if err != nil {
			return ValueRef{}, err
		}
		pos += end
	}
	end, err := walkOne(a.b[pos:], pos, a.limits, false)
	if err != nil {
		return ValueRef{}, err
	}
	return ValueRef{b: a.b[pos : pos+end], limits: a.limits}, nil
}

// All returns every element in order. It allocates a slice of length n.
func (a ArrayRef) All() ([]ValueRef, error) {
	out := make([]ValueRef, 0, a.n)
	pos := 0
	for j := 0; j < a.n; j++ {
		end, err := walkOne(a.b[pos:], pos, a.limits, false)
		if err != nil {
			return nil, err
		}
		out = append(out, ValueRef{b: a.b[pos : pos+end], limits: a.limits})
		pos += end
	}
	return out, nil
}

// MapRef is a zero-copy view over a map's entries. Because the Profile
// enforces canonical (sorted, deduplicated) key order at validation time,
// lookups can use the same linear boundary walk that ArrayRef uses, or a
// binary search driven by compareEncodedKeys; Get does the latter against
// an on-demand offset index.
type MapRef struct {
	b       []byte // map body, (key, value) pairs back to back
	n       int
	limits  Limits
	offsets []int // lazily built: byte offset of each key's start, within b
}

// Len returns the number of entries.
func (m MapRef) Len() int { return m.n }

func (m *MapRef) buildIndex() error {
	if m.offsets != nil || m.n == 0 {
		return nil
	}
	offs := make([]int, m.n)
	pos := 0
	for i := 0; i < m.n; i++ {
		offs[i] = pos
		keyEnd, err := walkOne(m.b[pos:], pos, m.limits, false)
		if err != nil {
			return err
		}
		pos += keyEnd
		valEnd, err := walkOne(m.b[pos:], pos, m.limits, false)
		if err != nil {
			return err
		}
		pos += valEnd
	}
	m.offsets = offs
	return nil
}

func (m MapRef) keyBytesAt(off int) ([]byte, int, error) {
	end, err := walkOne(m.b[off:], off, m.limits, false)
	if err != nil {
		return nil, 0, err
	}
	return m.b[off : off+end], off + end, nil
}

// encodeKeyBytes produces the canonical encoded form of a text key, for
// use as a binary-search comparison key against the map's stored entries.
func encodeKeyBytes(key string) []byte {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	bb.AppendHeader(majorTypeText, uint64(len(key)))
	bb.WriteString(key)
	return append([]byte(nil), bb.Bytes()...)
}

// Get looks up key by canonical key order via binary search over the
// map's entries, returning (value, true, nil) on a hit, or (zero, false,
// nil) if key is absent. It returns an error only on a structural failure
// reading the underlying bytes (which should not happen for bytes that
// came from a ValidatedBytes).
func (m *MapRef) Get(key string) (ValueRef, bool, error) {
	if err := m.buildIndex(); err != nil {
		return ValueRef{}, false, err
	}
	needle := encodeKeyBytes(key)
	lo, hi := 0, m.n
	for lo < hi {
		mid := (lo + hi) / 2
		kb, keyEnd, err := m.keyBytesAt(m.offsets[mid])
		if err != nil {
			return ValueRef{}, false, err
		}
		switch compareEncodedKeys(kb, needle) {
		case 0:
			valEnd, err := walkOne(m.b[keyEnd:], keyEnd, m.limits, false)
			if err != nil {
				return ValueRef{}, false, err
			}
			return ValueRef{b: m.b[keyEnd : keyEnd+valEnd], limits: m.limits}, true, nil
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return ValueRef{}, false, nil
}

// Require is Get, failing with MissingKey instead of returning ok=false.
func (m *MapRef) Require(key string) (ValueRef, error) {
	v, ok, err := m.Get(key)
	if err != nil {
		return ValueRef{}, err
	}
	if !ok {
		return ValueRef{}, err0(MissingKey)
	}
	return v, nil
}

// GetManySorted looks up every key in keys, returning a slice the same
// length as keys, index-aligned with the caller's input order (not
// sorted): result[i] corresponds to keys[i], with ok[i] false for any key
// not present. Despite its name, the "Sorted" refers to exploiting the
// map's canonical sorted order internally, not to the order of the
// returned slice. Each key is looked up with its own binary search (as
// Get does); keys is not sorted and there is no single merge scan over
// the map. This pins Open Question 2 of the source specification.
func (m *MapRef) GetManySorted(keys []string) ([]ValueRef, []bool, error) {
	if err := m.buildIndex(); err != nil {
		return nil, nil, err
	}
	vals := make([]ValueRef, len(keys))
	ok := make([]bool, len(keys))
	for i, k := range keys {
		v, found, err := m.Get(k)
		if err != nil {
			return nil, nil, err
		}
		vals[i] = v
		ok[i] = found
	}
	return vals, ok, nil
}

// Entry is one (key, value) pair as returned by All.
type Entry struct {
	Key   string
	Value ValueRef
}

// All returns every entry in the map's canonical (sorted) order.
func (m *MapRef) All() ([]Entry, error) {
	out := make([]Entry, 0, m.n)
	pos := 0
	for i := 0; i < m.n; i++ {
		keyEnd, err := walkOne(m.b[pos:], pos, m.limits, false)
		if err != nil {
			return nil, err
		}
		_, karg, khlen, err := decodeHeader(m.b[pos:], pos)
		if err != nil {
			return nil, err
		}
		key := unsafeString(m.b[pos+khlen : pos+khlen+int(karg)])
		valStart := pos + keyEnd
		valEnd, err := walkOne(m.b[valStart:], valStart, m.limits, false)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: key, Value: ValueRef{b: m.b[valStart : valStart+valEnd], limits: m.limits}})
		pos = valStart + valEnd
	}
	return out, nil
}

// ExtrasSorted returns every entry whose key is not present in known,
// preserving canonical map order. known must be strictly ascending in
// canonical key order (the same order MapRef itself uses); ExtrasSorted
// fails with InvalidQuery otherwise, rather than silently re-sorting or
// deduplicating it.
func (m *MapRef) ExtrasSorted(known []string) ([]Entry, error) {
	knownSet := make(map[string]struct{}, len(known))
	var prevEnc []byte
	for i, k := range known {
		enc := encodeKeyBytes(k)
		if i > 0 && compareEncodedKeys(prevEnc, enc) >= 0 {
			return nil, err0(InvalidQuery)
		}
		prevEnc = enc
		knownSet[k] = struct{}{}
	}
	all, err := m.All()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if _, skip := knownSet[e.Key]; skip {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// PathElem addresses one step of a Path: either a map key or an array
// index. Exactly one of Key/Index applies, selected by IsKey.
type PathElem struct {
	Key   string
	Index int
	IsKey bool
}

// Path is a sequence of PathElem describing a location within a value
// tree, used by At and by the structural editor.
type Path []PathElem

// PK builds a map-key PathElem.
func PK(key string) PathElem { return PathElem{Key: key, IsKey: true} }

// PI builds an array-index PathElem.
func PI(index int) PathElem { return PathElem{Index: index} }

// At navigates from v through path, returning the value found at its end.
func At(v ValueRef, path Path) (ValueRef, error) {
	cur := v
	for _, elem := range path {
		if elem.IsKey {
			m, err := cur.Map()
			if err != nil {
				return ValueRef{}, err
			}
			val, err := m.Require(elem.Key)
			if err != nil {
				return ValueRef{}, err
			}
			cur = val
		} else {
			a, err := cur.Array()
			if err != nil {
				return ValueRef{}, err
			}
			val, err := a.At(elem.Index)
			if err != nil {
				return ValueRef{}, err
			}
			cur = val
		}
	}
	return cur, nil
}
