package profile

// ValidatedBytes is a byte range proven to contain exactly one canonical
// item under the Profile, with no trailing bytes. It is the only way to
// obtain query or edit capability (§4.3/§4.6): construction always goes
// through Validate or ValidateTrusted, never a bare type conversion.
//
// ValidatedBytes borrows its buffer from the caller; it never copies and
// never mutates it. Copies of a ValidatedBytes value share the same
// backing array and are safe to pass around concurrently for reads, since
// nothing in this package ever writes through it.
type ValidatedBytes struct {
	buf    []byte
	limits Limits
}

// Bytes returns the validated byte range. Callers must not mutate it.
func (v ValidatedBytes) Bytes() []byte { return v.buf }

// Limits returns the Limits the bytes were validated under.
func (v ValidatedBytes) Limits() Limits { return v.limits }

// Own returns a ValidatedBytes backed by a fresh copy of the buffer, for
// callers that need the bytes to outlive the original slice.
func (v ValidatedBytes) Own() ValidatedBytes {
	cp := make([]byte, len(v.buf))
	copy(cp, v.buf)
	return ValidatedBytes{buf: cp, limits: v.limits}
}

// Validate scans input and enforces every Profile rule (structural,
// numeric, ordering, tag). On success it returns a ValidatedBytes wrapping
// the full input with no trailing bytes; on failure it returns a
// ValidationError carrying the offset of the first rule violated.
func Validate(input []byte, limits Limits) (ValidatedBytes, error) {
	if err := limits.Validate(); err != nil {
		return ValidatedBytes{}, err
	}
	if limits.MaxInputBytes > 0 && len(input) > limits.MaxInputBytes {
		return ValidatedBytes{}, err0(MessageLenLimitExceeded)
	}
	end, err := walkOne(input, 0, limits, true)
	if err != nil {
		return ValidatedBytes{}, err
	}
	if end != len(input) {
		return ValidatedBytes{}, errAt(TrailingBytes, end)
	}
	return ValidatedBytes{buf: input, limits: limits}, nil
}

// ValidateTrusted scans input without the numeric-range, float, UTF-8,
// size-limit, bignum-magnitude, or map-ordering/duplicate rules, for bytes
// already known to be canonical — e.g. bytes this package itself just
// produced. It still computes every value's boundary, so it remains O(n)
// rather than O(1). The header decoder's shortest-form check, the
// text-only map key rule, the tag 2/3 restriction, and MaxDepth still
// apply in this mode.
func ValidateTrusted(input []byte, limits Limits) (ValidatedBytes, error) {
	end, err := walkOne(input, 0, limits, false)
	if err != nil {
		return ValidatedBytes{}, err
	}
	if end != len(input) {
		return ValidatedBytes{}, errAt(TrailingBytes, end)
	}
	return ValidatedBytes{buf: input, limits: limits}, nil
}
