package profile

// walkFrame tracks one open container on the walker's explicit stack.
type walkFrame struct {
	isMap          bool
	remainingPairs int  // array: elements left; map: (key,value) pairs left
	expectKey      bool // map only: true if the next item fills a key slot
	lastKey        []byte
}

// walkStack is the walker's work stack. Its fixed inline array covers
// depths up to defaultMaxDepth, so validating input that does not
// exceed the recommended depth baseline allocates nothing for the stack
// itself (per SPEC_FULL.md's no-alloc mode design note). Depths beyond
// this spill onto a heap slice.
type walkStack struct {
	inline [defaultMaxDepth]walkFrame
	spill  []walkFrame
	n      int
}

func (s *walkStack) len() int { return s.n }

func (s *walkStack) push(f walkFrame) {
	if s.n < len(s.inline) {
		s.inline[s.n] = f
		s.n++
		return
	}
	if s.spill == nil {
		s.spill = make([]walkFrame, 0, 16)
	}
	s.spill = append(s.spill, f)
	s.n++
}

func (s *walkStack) top() *walkFrame {
	if s.n <= len(s.inline) {
		return &s.inline[s.n-1]
	}
	return &s.spill[s.n-1-len(s.inline)]
}

func (s *walkStack) pop() {
	if s.n > len(s.inline) {
		s.spill = s.spill[:len(s.spill)-1]
	}
	s.n--
}

// compareEncodedKeys implements canonical key order (SPEC_FULL.md §3):
// primary by total encoded length, secondary by lexicographic byte
// comparison. a and b are each a complete encoded text item (header and
// UTF-8 body).
func compareEncodedKeys(a, b []byte) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func isNaNBits(bits uint64) bool {
	exp := (bits >> 52) & 0x7FF
	mant := bits & ((1 << 52) - 1)
	return exp == 0x7FF && mant != 0
}

// walkOne scans exactly one CBOR item starting at b[0]. offset is the
// absolute position of b[0] in the original input, used for error
// reporting. When checked is true, every Profile rule is enforced
// (canonical form, numeric ranges, map ordering/duplication, UTF-8,
// limits). When checked is false (trusted mode), only structural
// well-formedness is verified, plus the rules enforced outside the checked
// branches (shortest-form headers, text map keys, tags 2/3 wrapping a byte
// string, MaxDepth) — this is used to recompute value
// boundaries over bytes already proven canonical, e.g. by the query
// engine, in O(item size) without re-running the full rule set.
//
// It returns the index into b one past the end of the scanned item.
func walkOne(b []byte, offset int, limits Limits, checked bool) (int, error) {
	var stack walkStack
	pos := 0
	totalItems := 0

	for {
		if len(b) <= pos {
			return 0, errAt(UnexpectedEOF, offset+pos)
		}

		totalItems++
		if checked && limits.MaxTotalItems > 0 && totalItems > limits.MaxTotalItems {
			return 0, errAt(TotalItemsLimitExceeded, offset+pos)
		}

		itemStart := pos
		lead := b[pos]
		major := getMajorType(lead)

		// A map key slot accepts only text items.
		if stack.len() > 0 {
			top := stack.top()
			if top.isMap && top.expectKey && major != majorTypeText {
				return 0, errAt(MapKeyMustBeText, offset+itemStart)
			}
		}

		switch major {
		case majorTypeUint:
			_, arg, hlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			if checked && arg > uint64(MaxSafeInteger) {
				return 0, errAt(IntegerOutsideSafeRange, offset+itemStart)
			}
			pos += hlen

		case majorTypeNegInt:
			_, arg, hlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			// value = -(arg+1); Safe range requires arg+1 <= MaxSafeInteger.
			if checked && arg > uint64(MaxSafeInteger)-1 {
				return 0, errAt(IntegerOutsideSafeRange, offset+itemStart)
			}
			pos += hlen

		case majorTypeBytes:
			_, arg, hlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			if checked && limits.MaxBytesLen > 0 && arg > uint64(limits.MaxBytesLen) {
				return 0, errAt(BytesLenLimitExceeded, offset+itemStart)
			}
			bodyStart := pos + hlen
			end, err := boundedEnd(len(b), bodyStart, arg, offset)
			if err != nil {
				return 0, err
			}
			pos = end

		case majorTypeText:
			_, arg, hlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			if checked && limits.MaxTextLen > 0 && arg > uint64(limits.MaxTextLen) {
				return 0, errAt(TextLenLimitExceeded, offset+itemStart)
			}
			bodyStart := pos + hlen
			end, err := boundedEnd(len(b), bodyStart, arg, offset)
			if err != nil {
				return 0, err
			}
			if checked && !isUTF8Valid(b[bodyStart:end]) {
				return 0, errAt(MalformedCanonical, offset+bodyStart)
			}
			pos = end

		case majorTypeArray:
			_, arg, hlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			if checked && limits.MaxArrayLen > 0 && arg > uint64(limits.MaxArrayLen) {
				return 0, errAt(ArrayLenLimitExceeded, offset+itemStart)
			}
			pos += hlen
			if arg == 0 {
				done, err := completeSlot(&stack)
				if err != nil {
					return 0, err
				}
				if done {
					return pos, nil
				}
				continue
			}
			if err := pushFrame(&stack, limits, offset+pos, walkFrame{isMap: false, remainingPairs: int(arg)}); err != nil {
				return 0, err
			}
			continue

		case majorTypeMap:
			_, arg, hlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			if checked && limits.MaxMapLen > 0 && arg > uint64(limits.MaxMapLen) {
				return 0, errAt(MapLenLimitExceeded, offset+itemStart)
			}
			pos += hlen
			if arg == 0 {
				done, err := completeSlot(&stack)
				if err != nil {
					return 0, err
				}
				if done {
					return pos, nil
				}
				continue
			}
			if err := pushFrame(&stack, limits, offset+pos, walkFrame{isMap: true, remainingPairs: int(arg), expectKey: true}); err != nil {
				return 0, err
			}
			continue

		case majorTypeTag:
			_, arg, hlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			if arg != tagPosBignum && arg != tagNegBignum {
				return 0, errAt(ForbiddenOrMalformedTag, offset+itemStart)
			}
			pos += hlen
			if pos >= len(b) {
				return 0, errAt(UnexpectedEOF, offset+pos)
			}
			if getMajorType(b[pos]) != majorTypeBytes {
				return 0, errAt(ForbiddenOrMalformedTag, offset+pos)
			}
			_, barg, bhlen, err := decodeHeader(b[pos:], offset+pos)
			if err != nil {
				return 0, err
			}
			if checked && limits.MaxBytesLen > 0 && barg > uint64(limits.MaxBytesLen) {
				return 0, errAt(BytesLenLimitExceeded, offset+pos)
			}
			bodyStart := pos + bhlen
			end, err := boundedEnd(len(b), bodyStart, barg, offset)
			if err != nil {
				return 0, err
			}
			if checked {
				if verr := checkCanonicalMagnitude(b[bodyStart:end]); verr != nil {
					ve := verr.(ValidationError)
					return 0, errAt(ve.Code, offset+bodyStart)
				}
			}
			pos = end

		case majorTypeSimple:
			end, err := scanSimpleOrFloat(b, pos, offset, checked)
			if err != nil {
				return 0, err
			}
			pos = end

		default:
			return 0, errAt(MalformedCanonical, offset+itemStart)
		}

		// If we just completed a map key slot, run the ordering/duplicate
		// checks before folding the slot into the generic completion
		// bookkeeping (which only flips expectKey off for keys).
		if stack.len() > 0 {
			top := stack.top()
			if top.isMap && top.expectKey {
				cur := b[itemStart:pos]
				if top.lastKey != nil {
					switch compareEncodedKeys(cur, top.lastKey) {
					case 0:
						if checked {
							return 0, errAt(DuplicateMapKey, offset+itemStart)
						}
					case -1:
						if checked {
							return 0, errAt(NonCanonicalMapOrder, offset+itemStart)
						}
					}
				}
				top.lastKey = cur
			}
		}

		done, err := completeSlot(&stack)
		if err != nil {
			return 0, err
		}
		if done {
			return pos, nil
		}
	}
}

// boundedEnd computes bodyStart+n as an index into a buffer of length
// total, failing with UnexpectedEOF rather than overflowing or
// out-of-range-slicing on hostile (huge) length arguments.
func boundedEnd(total, bodyStart int, n uint64, baseOffset int) (int, error) {
	avail := total - bodyStart
	if avail < 0 || n > uint64(avail) {
		return 0, errAt(UnexpectedEOF, baseOffset+bodyStart)
	}
	return bodyStart + int(n), nil
}

func pushFrame(stack *walkStack, limits Limits, offset int, f walkFrame) error {
	if limits.MaxDepth > 0 && stack.len() >= limits.MaxDepth {
		return errAt(DepthLimitExceeded, offset)
	}
	stack.push(f)
	return nil
}

// completeSlot folds the just-finished item into its enclosing container,
// popping any containers that became fully satisfied, and cascading
// upward. It returns done=true once the walk has returned to the
// top-level item (an empty stack), meaning the whole single-item scan is
// finished.
func completeSlot(stack *walkStack) (bool, error) {
	for stack.len() > 0 {
		top := stack.top()
		if top.isMap {
			if top.expectKey {
				top.expectKey = false
				return false, nil
			}
			top.remainingPairs--
			top.expectKey = true
			if top.remainingPairs == 0 {
				stack.pop()
				continue
			}
			return false, nil
		}
		top.remainingPairs--
		if top.remainingPairs == 0 {
			stack.pop()
			continue
		}
		return false, nil
	}
	return true, nil
}

// scanSimpleOrFloat validates and measures a major-type-7 item: the
// Profile allows only false/true/null and float64, per SPEC_FULL.md §3.
func scanSimpleOrFloat(b []byte, pos, offset int, checked bool) (int, error) {
	lead := b[pos]
	add := getAddInfo(lead)
	switch add {
	case simpleFalse, simpleTrue, simpleNull:
		return pos + 1, nil
	case simpleFloat64:
		if len(b)-pos < 9 {
			return 0, errAt(UnexpectedEOF, offset+pos)
		}
		if checked {
			bits := be.Uint64(b[pos+1 : pos+9])
			if bits == negativeZeroBits {
				return 0, errAt(NegativeZeroForbidden, offset+pos)
			}
			if isNaNBits(bits) && bits != CanonicalNaNBits {
				return 0, errAt(NonCanonicalNaN, offset+pos)
			}
		}
		return pos + 9, nil
	case 28, 29, 30:
		return 0, errAt(ReservedAdditionalInfo, offset+pos)
	case addInfoIndefinite:
		return 0, errAt(IndefiniteLengthForbidden, offset+pos)
	default:
		// Unassigned simple values, float16, float32, and the one-byte
		// simple-value extension are not part of the Profile's data model.
		return 0, errAt(MalformedCanonical, offset+pos)
	}
}
