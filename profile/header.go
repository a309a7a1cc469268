package profile

import "encoding/binary"

var be = binary.BigEndian

// decodeHeader reads the initial byte and argument of the item at the
// front of b, enforcing shortest-form length encoding (NonCanonicalEncoding)
// and rejecting reserved additional-info values (ReservedAdditionalInfo)
// and indefinite length (IndefiniteLengthForbidden). offset is the
// absolute position of b[0] within the original input, used only for
// error reporting.
//
// It returns the major type, the decoded argument, the number of header
// bytes consumed, and any error. Callers advance past headerLen to reach
// the item's payload (or, for major types 0/1/6, the header alone is the
// whole item/tag-prefix).
func decodeHeader(b []byte, offset int) (major uint8, arg uint64, headerLen int, err error) {
	if len(b) < 1 {
		return 0, 0, 0, errAt(UnexpectedEOF, offset)
	}
	lead := b[0]
	major = getMajorType(lead)
	add := getAddInfo(lead)

	if add == addInfoIndefinite {
		return 0, 0, 0, errAt(IndefiniteLengthForbidden, offset)
	}
	if add >= 28 && add <= 30 {
		return 0, 0, 0, errAt(ReservedAdditionalInfo, offset)
	}

	switch {
	case add <= addInfoDirect:
		return major, uint64(add), 1, nil

	case add == addInfoUint8:
		if len(b) < 2 {
			return 0, 0, 0, errAt(UnexpectedEOF, offset)
		}
		v := uint64(b[1])
		if v <= addInfoDirect {
			return 0, 0, 0, errAt(NonCanonicalEncoding, offset)
		}
		return major, v, 2, nil

	case add == addInfoUint16:
		if len(b) < 3 {
			return 0, 0, 0, errAt(UnexpectedEOF, offset)
		}
		v := uint64(be.Uint16(b[1:]))
		if v <= 0xFF {
			return 0, 0, 0, errAt(NonCanonicalEncoding, offset)
		}
		return major, v, 3, nil

	case add == addInfoUint32:
		if len(b) < 5 {
			return 0, 0, 0, errAt(UnexpectedEOF, offset)
		}
		v := uint64(be.Uint32(b[1:]))
		if v <= 0xFFFF {
			return 0, 0, 0, errAt(NonCanonicalEncoding, offset)
		}
		return major, v, 5, nil

	case add == addInfoUint64:
		if len(b) < 9 {
			return 0, 0, 0, errAt(UnexpectedEOF, offset)
		}
		v := be.Uint64(b[1:])
		if v <= 0xFFFFFFFF {
			return 0, 0, 0, errAt(NonCanonicalEncoding, offset)
		}
		return major, v, 9, nil

	default:
		// add is 24..27 is handled above; nothing else reaches here
		// once indefinite/reserved have been excluded.
		return 0, 0, 0, errAt(MalformedCanonical, offset)
	}
}

// encodeHeader appends the shortest-form initial byte and argument for
// (major, arg) to b. The Profile never produces non-canonical headers, so
// unlike decodeHeader there is no "strict" toggle.
func encodeHeader(b []byte, major uint8, arg uint64) []byte {
	switch {
	case arg <= addInfoDirect:
		return append(b, makeByte(major, uint8(arg)))
	case arg <= 0xFF:
		return append(b, makeByte(major, addInfoUint8), uint8(arg))
	case arg <= 0xFFFF:
		var tmp [2]byte
		be.PutUint16(tmp[:], uint16(arg))
		return append(append(b, makeByte(major, addInfoUint16)), tmp[:]...)
	case arg <= 0xFFFFFFFF:
		var tmp [4]byte
		be.PutUint32(tmp[:], uint32(arg))
		return append(append(b, makeByte(major, addInfoUint32)), tmp[:]...)
	default:
		var tmp [8]byte
		be.PutUint64(tmp[:], arg)
		return append(append(b, makeByte(major, addInfoUint64)), tmp[:]...)
	}
}

// headerLenFor returns the number of bytes encodeHeader would emit for the
// given argument, without producing output.
func headerLenFor(arg uint64) int {
	switch {
	case arg <= addInfoDirect:
		return 1
	case arg <= 0xFF:
		return 2
	case arg <= 0xFFFF:
		return 3
	case arg <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// encodedTextKeyLen returns the total encoded length (header + body) of a
// text item whose UTF-8 body is keyByteLen bytes long, without encoding
// the key. The canonical key-order comparator (compareEncodedKeys) works on
// already-encoded keys and does not call it.
func encodedTextKeyLen(keyByteLen int) int {
	return headerLenFor(uint64(keyByteLen)) + keyByteLen
}
