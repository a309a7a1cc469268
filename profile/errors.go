package profile

import "strconv"

// ErrorKind identifies the category of Profile violation or operational
// failure. It is the Code field of ValidationError.
type ErrorKind int

const (
	_ ErrorKind = iota

	// Resource limits.
	MessageLenLimitExceeded
	DepthLimitExceeded
	TotalItemsLimitExceeded
	ArrayLenLimitExceeded
	MapLenLimitExceeded
	BytesLenLimitExceeded
	TextLenLimitExceeded
	InvalidLimits

	// Canonical-form violations.
	NonCanonicalEncoding
	IndefiniteLengthForbidden
	ReservedAdditionalInfo
	TrailingBytes

	// Map rules.
	MapKeyMustBeText
	DuplicateMapKey
	NonCanonicalMapOrder

	// Numeric rules.
	IntegerOutsideSafeRange
	ForbiddenOrMalformedTag
	BignumNotCanonical
	BignumMustBeOutsideSafeRange
	NegativeZeroForbidden
	NonCanonicalNaN

	// Type mismatches (query/edit).
	ExpectedMap
	ExpectedArray
	ExpectedInteger
	ExpectedText
	ExpectedBytes
	ExpectedBool
	ExpectedFloat

	// Encoder arity mismatches: an Array or Map callback wrote a different
	// number of items or entries than the declared count.
	ArrayLenMismatch
	MapLenMismatch

	// Editor.
	PatchConflict
	IndexOutOfBounds
	InvalidQuery
	MissingKey

	// Infrastructure.
	UnexpectedEOF
	LengthOverflow
	AllocationFailed
	MalformedCanonical
)

var errorKindNames = map[ErrorKind]string{
	MessageLenLimitExceeded:      "message length limit exceeded",
	DepthLimitExceeded:           "depth limit exceeded",
	TotalItemsLimitExceeded:      "total item limit exceeded",
	ArrayLenLimitExceeded:        "array length limit exceeded",
	MapLenLimitExceeded:          "map length limit exceeded",
	BytesLenLimitExceeded:        "bytes length limit exceeded",
	TextLenLimitExceeded:         "text length limit exceeded",
	InvalidLimits:                "invalid limits",
	NonCanonicalEncoding:         "non-canonical encoding",
	IndefiniteLengthForbidden:    "indefinite-length item forbidden",
	ReservedAdditionalInfo:       "reserved additional info value",
	TrailingBytes:                "trailing bytes after item",
	MapKeyMustBeText:             "map key must be text",
	DuplicateMapKey:              "duplicate map key",
	NonCanonicalMapOrder:         "map keys not in canonical order",
	IntegerOutsideSafeRange:      "integer outside safe range",
	ForbiddenOrMalformedTag:      "forbidden or malformed tag",
	BignumNotCanonical:           "bignum magnitude not canonical",
	BignumMustBeOutsideSafeRange: "bignum magnitude must be outside safe range",
	NegativeZeroForbidden:        "negative zero forbidden",
	NonCanonicalNaN:              "non-canonical NaN bit pattern",
	ExpectedMap:                  "expected map",
	ExpectedArray:                "expected array",
	ExpectedInteger:              "expected integer",
	ExpectedText:                 "expected text",
	ExpectedBytes:                "expected bytes",
	ExpectedBool:                 "expected bool",
	ExpectedFloat:                "expected float",
	ArrayLenMismatch:             "array length mismatch",
	MapLenMismatch:               "map length mismatch",
	PatchConflict:                "patch conflict",
	IndexOutOfBounds:             "index out of bounds",
	InvalidQuery:                 "invalid query",
	MissingKey:                   "missing key",
	UnexpectedEOF:                "unexpected end of input",
	LengthOverflow:               "length overflow",
	AllocationFailed:             "allocation failed",
	MalformedCanonical:           "malformed canonical bytes",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "unknown error kind (" + strconv.Itoa(int(k)) + ")"
}

// ValidationError is the single error shape the package returns: a kind
// plus the input byte offset at which the violation was detected. Offset
// is 0 for errors that are not about a specific input position (query and
// edit errors).
type ValidationError struct {
	Code   ErrorKind
	Offset int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return "profile: " + e.Code.String() + " at offset " + strconv.Itoa(e.Offset)
}

// Is allows errors.Is(err, ErrDuplicateMapKey) and similar sentinel checks
// to match regardless of the offset carried by err, since the offset is
// occurrence-specific and the sentinel carries none.
func (e ValidationError) Is(target error) bool {
	t, ok := target.(ValidationError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// errAt constructs a ValidationError for the given kind and offset.
func errAt(code ErrorKind, offset int) ValidationError {
	return ValidationError{Code: code, Offset: offset}
}

// err0 constructs a ValidationError with no meaningful offset, for query
// and edit failures that are not positioned in an input buffer.
func err0(code ErrorKind) ValidationError {
	return ValidationError{Code: code, Offset: 0}
}

// Sentinel errors, one per kind, for errors.Is comparisons that do not
// need to construct their own ValidationError.
var (
	ErrMessageLenLimitExceeded      = err0(MessageLenLimitExceeded)
	ErrDepthLimitExceeded           = err0(DepthLimitExceeded)
	ErrTotalItemsLimitExceeded      = err0(TotalItemsLimitExceeded)
	ErrArrayLenLimitExceeded        = err0(ArrayLenLimitExceeded)
	ErrMapLenLimitExceeded          = err0(MapLenLimitExceeded)
	ErrBytesLenLimitExceeded        = err0(BytesLenLimitExceeded)
	ErrTextLenLimitExceeded         = err0(TextLenLimitExceeded)
	ErrInvalidLimits                = err0(InvalidLimits)
	ErrNonCanonicalEncoding         = err0(NonCanonicalEncoding)
	ErrIndefiniteLengthForbidden    = err0(IndefiniteLengthForbidden)
	ErrReservedAdditionalInfo       = err0(ReservedAdditionalInfo)
	ErrTrailingBytes                = err0(TrailingBytes)
	ErrMapKeyMustBeText             = err0(MapKeyMustBeText)
	ErrDuplicateMapKey              = err0(DuplicateMapKey)
	ErrNonCanonicalMapOrder         = err0(NonCanonicalMapOrder)
	ErrIntegerOutsideSafeRange      = err0(IntegerOutsideSafeRange)
	ErrForbiddenOrMalformedTag      = err0(ForbiddenOrMalformedTag)
	ErrBignumNotCanonical           = err0(BignumNotCanonical)
	ErrBignumMustBeOutsideSafeRange = err0(BignumMustBeOutsideSafeRange)
	ErrNegativeZeroForbidden        = err0(NegativeZeroForbidden)
	ErrNonCanonicalNaN              = err0(NonCanonicalNaN)
	ErrExpectedMap                  = err0(ExpectedMap)
	ErrExpectedArray                = err0(ExpectedArray)
	ErrExpectedInteger              = err0(ExpectedInteger)
	ErrExpectedText                 = err0(ExpectedText)
	ErrExpectedBytes                = err0(ExpectedBytes)
	ErrExpectedBool                 = err0(ExpectedBool)
	ErrExpectedFloat                = err0(ExpectedFloat)
	ErrArrayLenMismatch             = err0(ArrayLenMismatch)
	ErrMapLenMismatch               = err0(MapLenMismatch)
	ErrPatchConflict                = err0(PatchConflict)
	ErrIndexOutOfBounds             = err0(IndexOutOfBounds)
	ErrInvalidQuery                 = err0(InvalidQuery)
	ErrMissingKey                   = err0(MissingKey)
	ErrUnexpectedEOF                = err0(UnexpectedEOF)
	ErrLengthOverflow               = err0(LengthOverflow)
	ErrAllocationFailed             = err0(AllocationFailed)
	ErrMalformedCanonical           = err0(MalformedCanonical)
)
