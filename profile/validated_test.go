package profile

import (
	"encoding/hex"
	"errors"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestValidateScalars(t *testing.T) {
	cases := []struct {
		name string
		hex  string
	}{
		{"uint small", "00"},
		{"uint boundary direct", "17"},
		{"uint8", "1818"},
		{"negint", "20"},
		{"bool false", "f4"},
		{"bool true", "f5"},
		{"null", "f6"},
		{"float64 zero", "fb0000000000000000"},
		{"text empty", "60"},
		{"text hello", "6568656c6c6f"},
		{"bytes empty", "40"},
		{"array empty", "80"},
		{"map empty", "a0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := mustHex(t, c.hex)
			if _, err := Validate(b, DefaultLimits(len(b))); err != nil {
				t.Fatalf("Validate(%s) = %v, want nil", c.hex, err)
			}
		})
	}
}

func TestValidateRejectsNonCanonicalLength(t *testing.T) {
	// uint 1 encoded the long way: 0x18 0x01 instead of 0x01.
	b := mustHex(t, "1801")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrNonCanonicalEncoding) {
		t.Fatalf("got %v, want ErrNonCanonicalEncoding", err)
	}
}

func TestValidateRejectsIndefiniteLength(t *testing.T) {
	// Indefinite-length array: 0x9f ... 0xff.
	b := mustHex(t, "9f01ff")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrIndefiniteLengthForbidden) {
		t.Fatalf("got %v, want ErrIndefiniteLengthForbidden", err)
	}
}

func TestValidateRejectsNonTextMapKey(t *testing.T) {
	// {0: 1}
	b := mustHex(t, "a10001")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrMapKeyMustBeText) {
		t.Fatalf("got %v, want ErrMapKeyMustBeText", err)
	}
}

func TestValidateRejectsDuplicateMapKey(t *testing.T) {
	// {"a": 1, "a": 2}
	b := mustHex(t, "a2616101616102")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrDuplicateMapKey) {
		t.Fatalf("got %v, want ErrDuplicateMapKey", err)
	}
}

func TestValidateRejectsNonCanonicalMapOrder(t *testing.T) {
	// {"b": 1, "a": 2}: same encoded length, lexicographically "a" < "b".
	b := mustHex(t, "a2616201616102")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrNonCanonicalMapOrder) {
		t.Fatalf("got %v, want ErrNonCanonicalMapOrder", err)
	}
}

func TestValidateAcceptsLengthBeforeLexOrder(t *testing.T) {
	// map(2){ "b":2, "aa":1 }: "b" (encoded length 2) sorts before "aa"
	// (encoded length 3), even though "aa" < "b" lexicographically.
	valid := mustHex(t, "a2"+"6162"+"02"+"626161"+"01")
	if _, err := Validate(valid, DefaultLimits(len(valid))); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsNegativeZero(t *testing.T) {
	b := mustHex(t, "fb8000000000000000")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrNegativeZeroForbidden) {
		t.Fatalf("got %v, want ErrNegativeZeroForbidden", err)
	}
}

func TestValidateRejectsNonCanonicalNaN(t *testing.T) {
	// A NaN bit pattern other than the canonical 0x7FF8000000000000.
	b := mustHex(t, "fb7ff0000000000001")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrNonCanonicalNaN) {
		t.Fatalf("got %v, want ErrNonCanonicalNaN", err)
	}
}

func TestValidateAcceptsCanonicalNaN(t *testing.T) {
	b := mustHex(t, "fb7ff8000000000000")
	if _, err := Validate(b, DefaultLimits(len(b))); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsTrailingBytes(t *testing.T) {
	b := mustHex(t, "0000")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("got %v, want ErrTrailingBytes", err)
	}
}

func TestValidateRejectsIntegerOutsideSafeRange(t *testing.T) {
	// uint64 max, far outside the Safe integer range.
	b := mustHex(t, "1bffffffffffffffff")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrIntegerOutsideSafeRange) {
		t.Fatalf("got %v, want ErrIntegerOutsideSafeRange", err)
	}
}

func TestValidateRejectsForbiddenTag(t *testing.T) {
	// tag(0) wrapping a text string: only tags 2/3 are allowed.
	b := mustHex(t, "c06568656c6c6f")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrForbiddenOrMalformedTag) {
		t.Fatalf("got %v, want ErrForbiddenOrMalformedTag", err)
	}
}

func TestValidateAcceptsBignumOutsideSafeRange(t *testing.T) {
	// tag(2) h'0100000000000000' = 2^56, well outside Safe range.
	b := mustHex(t, "c2480100000000000000")
	if _, err := Validate(b, DefaultLimits(len(b))); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsBignumWithinSafeRange(t *testing.T) {
	// tag(2) h'01' = 1, which fits in the Safe range and must be encoded
	// as a plain integer instead.
	b := mustHex(t, "c24101")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrBignumMustBeOutsideSafeRange) {
		t.Fatalf("got %v, want ErrBignumMustBeOutsideSafeRange", err)
	}
}

func TestValidateRejectsBignumLeadingZero(t *testing.T) {
	b := mustHex(t, "c249000100000000000000")
	_, err := Validate(b, DefaultLimits(len(b)))
	if !errors.Is(err, ErrBignumNotCanonical) {
		t.Fatalf("got %v, want ErrBignumNotCanonical", err)
	}
}

func TestValidateEnforcesDepthLimit(t *testing.T) {
	// array(1){ array(1){ array(1){ 0 } } }, nested 3 deep.
	b := mustHex(t, "81818100")
	_, err := Validate(b, Limits{MaxDepth: 2, MaxTotalItems: 100})
	if !errors.Is(err, ErrDepthLimitExceeded) {
		t.Fatalf("got %v, want ErrDepthLimitExceeded", err)
	}
}

func TestValidateTrustedSkipsCanonicalChecks(t *testing.T) {
	// A duplicate map key is a canonical-form violation, not a
	// well-formedness one; ValidateTrusted only recomputes boundaries, so
	// it accepts input Validate would reject.
	b := mustHex(t, "a2616101616102")
	if _, err := ValidateTrusted(b, DefaultLimits(len(b))); err != nil {
		t.Fatalf("ValidateTrusted() = %v, want nil", err)
	}
}
