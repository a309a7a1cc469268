package profile

import (
	"errors"
	"math"
	"testing"
)

func TestValueEncodeDecodeRoundTrip(t *testing.T) {
	arr := NewArray([]Value{NewBool(true), NewBytes([]byte{1, 2, 3})})
	must := func(v Value, err error) Value {
		t.Helper()
		if err != nil {
			t.Fatalf("constructor error: %v", err)
		}
		return v
	}
	text := must(NewText("hi"))
	m, err := NewMap(
		MapEntry{Key: "items", Value: arr},
		MapEntry{Key: "name", Value: text},
	)
	if err != nil {
		t.Fatalf("NewMap() = %v", err)
	}

	vb, err := m.EncodeCanonical(DefaultLimits(256))
	if err != nil {
		t.Fatalf("EncodeCanonical() = %v", err)
	}

	decoded, err := DecodeValue(Root(vb))
	if err != nil {
		t.Fatalf("DecodeValue() = %v", err)
	}
	if decoded.Type() != MapType {
		t.Fatalf("Type() = %v, want MapType", decoded.Type())
	}

	reVB, err := decoded.EncodeCanonical(DefaultLimits(256))
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if string(reVB.Bytes()) != string(vb.Bytes()) {
		t.Fatalf("round-trip mismatch: got %x, want %x", reVB.Bytes(), vb.Bytes())
	}
}

func TestNewIntRejectsOutsideSafeRange(t *testing.T) {
	if _, err := NewInt(MaxSafeInteger + 1); !errors.Is(err, ErrIntegerOutsideSafeRange) {
		t.Fatalf("got %v, want ErrIntegerOutsideSafeRange", err)
	}
}

func TestNewMapAcceptsDistinctKeys(t *testing.T) {
	_, err := NewMap(
		MapEntry{Key: "a", Value: NewBool(true)},
		MapEntry{Key: "bb", Value: NewBool(false)},
	)
	if err != nil {
		t.Fatalf("NewMap() = %v, want nil", err)
	}
}

func TestNewMapRejectsDuplicateKeys(t *testing.T) {
	_, err := NewMap(
		MapEntry{Key: "a", Value: NewBool(true)},
		MapEntry{Key: "a", Value: NewBool(false)},
	)
	if !errors.Is(err, ErrDuplicateMapKey) {
		t.Fatalf("got %v, want ErrDuplicateMapKey", err)
	}
}

func TestNewTextRejectsInvalidUTF8(t *testing.T) {
	if _, err := NewText(string([]byte{0xff, 0xfe})); !errors.Is(err, ErrMalformedCanonical) {
		t.Fatalf("got %v, want ErrMalformedCanonical", err)
	}
}

func TestNewFloat64NormalizesNaNAndNegZero(t *testing.T) {
	v := NewFloat64(math.Float64frombits(negativeZeroBits))
	vb, err := v.EncodeCanonical(DefaultLimits(64))
	if err != nil {
		t.Fatalf("EncodeCanonical() = %v", err)
	}
	want := mustHex(t, "fb0000000000000000")
	if string(vb.Bytes()) != string(want) {
		t.Fatalf("got %x, want %x", vb.Bytes(), want)
	}

	nan := NewFloat64(math.Float64frombits(0x7FF0000000000001))
	vb, err = nan.EncodeCanonical(DefaultLimits(64))
	if err != nil {
		t.Fatalf("EncodeCanonical(NaN) = %v", err)
	}
	want = mustHex(t, "fb7ff8000000000000")
	if string(vb.Bytes()) != string(want) {
		t.Fatalf("got %x, want %x", vb.Bytes(), want)
	}
}
