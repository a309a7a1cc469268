package profile

import (
	"encoding/hex"
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestEncodeCanonicalScalars(t *testing.T) {
	vb, err := EncodeCanonical(DefaultLimits(64), func(e *Encoder) error {
		return e.Int(-1)
	})
	if err != nil {
		t.Fatalf("EncodeCanonical() = %v", err)
	}
	want := mustHex(t, "20")
	if hex.EncodeToString(vb.Bytes()) != hex.EncodeToString(want) {
		t.Fatalf("got %x, want %x", vb.Bytes(), want)
	}
}

func TestEncodeCanonicalNormalizesNegativeZero(t *testing.T) {
	vb, err := EncodeCanonical(DefaultLimits(64), func(e *Encoder) error {
		return e.Float64(math.Float64frombits(negativeZeroBits))
	})
	if err != nil {
		t.Fatalf("EncodeCanonical() = %v", err)
	}
	want := mustHex(t, "fb0000000000000000")
	if hex.EncodeToString(vb.Bytes()) != hex.EncodeToString(want) {
		t.Fatalf("got %x, want %x", vb.Bytes(), want)
	}
}

func TestEncodeArrayRollsBackOnArityMismatch(t *testing.T) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	e := newEncoder(bb, DefaultLimits(64))
	err := e.Array(2, func(c *Encoder) error {
		return c.Int(1)
	})
	if !errors.Is(err, ErrArrayLenMismatch) {
		t.Fatalf("got %v, want ErrArrayLenMismatch", err)
	}
	if bb.Len() != 0 {
		t.Fatalf("buffer not rolled back: len=%d", bb.Len())
	}
}

func TestEncodeArrayRollsBackOnInnerError(t *testing.T) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	e := newEncoder(bb, DefaultLimits(64))
	err := e.Array(2, func(c *Encoder) error {
		if err := c.Int(1); err != nil {
			return err
		}
		return c.Int(MaxSafeInteger + 1)
	})
	if !errors.Is(err, ErrIntegerOutsideSafeRange) {
		t.Fatalf("got %v, want ErrIntegerOutsideSafeRange", err)
	}
	if bb.Len() != 0 {
		t.Fatalf("buffer not rolled back: len=%d", bb.Len())
	}
}

func TestEncodeMapRejectsOutOfOrderKeys(t *testing.T) {
	_, err := EncodeCanonical(DefaultLimits(64), func(e *Encoder) error {
		return e.Map(2, func(me *MapEncoder) error {
			if err := me.Entry("b", func(c *Encoder) error { return c.Int(1) }); err != nil {
				return err
			}
			return me.Entry("a", func(c *Encoder) error { return c.Int(2) })
		})
	})
	if !errors.Is(err, ErrNonCanonicalMapOrder) {
		t.Fatalf("got %v, want ErrNonCanonicalMapOrder", err)
	}
}

func TestEncodeMapRejectsDuplicateKeys(t *testing.T) {
	_, err := EncodeCanonical(DefaultLimits(64), func(e *Encoder) error {
		return e.Map(2, func(me *MapEncoder) error {
			if err := me.Entry("a", func(c *Encoder) error { return c.Int(1) }); err != nil {
				return err
			}
			return me.Entry("a", func(c *Encoder) error { return c.Int(2) })
		})
	})
	if !errors.Is(err, ErrDuplicateMapKey) {
		t.Fatalf("got %v, want ErrDuplicateMapKey", err)
	}
}

func TestEncodeMapRoundTripsThroughValidate(t *testing.T) {
	vb, err := EncodeCanonical(DefaultLimits(64), func(e *Encoder) error {
		return e.Map(2, func(me *MapEncoder) error {
			if err := me.Entry("b", func(c *Encoder) error { return c.Int(2) }); err != nil {
				return err
			}
			return me.Entry("aa", func(c *Encoder) error { return c.Int(1) })
		})
	})
	if err != nil {
		t.Fatalf("EncodeCanonical() = %v", err)
	}
	if _, err := Validate(vb.Bytes(), DefaultLimits(64)); err != nil {
		t.Fatalf("round-tripped bytes failed Validate: %v", err)
	}
}

func TestEncodeBignum(t *testing.T) {
	z := new(big.Int)
	z.SetString("18446744073709551616", 10) // 2^64
	n, err := NewBignum(z)
	if err != nil {
		t.Fatalf("NewBignum() = %v", err)
	}
	vb, err := EncodeCanonical(DefaultLimits(64), func(e *Encoder) error {
		return e.Bignum(n)
	})
	if err != nil {
		t.Fatalf("EncodeCanonical() = %v", err)
	}
	if _, err := Validate(vb.Bytes(), DefaultLimits(64)); err != nil {
		t.Fatalf("round-tripped bytes failed Validate: %v", err)
	}
}
