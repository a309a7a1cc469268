package profile

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// Diag renders vb's single top-level item in RFC 8949 §8 diagnostic
// notation. Because the Profile forbids indefinite-length items and
// restricts tags to bignums, the renderer has no streaming-chunk or
// unknown-tag cases to handle: every item it sees is already a definite,
// fully validated value.
func Diag(vb ValidatedBytes) (string, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	if err := diagValue(bb, Root(vb)); err != nil {
		return "", err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return string(out), nil
}

func diagValue(buf *ByteBuffer, v ValueRef) error {
	switch v.Type() {
	case NilType:
		buf.WriteString("null")
		return nil

	case BoolType:
		b, err := v.Bool()
		if err != nil {
			return err
		}
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil

	case UintType:
		u, err := v.Uint()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatUint(u, 10))
		return nil

	case IntType:
		i, err := v.Int()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(i, 10))
		return nil

	case BignumType:
		n, err := v.Bignum()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatUint(n.tag(), 10))
		buf.WriteString("(h'")
		d := buf.Extend(hex.EncodedLen(len(n.Magnitude)))
		hex.Encode(d, n.Magnitude)
		buf.WriteString("')")
		return nil

	case FloatType:
		f, err := v.Float64()
		if err != nil {
			return err
		}
		buf.WriteString(formatFloat64Diag(f))
		return nil

	case TextType:
		s, err := v.Text()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.Quote(s))
		return nil

	case BytesType:
		raw, err := v.Bytes()
		if err != nil {
			return err
		}
		buf.WriteString("h'")
		d := buf.Extend(hex.EncodedLen(len(raw)))
		hex.Encode(d, raw)
		buf.WriteString("'")
		return nil

	case ArrayType:
		a, err := v.Array()
		if err != nil {
			return err
		}
		elems, err := a.All()
		if err != nil {
			return err
		}
		buf.AppendByte('[')
		for i, el := range elems {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := diagValue(buf, el); err != nil {
				return err
			}
		}
		buf.AppendByte(']')
		return nil

	case MapType:
		m, err := v.Map()
		if err != nil {
			return err
		}
		entries, err := m.All()
		if err != nil {
			return err
		}
		buf.AppendByte('{')
		for i, ent := range entries {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(strconv.Quote(ent.Key))
			buf.WriteString(": ")
			if err := diagValue(buf, ent.Value); err != nil {
				return err
			}
		}
		buf.AppendByte('}')
		return nil

	default:
		return err0(MalformedCanonical)
	}
}

// formatFloat64Diag renders f matching RFC 8949 diagnostic-notation
// examples: fixed-point for ordinary magnitudes, scientific notation
// beyond 1e15, and the bare tokens for the non-finite cases. Integral
// values keep a ".0" suffix (100.0, not 100) so they read as floats. The
// Profile forbids -0.0 and non-canonical NaN bit patterns at the wire
// level; the formatter does not rely on that and renders any NaN as
// "NaN" and -0.0 as "-0.0".
func formatFloat64Diag(f float64) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	af := math.Abs(f)
	if af == 0 || af < 1e15 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			return s + ".0"
		}
		return trimTrailingZerosDot(s)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func trimTrailingZerosDot(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
