// Package benchmarks compares the canonical CBOR Profile's encoder
// against tinylib/msgp's hand-written runtime append functions, encoding
// a representative framed-payload shape with each.
package benchmarks

import (
	"testing"

	"github.com/tinylib/msgp/msgp"

	"github.com/synadia-labs/canon-cbor/profile"
)

// frame mirrors a small, realistic framed network payload: an id, a
// sequence number, a byte-string body, and a handful of string tags.
type frame struct {
	id   string
	seq  uint64
	body []byte
	tags []string
}

func sampleFrame() frame {
	return frame{
		id:   "frame-0001",
		seq:  424242,
		body: make([]byte, 256),
		tags: []string{"region-us-east", "priority-high", "retry-0"},
	}
}

// BenchmarkCanonEncode_Frame exercises the canonical Profile encoder
// building the same shape a wire frame would use.
func BenchmarkCanonEncode_Frame(b *testing.B) {
	f := sampleFrame()
	limits := profile.DefaultLimits(1024)

	build := func(e *profile.Encoder) error {
		return e.Map(4, func(me *profile.MapEncoder) error {
			// Canonical key order: "id", "seq", then "body" and "tags"
			// (equal encoded length, so lexicographic).
			if err := me.Entry("id", func(c *profile.Encoder) error { return c.Text(f.id) }); err != nil {
				return err
			}
			if err := me.Entry("seq", func(c *profile.Encoder) error { return c.Uint(f.seq) }); err != nil {
				return err
			}
			if err := me.Entry("body", func(c *profile.Encoder) error { return c.Bytes(f.body) }); err != nil {
				return err
			}
			return me.Entry("tags", func(c *profile.Encoder) error {
				return c.Array(len(f.tags), func(ce *profile.Encoder) error {
					for _, tag := range f.tags {
						if err := ce.Text(tag); err != nil {
							return err
						}
					}
					return nil
				})
			})
		})
	}

	// Sanity check once before benchmarking.
	if _, err := profile.EncodeCanonical(limits, build); err != nil {
		b.Fatalf("EncodeCanonical (warmup): %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := profile.EncodeCanonical(limits, build); err != nil {
			b.Fatalf("EncodeCanonical: %v", err)
		}
	}
}

// BenchmarkMsgpEncode_Frame encodes the equivalent shape with msgp's
// runtime Append helpers directly (no generated code), as the closest
// apples-to-apples comparison available without a code-generation step.
func BenchmarkMsgpEncode_Frame(b *testing.B) {
	f := sampleFrame()

	encode := func(buf []byte) []byte {
		buf = msgp.AppendMapHeader(buf, 4)
		buf = msgp.AppendString(buf, "body")
		buf = msgp.AppendBytes(buf, f.body)
		buf = msgp.AppendString(buf, "id")
		buf = msgp.AppendString(buf, f.id)
		buf = msgp.AppendString(buf, "seq")
		buf = msgp.AppendUint64(buf, f.seq)
		buf = msgp.AppendString(buf, "tags")
		buf = msgp.AppendArrayHeader(buf, uint32(len(f.tags)))
		for _, tag := range f.tags {
			buf = msgp.AppendString(buf, tag)
		}
		return buf
	}

	b.ReportAllocs()
	b.ResetTimer()
	var out []byte
	for i := 0; i < b.N; i++ {
		out = encode(out[:0])
	}
	_ = out
}
