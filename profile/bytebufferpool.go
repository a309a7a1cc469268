package profile

import "sync"

// ByteBuffer is a growable byte buffer under our control, pooled to avoid
// repeated allocation in the encoder and editor's hot paths.
//
// Guidelines:
//   - Use Ensure(n) to grow capacity up-front when the caller knows it
//     will append at least n more bytes, avoiding repeated reallocation.
//   - Truncate(n) is used by the encoder and editor to roll back partial
//     writes on error without discarding the underlying array.
type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 1024)} }}

// GetByteBuffer obtains a pooled ByteBuffer, reset to zero length.
func GetByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// PutByteBuffer returns the buffer to the pool after resetting it.
func PutByteBuffer(bb *ByteBuffer) { bb.Reset(); bbPool.Put(bb) }

// Bytes returns the underlying bytes.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// Len returns length.
func (bb *ByteBuffer) Len() int { return len(bb.b) }

// Reset resets the length to zero; capacity is unchanged.
func (bb *ByteBuffer) Reset() { bb.b = bb.b[:0] }

// Truncate shrinks the buffer back to length n, discarding any bytes
// beyond it without reallocating. Used to roll back a partially-written
// array, map, or patch entry on error.
func (bb *ByteBuffer) Truncate(n int) {
	if n < 0 || n > len(bb.b) {
		return
	}
	bb.b = bb.b[:n]
}

// Ensure ensures there is room for at least n more bytes without
// reallocation, growing the underlying slice if needed.
func (bb *ByteBuffer) Ensure(n int) {
	need := len(bb.b) + n
	if cap(bb.b) >= need {
		return
	}
	c := cap(bb.b)
	if c == 0 {
		c = 1024
	}
	for c < need {
		c <<= 1
	}
	nb := make([]byte, len(bb.b), c)
	copy(nb, bb.b)
	bb.b = nb
}

// AppendHeader appends the shortest-form CBOR header for (major, arg).
func (bb *ByteBuffer) AppendHeader(major uint8, arg uint64) {
	bb.b = encodeHeader(bb.b, major, arg)
}

// Append appends p to the buffer, growing as needed.
func (bb *ByteBuffer) Append(p []byte) {
	bb.Ensure(len(p))
	bb.b = append(bb.b, p...)
}

// AppendByte appends a single byte to the buffer, growing as needed.
func (bb *ByteBuffer) AppendByte(c byte) {
	bb.Ensure(1)
	bb.b = append(bb.b, c)
}

// WriteString appends a string to the buffer, satisfying io.StringWriter
// for use by the diagnostic-notation renderer.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.Ensure(len(s))
	bb.b = append(bb.b, s...)
	return len(s), nil
}

// Extend grows the buffer by n bytes and returns a slice over the newly
// appended region for direct writes (e.g. hex.Encode's destination).
func (bb *ByteBuffer) Extend(n int) []byte {
	old := len(bb.b)
	bb.Ensure(n)
	bb.b = bb.b[:old+n]
	return bb.b[old:]
}
