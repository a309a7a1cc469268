package profile

import "unsafe"

// unsafeString returns a string that shares the same underlying memory as
// b, with no copy. It is used by the zero-copy query engine's Text()
// extractor, where the returned string's lifetime is documented to be
// bounded by the ValidatedBytes it was read from and the caller must not
// mutate the backing buffer.
func unsafeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}

// unsafeBytes returns a []byte sharing s's underlying memory, with no
// copy. It is used to run the byte-slice UTF-8 validator over a string
// the encoder's caller supplied, without allocating a copy just to
// validate it. Callers must not mutate the returned slice.
func unsafeBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
