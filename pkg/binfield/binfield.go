// Package binfield is the typed-field-access helper spec.md §9 calls
// for in place of the original Python's lazy-attribute descriptor
// pattern: "reimplement as plain struct parsing with a small helper
// that reads (offset, width, endianness) — no dynamic attribute magic
// required." Every parser package in this module reads fixed-offset
// fields out of an already-in-memory byte slice with these functions
// instead of defining per-field descriptor types.
package binfield

import "encoding/binary"

// U32 reads a little-endian uint32 at offset.
func U32(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(b[offset : offset+4])
}

// U64 reads a little-endian uint64 at offset.
func U64(b []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(b[offset : offset+8])
}

// U16 reads a little-endian uint16 at offset.
func U16(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

// U8 reads a single byte at offset.
func U8(b []byte, offset int) uint8 {
	return b[offset]
}

// Bytes returns a copy of size bytes at offset.
func Bytes(b []byte, offset, size int) []byte {
	out := make([]byte, size)
	copy(out, b[offset:offset+size])
	return out
}

// IsAllZero reports whether every byte in b is zero. Used for the
// rights-ID "not-rights-ticketed" check (spec.md §3), FS-section-header
// zero-section detection (spec.md §4.4 step 6), NACP empty title slots,
// and IVFC salt absence (spec.md §3).
func IsAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// ZeroTerminated returns the substring of b up to (not including) the
// first NUL byte, or all of b if none is found. Used for PFS0/HFS0
// string-table name resolution (spec.md §3).
func ZeroTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// StripNUL removes every NUL byte from b and returns it as a string,
// matching the NACP title/publisher/version decode (spec.md §3, §4.9 —
// grounded on original_source/nxroms/nacp.py: strip()).
func StripNUL(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != 0 {
			out = append(out, c)
		}
	}
	return string(out)
}
