package ebml

import "errors"

var (
	// ErrInvalidVint signals a VINT whose length marker is malformed.
	ErrInvalidVint = errors.New("ebml: invalid vint")
	// ErrVintOverflow signals a value that does not fit the requested
	// (or any) VINT width.
	ErrVintOverflow = errors.New("ebml: vint overflow")
)

// vintMax[n] is the largest value representable by a VINT of length n
// (2^(7n) - 2, reserving the all-ones pattern for "unknown size").
var vintMax = [9]uint64{
	0,
	(1 << 7) - 2,
	(1 << 14) - 2,
	(1 << 21) - 2,
	(1 << 28) - 2,
	(1 << 35) - 2,
	(1 << 42) - 2,
	(1 << 49) - 2,
	(1 << 56) - 2,
}

// vintUnknown[n] is the all-data-bits-set sentinel for length n.
var vintUnknown = [9]uint64{
	0,
	(1 << 7) - 1,
	(1 << 14) - 1,
	(1 << 21) - 1,
	(1 << 28) - 1,
	(1 << 35) - 1,
	(1 << 42) - 1,
	(1 << 49) - 1,
	(1 << 56) - 1,
}

// VintSize returns the smallest n in 1..8 such that v fits in an n-byte
// VINT, or 0 if v overflows even 8 bytes.
func VintSize(v uint64) int {
	for n := 1; n <= 8; n++ {
		if v <= vintMax[n] {
			return n
		}
	}
	return 0
}

// VintLength returns the encoded length signaled by a VINT's first
// byte (position of the highest set bit, 1..8), or 0 if the byte is
// 0x00 (invalid: no marker bit set within a single byte's width).
func VintLength(first byte) int {
	switch {
	case first&0x80 != 0:
		return 1
	case first&0x40 != 0:
		return 2
	case first&0x20 != 0:
		return 3
	case first&0x10 != 0:
		return 4
	case first&0x08 != 0:
		return 5
	case first&0x04 != 0:
		return 6
	case first&0x02 != 0:
		return 7
	case first&0x01 != 0:
		return 8
	default:
		return 0
	}
}

// pack accumulates every byte of b into a big-endian uint64.
func pack(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = (v << 8) | uint64(c)
	}
	return v
}

// VintDecode decodes a size VINT from buf (exactly length bytes,
// length = VintLength(buf[0])), masking the marker bit out of the
// value. Returns the decoded value.
func VintDecode(buf []byte) (uint64, error) {
	if len(buf) == 0 {
		return 0, ErrInvalidVint
	}
	n := VintLength(buf[0])
	if n == 0 || n > 8 || n > len(buf) {
		return 0, ErrInvalidVint
	}
	mask := byte(0xFF >> uint(n))
	tmp := make([]byte, n)
	copy(tmp, buf[:n])
	tmp[0] &= mask
	return pack(tmp), nil
}

// IDDecode decodes an element ID VINT, retaining the marker bit in the
// returned value (so EBML reads back as 0x1A45DFA3, not 0x0A45DFA3).
// Element IDs are at most 4 bytes.
func IDDecode(buf []byte) (uint32, error) {
	if len(buf) == 0 {
		return 0, ErrInvalidVint
	}
	n := VintLength(buf[0])
	if n == 0 || n > 4 || n > len(buf) {
		return 0, ErrInvalidVint
	}
	return uint32(pack(buf[:n])), nil
}

// VintEncode appends the minimum-length VINT encoding of v to dst,
// returning the extended slice.
func VintEncode(dst []byte, v uint64) ([]byte, error) {
	n := VintSize(v)
	if n == 0 {
		return nil, ErrVintOverflow
	}
	return VintEncodeFixed(dst, v, n)
}

// VintEncodeFixed appends a length-n VINT encoding of v to dst. It
// fails if v does not fit in n bytes. Used to rewrite a value into a
// slot of a byte width that must not change (Segment size patch,
// SeekHead position patch).
func VintEncodeFixed(dst []byte, v uint64, n int) ([]byte, error) {
	if n < 1 || n > 8 || v > vintMax[n] {
		return nil, ErrVintOverflow
	}
	out := make([]byte, n)
	tmp := v
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(tmp)
		tmp >>= 8
	}
	out[0] |= 0x80 >> uint(n-1)
	return append(dst, out...), nil
}

// IDEncode appends the raw big-endian bytes of an element ID to dst.
// Unlike size VINTs, ID width is chosen purely by the raw value's byte
// range; no marker bit is computed since it is already embedded in id.
func IDEncode(dst []byte, id uint32) ([]byte, error) {
	if id == 0 {
		return nil, ErrInvalidVint
	}
	n := IDSize(id)
	out := make([]byte, n)
	tmp := id
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(tmp)
		tmp >>= 8
	}
	return append(dst, out...), nil
}

// VintIsUnknown reports whether a decoded value v, given the encoded
// length n it came from, is the "unknown size" sentinel for that
// length (all data bits set).
func VintIsUnknown(v uint64, n int) bool {
	if n < 1 || n > 8 {
		return false
	}
	return v == vintUnknown[n]
}
