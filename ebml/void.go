package ebml

import "errors"

// ErrVoidTooSmall signals a requested Void total size below the
// 2-byte minimum (1 ID byte + at least a 1-byte size VINT).
var ErrVoidTooSmall = errors.New("ebml: void total size must be at least 2")

// AppendVoid appends a Void element of exactly totalSize bytes
// (header included) to dst. Because a single content size may be
// representable by more than one VINT width, the size VINT's length is
// chosen so the whole element lands on totalSize exactly: the smallest
// L in 1..8 for which the content size either needs exactly L bytes or
// fewer (padding the VINT up to consume the slot).
func AppendVoid(dst []byte, totalSize int) ([]byte, error) {
	if totalSize < 2 {
		return nil, ErrVoidTooSmall
	}
	for l := 1; l <= 8; l++ {
		contentSize := totalSize - 1 - l
		if contentSize < 0 {
			continue
		}
		need := VintSize(uint64(contentSize))
		if need == 0 {
			continue
		}
		if need == l || need < l {
			dst = append(dst, byte(IDVoid))
			var err error
			dst, err = VintEncodeFixed(dst, uint64(contentSize), l)
			if err != nil {
				return nil, err
			}
			if contentSize > 0 {
				dst = append(dst, make([]byte, contentSize)...)
			}
			return dst, nil
		}
	}
	return nil, ErrVintOverflow
}
