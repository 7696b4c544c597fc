package midifile

const (
	// MaxVarint is the largest value a 4-byte variable-length integer holds.
	MaxVarint = 0x0FFFFFFF

	maxVarintLen = 4
)

// ReadVarint decodes a variable-length integer from the start of b: 7 data
// bits per byte, most significant group first, high bit set on every byte
// but the last. It returns the value and the number of bytes consumed.
func ReadVarint(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < maxVarintLen; i++ {
		if i >= len(b) {
			return 0, i, ErrTruncated
		}
		c := b[i]
		v = v<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, maxVarintLen, ErrVarint
}

// AppendVarint appends the shortest encoding of v to dst.
func AppendVarint(dst []byte, v uint32) ([]byte, error) {
	if v > MaxVarint {
		return dst, ErrVarintRange
	}

	var buf [maxVarintLen]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7F) | 0x80
	}
	return append(dst, buf[i:]...), nil
}
