package wire

import (
	"fmt"
	"io"
)

// Varlong layout, fixed by the test vectors in varlong_test.go:
//
//	prefix byte: bits 0-3 = trailing byte count n (0..8), bits 4-7 = 0
//	trailing:    low n bytes of the two's-complement value, LSB first
//
// The decoder sign-extends from bit 7 of the last trailing byte; n=0 decodes
// to zero and n=8 is taken raw. Encoding picks the smallest n that
// sign-extends back to the value, raised to the caller's minimum byte count.

const varlongMaxTrailing = 8

// ReadVarlong reads one varlong. minBytes is the protocol-context minimum
// significant byte count agreed with the peer; it bounds nothing on the read
// side beyond parameter validation, since the prefix is self-describing.
func ReadVarlong(r io.Reader, minBytes int) (int64, error) {
	if minBytes < 0 || minBytes > varlongMaxTrailing {
		return 0, fmt.Errorf("%w: %d", ErrBadMinBytes, minBytes)
	}
	prefix, err := ReadByte(r)
	if err != nil {
		return 0, err
	}
	if prefix&0xF0 != 0 {
		return 0, fmt.Errorf("%w: reserved bits set in %#02x", ErrMalformedVarint, prefix)
	}
	n := int(prefix & 0x0F)
	if n > varlongMaxTrailing {
		return 0, fmt.Errorf("%w: %d trailing bytes claimed", ErrMalformedVarint, n)
	}
	if n == 0 {
		return 0, nil
	}
	buf := make([]byte, n)
	if err := readFull(r, buf); err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	if n < varlongMaxTrailing && buf[n-1]&0x80 != 0 {
		v |= ^uint64(0) << (8 * uint(n))
	}
	return int64(v), nil
}

// WriteVarlong writes v using at least minBytes significant bytes.
func WriteVarlong(w io.Writer, v int64, minBytes int) error {
	if minBytes < 0 || minBytes > varlongMaxTrailing {
		return fmt.Errorf("%w: %d", ErrBadMinBytes, minBytes)
	}
	n := varlongTrailing(v)
	if n < minBytes {
		n = minBytes
	}
	buf := make([]byte, 1+n)
	buf[0] = byte(n)
	u := uint64(v)
	for i := 0; i < n; i++ {
		buf[1+i] = byte(u >> (8 * uint(i)))
	}
	_, err := w.Write(buf)
	return err
}

// varlongTrailing returns the smallest byte count whose sign extension
// reproduces v.
func varlongTrailing(v int64) int {
	if v == 0 {
		return 0
	}
	u := uint64(v)
	for n := 1; n < varlongMaxTrailing; n++ {
		shift := 8 * uint(n)
		top := byte(u >> (shift - 8))
		var ext uint64
		if top&0x80 != 0 {
			ext = u | ^uint64(0)<<shift
		} else {
			ext = u &^ (^uint64(0) << shift)
		}
		if int64(ext) == v {
			return n
		}
	}
	return varlongMaxTrailing
}
