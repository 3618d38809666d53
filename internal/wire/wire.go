package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	// ShortLen is the width of the fixed int32 form.
	ShortLen = 4
	// LongExtLen is the width of the 8-byte extension after the sentinel.
	LongExtLen = 8

	// longSentinel in the short-form slot announces an 8-byte extension.
	longSentinel int32 = -1
)

var (
	ErrTruncated       = errors.New("wire: truncated stream")
	ErrMalformedVarint = errors.New("wire: malformed varlong prefix")
	ErrBadMinBytes     = errors.New("wire: varlong min-bytes out of range")
)

// ReadInt reads one short-form integer: 4 raw bytes, least-significant first.
func ReadInt(r io.Reader) (int32, error) {
	var buf [ShortLen]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteInt writes one short-form integer.
func WriteInt(w io.Writer, v int32) error {
	var buf [ShortLen]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadLong reads a sentinel-prefixed 64-bit integer. The leading short form
// is the value itself unless it holds the sentinel bit pattern 0xFFFFFFFF,
// in which case 8 more little-endian bytes carry the full value. A value of
// -1 therefore always arrives through the extension.
func ReadLong(r io.Reader) (int64, error) {
	head, err := ReadInt(r)
	if err != nil {
		return 0, err
	}
	if head != longSentinel {
		return int64(head), nil
	}
	var buf [LongExtLen]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// WriteLong writes a sentinel-prefixed 64-bit integer, using the short fast
// path whenever the value fits in an int32 and is not the sentinel itself.
func WriteLong(w io.Writer, v int64) error {
	if v >= int64(-1<<31) && v <= int64(1<<31-1) && int32(v) != longSentinel {
		return WriteInt(w, int32(v))
	}
	if err := WriteInt(w, longSentinel); err != nil {
		return err
	}
	var buf [LongExtLen]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadByte reads a single octet.
func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteByte writes a single octet.
func WriteByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// ReadBytes reads exactly n octets into a fresh buffer.
func ReadBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := readFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readFull maps EOF-family failures to ErrTruncated and passes transport
// errors through unchanged so callers can tell the categories apart.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}
