package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestReadWriteIntRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 27, 30, math.MinInt32, math.MaxInt32} {
		var buf bytes.Buffer
		if err := WriteInt(&buf, v); err != nil {
			t.Fatalf("write int %d: %v", v, err)
		}
		if buf.Len() != ShortLen {
			t.Fatalf("short form of %d is %d bytes", v, buf.Len())
		}
		got, err := ReadInt(&buf)
		if err != nil {
			t.Fatalf("read int %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("int round trip: got %d want %d", got, v)
		}
	}
}

func TestReadIntLittleEndian(t *testing.T) {
	got, err := ReadInt(bytes.NewReader([]byte{0x10, 0x00, 0x00, 0x00}))
	if err != nil {
		t.Fatalf("read int: %v", err)
	}
	if got != 0x10 {
		t.Fatalf("got %#x want 0x10", got)
	}
}

func TestReadIntTruncated(t *testing.T) {
	_, err := ReadInt(bytes.NewReader([]byte{1, 2}))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestLongRoundTripBoundaries(t *testing.T) {
	cases := []struct {
		v        int64
		wireLen  int
		extended bool
	}{
		{0, ShortLen, false},
		{1, ShortLen, false},
		{math.MinInt32, ShortLen, false},
		{math.MaxInt32, ShortLen, false},
		{-1, ShortLen + LongExtLen, true},
		{math.MaxInt32 + 1, ShortLen + LongExtLen, true},
		{math.MinInt32 - 1, ShortLen + LongExtLen, true},
		{math.MaxInt64, ShortLen + LongExtLen, true},
		{math.MinInt64, ShortLen + LongExtLen, true},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := WriteLong(&buf, tc.v); err != nil {
			t.Fatalf("write long %d: %v", tc.v, err)
		}
		if buf.Len() != tc.wireLen {
			t.Fatalf("long %d: wire length %d want %d (extended=%v)",
				tc.v, buf.Len(), tc.wireLen, tc.extended)
		}
		got, err := ReadLong(&buf)
		if err != nil {
			t.Fatalf("read long %d: %v", tc.v, err)
		}
		if got != tc.v {
			t.Fatalf("long round trip: got %d want %d", got, tc.v)
		}
	}
}

func TestReadLongSentinelPath(t *testing.T) {
	// Sentinel short form followed by 0x7766554433221100 LSB first.
	got, err := ReadLong(bytes.NewReader([]byte{
		0xff, 0xff, 0xff, 0xff,
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	}))
	if err != nil {
		t.Fatalf("read long: %v", err)
	}
	if got != 0x7766554433221100 {
		t.Fatalf("got %#x want 0x7766554433221100", got)
	}
}

func TestReadLongFastPathConsumesFourBytes(t *testing.T) {
	r := bytes.NewReader([]byte{0x10, 0, 0, 0, 0xAA, 0xBB})
	got, err := ReadLong(r)
	if err != nil {
		t.Fatalf("read long: %v", err)
	}
	if got != 0x10 {
		t.Fatalf("got %#x want 0x10", got)
	}
	if r.Len() != 2 {
		t.Fatalf("fast path consumed %d extra bytes", 2-r.Len())
	}
}

func TestReadLongTruncatedExtension(t *testing.T) {
	_, err := ReadLong(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x01}))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReadBytesExact(t *testing.T) {
	got, err := ReadBytes(bytes.NewReader([]byte("abcdef")), 4)
	if err != nil {
		t.Fatalf("read bytes: %v", err)
	}
	if string(got) != "abcd" {
		t.Fatalf("got %q want %q", got, "abcd")
	}
	if _, err := ReadBytes(bytes.NewReader([]byte("ab")), 4); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
