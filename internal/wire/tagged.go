package wire

import (
	"errors"
	"fmt"
	"io"
)

var ErrUnknownEncoding = errors.New("wire: unknown integer encoding")

// Encoding identifies which of the three wire forms produced a value.
type Encoding uint8

const (
	EncodingShort Encoding = iota + 1
	EncodingLong
	EncodingVarlong
)

func (e Encoding) String() string {
	switch e {
	case EncodingShort:
		return "short"
	case EncodingLong:
		return "long"
	case EncodingVarlong:
		return "varlong"
	default:
		return fmt.Sprintf("encoding(%d)", uint8(e))
	}
}

// Int is a decoded integer that remembers its wire form. Peers infer framing
// from encoding choice, so a value echoed back must reuse the scheme it
// arrived with.
type Int struct {
	Value    int64
	Encoding Encoding
	MinBytes int
}

// ReadTagged decodes one integer with the given scheme and tags the result.
// minBytes only applies to the varlong form and is recorded for the echo.
func ReadTagged(r io.Reader, enc Encoding, minBytes int) (Int, error) {
	switch enc {
	case EncodingShort:
		v, err := ReadInt(r)
		if err != nil {
			return Int{}, err
		}
		return Int{Value: int64(v), Encoding: enc}, nil
	case EncodingLong:
		v, err := ReadLong(r)
		if err != nil {
			return Int{}, err
		}
		return Int{Value: v, Encoding: enc}, nil
	case EncodingVarlong:
		v, err := ReadVarlong(r, minBytes)
		if err != nil {
			return Int{}, err
		}
		return Int{Value: v, Encoding: enc, MinBytes: minBytes}, nil
	default:
		return Int{}, fmt.Errorf("%w: %d", ErrUnknownEncoding, enc)
	}
}

// Echo re-encodes the value with the scheme that produced it.
func (v Int) Echo(w io.Writer) error {
	switch v.Encoding {
	case EncodingShort:
		return WriteInt(w, int32(v.Value))
	case EncodingLong:
		return WriteLong(w, v.Value)
	case EncodingVarlong:
		return WriteVarlong(w, v.Value, v.MinBytes)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownEncoding, v.Encoding)
	}
}
