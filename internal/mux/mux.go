// Package mux frames the server-to-client byte stream into tagged,
// length-prefixed envelopes so remote log and error text can ride along
// with bulk data.
package mux

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// Envelope header: 4 bytes little-endian, high byte is the tag, low 24 bits
// the payload length.
const (
	TagFatal byte = 1
	TagData  byte = 7

	headerLen  = 4
	maxPayload = 1<<24 - 1
)

var (
	ErrZeroLengthData    = errors.New("mux: zero-length data envelope")
	ErrRemoteFatal       = errors.New("mux: remote signalled fatal error")
	ErrPayloadTooBig     = errors.New("mux: payload exceeds 24-bit length")
	ErrTruncatedEnvelope = errors.New("mux: stream ended inside an envelope")
)

// DemuxReader unwraps data envelopes and surfaces the payload bytes as a
// plain io.Reader. Message envelopes are logged and consumed in place;
// a fatal envelope terminates the stream with ErrRemoteFatal.
type DemuxReader struct {
	r io.Reader
	// remaining bytes of the current data envelope
	remaining int
	eof       bool
}

func NewDemuxReader(r io.Reader) *DemuxReader {
	return &DemuxReader{r: r}
}

func (d *DemuxReader) Read(p []byte) (int, error) {
	if d.eof {
		return 0, io.EOF
	}
	for d.remaining == 0 {
		n, err := d.nextDataEnvelope()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			d.eof = true
			return 0, io.EOF
		}
		d.remaining = n
	}
	if len(p) > d.remaining {
		p = p[:d.remaining]
	}
	n, err := d.r.Read(p)
	d.remaining -= n
	// EOF while bytes of the current envelope are still owed is truncation,
	// never a clean end of stream.
	if errors.Is(err, io.EOF) && d.remaining > 0 {
		return n, fmt.Errorf("%w: %d data bytes missing", ErrTruncatedEnvelope, d.remaining)
	}
	return n, err
}

// nextDataEnvelope reads envelope headers until a data envelope arrives,
// logging any message payloads in between. Returns 0 on a clean EOF at an
// envelope boundary.
func (d *DemuxReader) nextDataEnvelope() (int, error) {
	for {
		var head [headerLen]byte
		if _, err := io.ReadFull(d.r, head[:]); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, fmt.Errorf("%w: partial envelope header", ErrTruncatedEnvelope)
			}
			if errors.Is(err, io.EOF) {
				return 0, nil
			}
			return 0, err
		}
		h := binary.LittleEndian.Uint32(head[:])
		tag := byte(h >> 24)
		length := int(h & maxPayload)

		if tag == TagData {
			if length == 0 {
				return 0, ErrZeroLengthData
			}
			return length, nil
		}

		// Remote human-readable text: consume and log, never return it as
		// stream data.
		msg := make([]byte, length)
		if _, err := io.ReadFull(d.r, msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, fmt.Errorf("%w: partial message envelope", ErrTruncatedEnvelope)
			}
			return 0, err
		}
		log.Info().
			Uint8("tag", tag).
			Str("remote", trimTrailingNewlines(string(msg))).
			Msg("remote message")
		if tag == TagFatal {
			return 0, fmt.Errorf("%w: %s", ErrRemoteFatal, trimTrailingNewlines(string(msg)))
		}
	}
}

func trimTrailingNewlines(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// MuxWriter wraps every write in a data envelope, splitting writes that
// exceed the 24-bit length field.
type MuxWriter struct {
	w io.Writer
}

func NewMuxWriter(w io.Writer) *MuxWriter {
	return &MuxWriter{w: w}
}

func (m *MuxWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > maxPayload {
			chunk = chunk[:maxPayload]
		}
		if err := m.writeEnvelope(TagData, chunk); err != nil {
			return total, err
		}
		total += len(chunk)
		p = p[len(chunk):]
	}
	return total, nil
}

// WriteMessage sends a tagged text envelope, for log or error lines bound
// for the peer.
func (m *MuxWriter) WriteMessage(tag byte, text string) error {
	if len(text) > maxPayload {
		return ErrPayloadTooBig
	}
	return m.writeEnvelope(tag, []byte(text))
}

func (m *MuxWriter) writeEnvelope(tag byte, payload []byte) error {
	var head [headerLen]byte
	binary.LittleEndian.PutUint32(head[:], uint32(tag)<<24|uint32(len(payload)))
	if _, err := m.w.Write(head[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := m.w.Write(payload)
	return err
}
