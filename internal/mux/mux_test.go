package mux

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/syncwire/internal/testutil/testlog"
)

func TestMuxDemuxRoundTrip(t *testing.T) {
	testlog.Start(t)
	var stream bytes.Buffer
	w := NewMuxWriter(&stream)
	if _, err := w.Write([]byte("hello ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := w.Write([]byte("world")); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := io.ReadAll(NewDemuxReader(&stream))
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestDemuxSkipsMessageEnvelopes(t *testing.T) {
	var stream bytes.Buffer
	w := NewMuxWriter(&stream)
	if err := w.WriteMessage(3, "building file list\n"); err != nil {
		t.Fatalf("write message: %v", err)
	}
	if _, err := w.Write([]byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := io.ReadAll(NewDemuxReader(&stream))
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q", got)
	}
}

func TestDemuxFatalTerminatesStream(t *testing.T) {
	var stream bytes.Buffer
	w := NewMuxWriter(&stream)
	if err := w.WriteMessage(TagFatal, "disk full"); err != nil {
		t.Fatalf("write message: %v", err)
	}

	_, err := io.ReadAll(NewDemuxReader(&stream))
	if !errors.Is(err, ErrRemoteFatal) {
		t.Fatalf("expected ErrRemoteFatal, got %v", err)
	}
}

func TestDemuxZeroLengthDataIsMalformed(t *testing.T) {
	// Data tag 7 with zero length.
	stream := bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x07})
	_, err := io.ReadAll(NewDemuxReader(stream))
	if !errors.Is(err, ErrZeroLengthData) {
		t.Fatalf("expected ErrZeroLengthData, got %v", err)
	}
}

func TestDemuxTruncatedDataEnvelope(t *testing.T) {
	// Data envelope declaring 10 bytes, stream ends after 4. Must surface
	// as truncation, never as a clean EOF with partial data.
	stream := bytes.NewReader([]byte{0x0A, 0x00, 0x00, 0x07, 'a', 'b', 'c', 'd'})
	got, err := io.ReadAll(NewDemuxReader(stream))
	if !errors.Is(err, ErrTruncatedEnvelope) {
		t.Fatalf("expected ErrTruncatedEnvelope, got %v (data %q)", err, got)
	}
}

func TestDemuxTruncatedEnvelopeHeader(t *testing.T) {
	stream := bytes.NewReader([]byte{0x0A, 0x00})
	_, err := io.ReadAll(NewDemuxReader(stream))
	if !errors.Is(err, ErrTruncatedEnvelope) {
		t.Fatalf("expected ErrTruncatedEnvelope, got %v", err)
	}
}

func TestDemuxTruncatedMessageEnvelope(t *testing.T) {
	// Message tag 3 declaring 8 bytes, stream ends after 3.
	stream := bytes.NewReader([]byte{0x08, 0x00, 0x00, 0x03, 'e', 'r', 'r'})
	_, err := io.ReadAll(NewDemuxReader(stream))
	if !errors.Is(err, ErrTruncatedEnvelope) {
		t.Fatalf("expected ErrTruncatedEnvelope, got %v", err)
	}
}

func TestDemuxCleanEOFAtEnvelopeBoundary(t *testing.T) {
	got, err := io.ReadAll(NewDemuxReader(bytes.NewReader(nil)))
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d bytes from empty stream", len(got))
	}
}

func TestDemuxReadsAcrossEnvelopeInSmallChunks(t *testing.T) {
	var stream bytes.Buffer
	w := NewMuxWriter(&stream)
	if _, err := w.Write([]byte("abcdef")); err != nil {
		t.Fatalf("write: %v", err)
	}

	d := NewDemuxReader(&stream)
	buf := make([]byte, 2)
	var out []byte
	for {
		n, err := d.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if string(out) != "abcdef" {
		t.Fatalf("got %q", out)
	}
}
