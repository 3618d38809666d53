package stats

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/danmuck/syncwire/internal/handshake"
	"github.com/danmuck/syncwire/internal/wire"
)

func sessionAt(major int32) handshake.NegotiatedSession {
	return handshake.NegotiatedSession{
		Version:   handshake.ProtocolVersion{Major: major},
		Role:      handshake.RoleInitiator,
		Transport: handshake.TransportInBand,
	}
}

func TestStatisticsRoundTripModernProtocol(t *testing.T) {
	sess := sessionAt(29)
	in := ServerStatistics{
		TotalBytesRead:    math.MaxInt32 + 1, // forces the sentinel path
		TotalBytesWritten: 512,
		TotalFileSize:     math.MaxInt64,
		FlistBuildTime:    120,
		FlistXferTime:     45,
	}
	var buf bytes.Buffer
	if err := Write(&buf, sess, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(&buf, sess)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != in {
		t.Fatalf("round trip: got %+v want %+v", got, in)
	}
	if buf.Len() != 0 {
		t.Fatalf("%d stray bytes after statistics block", buf.Len())
	}
}

func TestStatisticsOldProtocolOmitsFlistTimes(t *testing.T) {
	old := sessionAt(27)
	in := ServerStatistics{
		TotalBytesRead:    1,
		TotalBytesWritten: 2,
		TotalFileSize:     3,
		FlistBuildTime:    99, // must not reach the wire
		FlistXferTime:     99,
	}
	var buf bytes.Buffer
	if err := Write(&buf, old, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() != 3*wire.ShortLen {
		t.Fatalf("old protocol block is %d bytes, want %d", buf.Len(), 3*wire.ShortLen)
	}
	got, err := Read(&buf, old)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.FlistBuildTime != 0 || got.FlistXferTime != 0 {
		t.Fatalf("flist times decoded on old protocol: %+v", got)
	}
}

func TestStatisticsTruncated(t *testing.T) {
	sess := sessionAt(30)
	var buf bytes.Buffer
	if err := wire.WriteLong(&buf, 1); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := Read(&buf, sess); !errors.Is(err, wire.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
