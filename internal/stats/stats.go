// Package stats decodes the end-of-transfer statistics block the server
// reports to the client.
package stats

import (
	"io"

	"github.com/danmuck/syncwire/internal/handshake"
	"github.com/danmuck/syncwire/internal/wire"
)

// ServerStatistics is the counter block sent after a completed run. All
// fields travel as sentinel-prefixed longs.
type ServerStatistics struct {
	TotalBytesRead    int64
	TotalBytesWritten int64
	TotalFileSize     int64

	// Only reported at protocol >= 29.
	FlistBuildTime int64
	FlistXferTime  int64
}

// flistTimesMinVersion is the first protocol level that reports file-list
// build and transfer times.
const flistTimesMinVersion int32 = 29

// Read decodes the statistics block for the negotiated session. The session
// version decides how many fields are on the wire; reading the wrong count
// would desynchronize everything after it.
func Read(r io.Reader, sess handshake.NegotiatedSession) (ServerStatistics, error) {
	var s ServerStatistics
	var err error
	if s.TotalBytesRead, err = wire.ReadLong(r); err != nil {
		return ServerStatistics{}, err
	}
	if s.TotalBytesWritten, err = wire.ReadLong(r); err != nil {
		return ServerStatistics{}, err
	}
	if s.TotalFileSize, err = wire.ReadLong(r); err != nil {
		return ServerStatistics{}, err
	}
	if sess.Version.Major < flistTimesMinVersion {
		return s, nil
	}
	if s.FlistBuildTime, err = wire.ReadLong(r); err != nil {
		return ServerStatistics{}, err
	}
	if s.FlistXferTime, err = wire.ReadLong(r); err != nil {
		return ServerStatistics{}, err
	}
	return s, nil
}

// Write encodes the statistics block, mirroring Read's version gate.
func Write(w io.Writer, sess handshake.NegotiatedSession, s ServerStatistics) error {
	if err := wire.WriteLong(w, s.TotalBytesRead); err != nil {
		return err
	}
	if err := wire.WriteLong(w, s.TotalBytesWritten); err != nil {
		return err
	}
	if err := wire.WriteLong(w, s.TotalFileSize); err != nil {
		return err
	}
	if sess.Version.Major < flistTimesMinVersion {
		return nil
	}
	if err := wire.WriteLong(w, s.FlistBuildTime); err != nil {
		return err
	}
	return wire.WriteLong(w, s.FlistXferTime)
}
