package handshake

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/syncwire/internal/wire"
)

const (
	// MinProtocolVersion is the oldest wire protocol this build speaks.
	MinProtocolVersion int32 = 27
	// MaxProtocolVersion is the newest wire protocol this build speaks.
	MaxProtocolVersion int32 = 30

	// greetingPrefix opens every daemon greeting line.
	greetingPrefix = "@RSYNCD: "
	// MaxGreetingLen bounds the greeting line, newline included. Longer
	// input is rejected before any numeric parsing happens.
	MaxGreetingLen = 64
)

// ProtocolVersion is the peer-declared protocol level. Sub is the
// sub-protocol component of the daemon greeting; non-zero means the peer
// runs an unreleased build of Major+1 and is only ever resolved by
// downgrading to Major. Sub is never carried into a negotiated session.
type ProtocolVersion struct {
	Major int32
	Sub   int32
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Sub)
}

// FormatGreeting renders the daemon greeting line for v.
func FormatGreeting(v ProtocolVersion) string {
	return fmt.Sprintf("%s%d.%d\n", greetingPrefix, v.Major, v.Sub)
}

// readGreeting consumes one greeting line byte by byte. Reading past the
// newline would swallow binary protocol bytes that follow it, so no
// buffering wrapper may sit between this and the transport.
func readGreeting(r io.Reader) (ProtocolVersion, error) {
	line := make([]byte, 0, MaxGreetingLen)
	for {
		b, err := wire.ReadByte(r)
		if err != nil {
			// A stream that ends before the newline is a malformed
			// greeting; genuine transport errors pass through untouched.
			if errors.Is(err, wire.ErrTruncated) {
				return ProtocolVersion{}, fmt.Errorf("%w: missing newline: %w",
					ErrMalformedGreeting, err)
			}
			return ProtocolVersion{}, err
		}
		if b == '\n' {
			return ParseGreeting(line)
		}
		line = append(line, b)
		if len(line) >= MaxGreetingLen {
			return ProtocolVersion{}, fmt.Errorf("%w: line exceeds %d bytes",
				ErrMalformedGreeting, MaxGreetingLen)
		}
	}
}

// ParseGreeting parses a greeting line with the trailing newline already
// stripped. The accepted form is exactly "@RSYNCD: <major>.<minor>".
func ParseGreeting(line []byte) (ProtocolVersion, error) {
	if len(line) < len(greetingPrefix) || string(line[:len(greetingPrefix)]) != greetingPrefix {
		return ProtocolVersion{}, fmt.Errorf("%w: missing %q prefix",
			ErrMalformedGreeting, greetingPrefix)
	}
	rest := line[len(greetingPrefix):]
	dot := -1
	for i, b := range rest {
		if b == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return ProtocolVersion{}, fmt.Errorf("%w: missing sub-protocol component",
			ErrMalformedGreeting)
	}
	major, err := parseDecimal(rest[:dot])
	if err != nil {
		return ProtocolVersion{}, fmt.Errorf("%w: bad major: %v", ErrMalformedGreeting, err)
	}
	sub, err := parseDecimal(rest[dot+1:])
	if err != nil {
		return ProtocolVersion{}, fmt.Errorf("%w: bad sub-protocol: %v", ErrMalformedGreeting, err)
	}
	return ProtocolVersion{Major: major, Sub: sub}, nil
}

// parseDecimal accepts non-empty unsigned decimal digits only, no sign and
// no whitespace, bounded so a hostile line cannot overflow int32.
func parseDecimal(b []byte) (int32, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("empty number")
	}
	var v int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
		v = v*10 + int64(c-'0')
		if v > int64(1)<<31-1 {
			return 0, fmt.Errorf("number too large")
		}
	}
	return int32(v), nil
}

// exchangeVersions runs the dialect selected by transport and returns the
// agreed major version. The responder speaks first on the daemon dialect so
// the initiator can pick a module before committing to anything.
func exchangeVersions(rw io.ReadWriter, role Role, transport Transport, localMax int32) (int32, error) {
	var peer ProtocolVersion
	switch transport {
	case TransportDaemon:
		local := FormatGreeting(ProtocolVersion{Major: localMax})
		if role == RoleResponder {
			if _, err := io.WriteString(rw, local); err != nil {
				return 0, err
			}
		}
		var err error
		peer, err = readGreeting(rw)
		if err != nil {
			return 0, err
		}
		if role == RoleInitiator {
			if _, err := io.WriteString(rw, local); err != nil {
				return 0, err
			}
		}
	case TransportInBand:
		if err := wire.WriteInt(rw, localMax); err != nil {
			return 0, err
		}
		major, err := wire.ReadInt(rw)
		if err != nil {
			return 0, err
		}
		peer = ProtocolVersion{Major: major}
	default:
		return 0, fmt.Errorf("%w: transport %d", ErrInvalidOptions, transport)
	}

	if peer.Sub != 0 {
		// Pre-release build of peer.Major+1. Experimental compatibility is
		// never honored; drop to the released major and carry on.
		log.Warn().
			Int32("peer_major", peer.Major).
			Int32("peer_sub", peer.Sub).
			Msg("peer offers unreleased sub-protocol, downgrading")
	}

	agreed := localMax
	if peer.Major < agreed {
		agreed = peer.Major
	}
	if agreed < MinProtocolVersion {
		return 0, fmt.Errorf("%w: agreed %d, minimum supported %d",
			ErrUnsupportedVersion, agreed, MinProtocolVersion)
	}
	return agreed, nil
}
