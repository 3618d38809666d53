package handshake

import (
	"fmt"
	"io"
)

// Role is this side's part in the exchange.
type Role uint8

const (
	RoleInitiator Role = iota + 1
	RoleResponder
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Transport is the kind of byte stream carrying the session.
type Transport uint8

const (
	// TransportDaemon is a direct socket to a protocol daemon; the
	// handshake is the text greeting dialect.
	TransportDaemon Transport = iota + 1
	// TransportInBand is a stream tunneled through another transport; the
	// handshake is the binary dialect.
	TransportInBand
)

func (t Transport) String() string {
	switch t {
	case TransportDaemon:
		return "daemon"
	case TransportInBand:
		return "inband"
	default:
		return fmt.Sprintf("transport(%d)", uint8(t))
	}
}

// Options configures one handshake.
type Options struct {
	Role      Role
	Transport Transport

	// LocalMax caps the version this side offers; zero means
	// MaxProtocolVersion.
	LocalMax int32

	// Descriptor is the config-supplied compat descriptor, consumed only by
	// daemon-mode responders. It never comes off the wire here, but some of
	// its producers forward peer-influenced content, so it is validated as
	// untrusted input.
	Descriptor string
}

func (o Options) validate() error {
	switch o.Role {
	case RoleInitiator, RoleResponder:
	default:
		return fmt.Errorf("%w: role %d", ErrInvalidOptions, o.Role)
	}
	switch o.Transport {
	case TransportDaemon, TransportInBand:
	default:
		return fmt.Errorf("%w: transport %d", ErrInvalidOptions, o.Transport)
	}
	if o.LocalMax != 0 && (o.LocalMax < MinProtocolVersion || o.LocalMax > MaxProtocolVersion) {
		return fmt.Errorf("%w: local max %d outside %d..%d",
			ErrInvalidOptions, o.LocalMax, MinProtocolVersion, MaxProtocolVersion)
	}
	return nil
}

// NegotiatedSession is the immutable result of a successful handshake.
// It is small and safe to copy; nothing mutates it after construction.
type NegotiatedSession struct {
	Version   ProtocolVersion
	Flags     CompatFlags
	Role      Role
	Transport Transport
}

// Negotiate runs the full handshake against rw and constructs the session
// atomically: any failure returns the zero session and an error, never a
// partially filled record. Blocking happens only inside reads and writes on
// rw; closing the transport aborts an in-flight handshake.
func Negotiate(rw io.ReadWriter, opts Options) (NegotiatedSession, error) {
	if err := opts.validate(); err != nil {
		return NegotiatedSession{}, err
	}
	localMax := opts.LocalMax
	if localMax == 0 {
		localMax = MaxProtocolVersion
	}

	agreed, err := exchangeVersions(rw, opts.Role, opts.Transport, localMax)
	if err != nil {
		return NegotiatedSession{}, err
	}

	descriptor := ""
	if opts.Transport == TransportDaemon && opts.Role == RoleResponder {
		descriptor = opts.Descriptor
	}
	flags, err := NegotiateCompat(agreed, descriptor)
	if err != nil {
		return NegotiatedSession{}, err
	}

	return NegotiatedSession{
		Version:   ProtocolVersion{Major: agreed},
		Flags:     flags,
		Role:      opts.Role,
		Transport: opts.Transport,
	}, nil
}
