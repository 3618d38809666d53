package handshake

import "errors"

var (
	ErrMalformedGreeting  = errors.New("handshake: malformed daemon greeting")
	ErrUnsupportedVersion = errors.New("handshake: unsupported protocol version")
	ErrBadDescriptor      = errors.New("handshake: invalid compat descriptor")
	ErrInvalidOptions     = errors.New("handshake: invalid options")
)
