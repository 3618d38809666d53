package handshake

import (
	"fmt"
	"strings"
)

// CompatFlags is the set of behavioral capabilities active for a session.
// Derived once during negotiation and never mutated afterwards.
type CompatFlags uint32

const (
	CompatIncRecurse CompatFlags = 1 << iota
	CompatSymlinkTimes
	CompatSymlinkIconv
	CompatSafeFileList
	CompatAvoidXattrOptim
	CompatChecksumSeedFix
)

// MaxDescriptorLen bounds the compat descriptor before tokenizing.
const MaxDescriptorLen = 64

// compatTokens maps descriptor characters to flags. Unknown characters are
// ignored so newer peers can advertise capabilities this build predates.
var compatTokens = map[byte]CompatFlags{
	'i': CompatIncRecurse,
	'L': CompatSymlinkTimes,
	's': CompatSymlinkIconv,
	'f': CompatSafeFileList,
	'x': CompatAvoidXattrOptim,
	'C': CompatChecksumSeedFix,
}

// Has reports whether every flag in mask is set.
func (f CompatFlags) Has(mask CompatFlags) bool {
	return f&mask == mask
}

func (f CompatFlags) String() string {
	if f == 0 {
		return "none"
	}
	var sb strings.Builder
	for _, tok := range []byte{'i', 'L', 's', 'f', 'x', 'C'} {
		if f.Has(compatTokens[tok]) {
			sb.WriteByte(tok)
		}
	}
	return sb.String()
}

// defaultFlags is the capability set historically shipped with each released
// protocol level.
var defaultFlags = map[int32]CompatFlags{
	27: 0,
	28: CompatChecksumSeedFix,
	29: CompatChecksumSeedFix | CompatSymlinkTimes,
	30: CompatChecksumSeedFix | CompatSymlinkTimes | CompatIncRecurse | CompatSafeFileList,
}

// DefaultFlags returns the static per-version capability set.
func DefaultFlags(major int32) CompatFlags {
	return defaultFlags[major]
}

// NegotiateCompat derives the session flag set. With no descriptor the
// per-version defaults apply; otherwise the descriptor alone decides. The
// descriptor's producers are not all locally trusted, so length and charset
// are checked before any token is honored.
func NegotiateCompat(major int32, descriptor string) (CompatFlags, error) {
	if descriptor == "" {
		return DefaultFlags(major), nil
	}
	if len(descriptor) > MaxDescriptorLen {
		return 0, fmt.Errorf("%w: %d bytes exceeds %d",
			ErrBadDescriptor, len(descriptor), MaxDescriptorLen)
	}
	var flags CompatFlags
	for i := 0; i < len(descriptor); i++ {
		c := descriptor[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.':
		default:
			return 0, fmt.Errorf("%w: byte %#02x at offset %d", ErrBadDescriptor, c, i)
		}
		if f, ok := compatTokens[c]; ok {
			flags |= f
		}
	}
	return flags, nil
}
