package identity

import (
	"fmt"
	"strings"

	"Veritas/internal/fault"
)

const (
	// Method is the DID method handled by this module.
	Method = "evan"

	// CoreNetwork is the network whose DIDs carry no network segment.
	CoreNetwork = "core"

	didPrefix = "did:" + Method + ":"
)

// Codec converts between identities and DID strings for one network.
type Codec struct {
	Network string // Network is the configured network, CoreNetwork when empty
}

// NewCodec returns a codec for the given network.
func NewCodec(network string) Codec {
	if network == "" {
		network = CoreNetwork
	}
	return Codec{Network: network}
}

// network returns the effective network name.
func (c Codec) network() string {
	if c.Network == "" {
		return CoreNetwork
	}
	return c.Network
}

// FormatDID returns did:evan:[<network>:]<identity-hex>.
func (c Codec) FormatDID(id Identity) string {
	if c.network() == CoreNetwork {
		return didPrefix + id.Hex()
	}
	return didPrefix + c.network() + ":" + id.Hex()
}

// ParseDID parses a DID of this codec's network into an identity.
// A key reference (did#fragment) is not accepted; use SplitKeyID first.
func (c Codec) ParseDID(did string) (Identity, error) {
	if !strings.HasPrefix(did, didPrefix) {
		return Identity{}, fmt.Errorf("%w: %q is not a did:%s identifier", fault.ErrValidation, did, Method)
	}

	rest := did[len(didPrefix):]
	parts := strings.Split(rest, ":")

	var network, hexID string
	switch len(parts) {
	case 1:
		network, hexID = CoreNetwork, parts[0]
	case 2:
		network, hexID = parts[0], parts[1]
		if network == "" || network == CoreNetwork {
			return Identity{}, fmt.Errorf("%w: %q has an invalid network segment", fault.ErrValidation, did)
		}
	default:
		return Identity{}, fmt.Errorf("%w: %q has too many segments", fault.ErrValidation, did)
	}

	if network != c.network() {
		return Identity{}, fmt.Errorf("%w: did network %q does not match configured network %q",
			fault.ErrValidation, network, c.network())
	}

	return Parse(hexID)
}

// Normalize parses and re-formats a DID so that equal identities compare equal as strings.
func (c Codec) Normalize(did string) (string, error) {
	id, err := c.ParseDID(did)
	if err != nil {
		return "", err
	}
	return c.FormatDID(id), nil
}

// IsDID reports whether s looks like a DID rather than a hex identity.
func IsDID(s string) bool {
	return strings.HasPrefix(s, "did:")
}

// SplitKeyID splits a key reference "did#fragment" into its DID and fragment.
func SplitKeyID(keyID string) (did, fragment string, err error) {
	did, fragment, ok := strings.Cut(keyID, "#")
	if !ok || did == "" || fragment == "" {
		return "", "", fmt.Errorf("%w: %q is not a key reference", fault.ErrValidation, keyID)
	}
	return did, fragment, nil
}
