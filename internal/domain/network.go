package domain

import "github.com/mr-tron/base58"

// Network identifies the chain a pool lives on.
type Network string

const (
	NetworkEth      Network = "eth"
	NetworkSolana   Network = "solana"
	NetworkBsc      Network = "bsc"
	NetworkBase     Network = "base"
	NetworkPolygon  Network = "polygon"
	NetworkAvax     Network = "avax"
	NetworkArbitrum Network = "arbitrum"
	NetworkUnknown  Network = "unknown"
)

// String returns the string representation of Network.
func (n Network) String() string {
	return string(n)
}

// IsValid checks if the network is a known value.
func (n Network) IsValid() bool {
	switch n {
	case NetworkEth, NetworkSolana, NetworkBsc, NetworkBase,
		NetworkPolygon, NetworkAvax, NetworkArbitrum, NetworkUnknown:
		return true
	}
	return false
}

// IsEVM reports whether the network uses 0x-prefixed hex addresses.
func (n Network) IsEVM() bool {
	switch n {
	case NetworkEth, NetworkBsc, NetworkBase, NetworkPolygon, NetworkAvax, NetworkArbitrum:
		return true
	}
	return false
}

// ValidAddress performs a shape check on a token address for this network.
// Solana addresses must decode as 32-byte base58; EVM addresses must be
// 0x-prefixed 40 hex chars. Unknown networks accept any non-empty string.
func (n Network) ValidAddress(addr string) bool {
	if addr == "" {
		return false
	}
	switch {
	case n == NetworkSolana:
		raw, err := base58.Decode(addr)
		return err == nil && len(raw) == 32
	case n.IsEVM():
		if len(addr) != 42 || addr[0] != '0' || (addr[1] != 'x' && addr[1] != 'X') {
			return false
		}
		for _, c := range addr[2:] {
			if !isHexChar(c) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
