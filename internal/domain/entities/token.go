package entities

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeSentinel marks the chain's native coin (PLS) in token lists and requests.
// It is never a valid routing address and is replaced by the wrapped native
// contract before a path is built.
const NativeSentinel = "NATIVE"

// NativeDecimals is the fixed precision of the native coin
const NativeDecimals uint8 = 18

type Token struct {
	Address  string   `json:"address"`
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Decimals uint8    `json:"decimals"`
	LogoURI  *string  `json:"logoURI,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Balance  *big.Int `json:"balance,omitempty"`
}

// IsNative reports whether the token is the native coin sentinel
func (t Token) IsNative() bool {
	return IsNativeAddress(t.Address)
}

// RoutingAddress returns the contract address used in paths, substituting the
// wrapped native contract for the sentinel.
func (t Token) RoutingAddress(wrappedNative common.Address) common.Address {
	if t.IsNative() {
		return wrappedNative
	}
	return common.HexToAddress(t.Address)
}

// Same reports whether two tokens refer to the same asset. Addresses compare
// case-insensitively.
func (t Token) Same(other Token) bool {
	return SameAddress(t.Address, other.Address)
}

func IsNativeAddress(addr string) bool {
	return strings.EqualFold(strings.TrimSpace(addr), NativeSentinel)
}

// SameAddress compares two address strings ignoring hex case
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// PLS is the native coin of PulseChain
var PLS = Token{
	Address:  NativeSentinel,
	Symbol:   "PLS",
	Name:     "Pulse",
	Decimals: NativeDecimals,
}

// WPLS is Wrapped Pulse on PulseChain mainnet
var WPLS = Token{
	Address:  "0xA1077a294dDE1B09bB078844df40758a5D0f9a27",
	Symbol:   "WPLS",
	Name:     "Wrapped Pulse",
	Decimals: 18,
}

// USDC is the bridged USD Coin on PulseChain mainnet
var USDC = Token{
	Address:  "0x15D38573d2feeb82e7ad5187aB8c1D52810B1f07",
	Symbol:   "USDC",
	Name:     "USD Coin from Ethereum",
	Decimals: 6,
}

// DAI is the bridged Dai Stablecoin on PulseChain mainnet
var DAI = Token{
	Address:  "0xefD766cCb38EaF1dfd701853BFCe31359239F305",
	Symbol:   "DAI",
	Name:     "Dai Stablecoin from Ethereum",
	Decimals: 18,
}

// PLSX is the PulseX token
var PLSX = Token{
	Address:  "0x95B303987A60C71504D99Aa1b13B4DA07b0790ab",
	Symbol:   "PLSX",
	Name:     "PulseX",
	Decimals: 18,
}

// HEX on PulseChain
var HEX = Token{
	Address:  "0x2b591e99afE9f32eAA6214f7B7629768c40Eeb39",
	Symbol:   "HEX",
	Name:     "HEX",
	Decimals: 8,
}
