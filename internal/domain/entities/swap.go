package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapIntent is a user's request to execute a swap. It is consumed once.
type SwapIntent struct {
	FromToken   Token
	ToToken     Token
	AmountIn    string // human units, e.g. "1.5"
	SlippageBps uint64
	UserAddress common.Address
	Deadline    int64 // unix seconds; zero means now + configured window
}

// SwapShape selects the router entry point
type SwapShape int

const (
	ShapeInvalid SwapShape = iota
	ShapeTokenToToken
	ShapeNativeToToken
	ShapeTokenToNative
)

func (s SwapShape) String() string {
	switch s {
	case ShapeTokenToToken:
		return "token_to_token"
	case ShapeNativeToToken:
		return "native_to_token"
	case ShapeTokenToNative:
		return "token_to_native"
	default:
		return "invalid"
	}
}

// ShapeOf determines the swap shape from the token sentinels.
// Native to native has no entry point and yields ShapeInvalid.
func ShapeOf(from, to Token) SwapShape {
	switch {
	case from.IsNative() && to.IsNative():
		return ShapeInvalid
	case from.IsNative():
		return ShapeNativeToToken
	case to.IsNative():
		return ShapeTokenToNative
	default:
		return ShapeTokenToToken
	}
}

// SwapState tracks a single swap attempt
type SwapState string

const (
	StateIdle            SwapState = "idle"
	StateApproving       SwapState = "approving"
	StateApproved        SwapState = "approved"
	StateApprovalSkipped SwapState = "approval_skipped"
	StateSubmitted       SwapState = "submitted"
	StateConfirmed       SwapState = "confirmed"
	StateFailed          SwapState = "failed"
)

// SwapResult reports the outcome of a swap attempt
type SwapResult struct {
	State          SwapState      `json:"state"`
	Shape          string         `json:"shape"`
	TxHash         common.Hash    `json:"txHash"`
	ApprovalTxHash *common.Hash   `json:"approvalTxHash,omitempty"`
	Router         common.Address `json:"router"`
	AmountIn       *big.Int       `json:"amountIn"`
	MinAmountOut   *big.Int       `json:"minAmountOut"`
	Deadline       int64          `json:"deadline"`
	BlockNumber    uint64         `json:"blockNumber,omitempty"`
	Transitions    []SwapState    `json:"transitions"`
}
