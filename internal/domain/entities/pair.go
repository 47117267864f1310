package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pair is a constant-product (x*y=k) pool snapshot. The quote engine has no
// authoritative reserve data, so it also builds synthetic pairs to approximate
// price impact.
type Pair struct {
	Token0   common.Address `json:"token0"`
	Token1   common.Address `json:"token1"`
	Reserve0 *big.Int       `json:"reserve0"`
	Reserve1 *big.Int       `json:"reserve1"`
	Fee      uint64         `json:"fee"` // Fee in basis points (e.g., 30 = 0.3%)
}

// GetSpotPrice calculates the spot price of token0 in terms of token1, scaled by 1e18
func (p *Pair) GetSpotPrice() *big.Int {
	if p.Reserve0 == nil || p.Reserve1 == nil || p.Reserve0.Sign() == 0 {
		return big.NewInt(0)
	}

	precision := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	numerator := new(big.Int).Mul(p.Reserve1, precision)
	return new(big.Int).Div(numerator, p.Reserve0)
}

func (p *Pair) reserves(tokenIn common.Address) (*big.Int, *big.Int) {
	if tokenIn == p.Token0 {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}

func (p *Pair) GetAmountOut(amountIn *big.Int, tokenIn common.Address) *big.Int {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return big.NewInt(0)
	}

	reserveIn, reserveOut := p.reserves(tokenIn)
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return big.NewInt(0)
	}

	// Apply fee (e.g., 0.3% fee means multiply by 997/1000)
	feeMultiplier := big.NewInt(10000 - int64(p.Fee))
	amountInWithFee := new(big.Int).Mul(amountIn, feeMultiplier)

	// numerator = amountInWithFee * reserveOut
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)

	// denominator = reserveIn * 10000 + amountInWithFee
	denominator := new(big.Int).Mul(reserveIn, big.NewInt(10000))
	denominator.Add(denominator, amountInWithFee)

	return new(big.Int).Div(numerator, denominator)
}

// AfterSwap returns the pair as it would look once amountIn of tokenIn has been
// swapped through it. The receiver is not modified.
func (p *Pair) AfterSwap(amountIn *big.Int, tokenIn common.Address) *Pair {
	next := *p
	amountOut := p.GetAmountOut(amountIn, tokenIn)
	if amountOut.Sign() == 0 {
		return &next
	}

	reserveIn, reserveOut := p.reserves(tokenIn)
	newIn := new(big.Int).Add(reserveIn, amountIn)
	newOut := new(big.Int).Sub(reserveOut, amountOut)
	if tokenIn == p.Token0 {
		next.Reserve0, next.Reserve1 = newIn, newOut
	} else {
		next.Reserve0, next.Reserve1 = newOut, newIn
	}
	return &next
}
