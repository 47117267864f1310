package services

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

// PriceImpactModel approximates price impact without reserve data. It builds a
// synthetic constant-product pool of BaselineLiquidity input units priced at
// the observed execution price and measures how far the trade moves its
// marginal price. The result is a display estimate, clamped to [Min, Max].
type PriceImpactModel struct {
	BaselineLiquidity float64
	VolatilityFactor  float64
	MinPercent        float64
	MaxPercent        float64
}

var (
	syntheticIn  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	syntheticOut = common.HexToAddress("0x0000000000000000000000000000000000000002")
	wad          = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
)

func toWad(v float64) *big.Int {
	out, _ := new(big.Float).Mul(big.NewFloat(v), wad).Int(nil)
	return out
}

// Estimate returns the clamped price impact percent for a trade of amountIn
// (human units) executed at executionPrice output per input.
func (m PriceImpactModel) Estimate(amountIn, executionPrice float64) float64 {
	if amountIn <= 0 || math.IsNaN(amountIn) || math.IsInf(amountIn, 0) {
		return m.MinPercent
	}
	if executionPrice <= 0 || math.IsNaN(executionPrice) || math.IsInf(executionPrice, 0) {
		executionPrice = 1
	}

	pool := &entities.Pair{
		Token0:   syntheticIn,
		Token1:   syntheticOut,
		Reserve0: toWad(m.BaselineLiquidity),
		Reserve1: toWad(m.BaselineLiquidity * executionPrice),
	}
	pre := pool.GetSpotPrice()
	post := pool.AfterSwap(toWad(amountIn), syntheticIn).GetSpotPrice()
	if pre.Sign() == 0 {
		return m.MaxPercent
	}

	drop := new(big.Float).SetInt(new(big.Int).Sub(pre, post))
	ratio, _ := new(big.Float).Quo(drop, new(big.Float).SetInt(pre)).Float64()

	sizeFactor := 1 + amountIn/m.BaselineLiquidity
	impact := ratio * 100 * sizeFactor * m.VolatilityFactor

	return math.Min(m.MaxPercent, math.Max(m.MinPercent, impact))
}
