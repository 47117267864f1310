package entities

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// BpsDenominator is 100% in basis points
const BpsDenominator = 10000

// ParseUnits converts a human decimal string ("1.25") into smallest units for the
// given precision without a floating point intermediate. Extra fractional
// digits beyond decimals are truncated.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && (!hasDot || frac == "") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return v, nil
}

// FormatUnits renders smallest units as a human decimal string, trimming
// trailing zeros.
func FormatUnits(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	neg := v.Sign() < 0
	digits := new(big.Int).Abs(v).String()
	if decimals > 0 {
		if len(digits) <= int(decimals) {
			digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
		}
		cut := len(digits) - int(decimals)
		whole, frac := digits[:cut], strings.TrimRight(digits[cut:], "0")
		digits = whole
		if frac != "" {
			digits += "." + frac
		}
	}
	if neg {
		return "-" + digits
	}
	return digits
}

// ToFloat converts smallest units to an approximate float for display math only
func ToFloat(v *big.Int, decimals uint8) float64 {
	if v == nil {
		return 0
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), scale).Float64()
	return f
}

// SlippagePercentToBps converts a percent string ("0.5") to basis points (50).
// The result must be below 100%.
func SlippagePercentToBps(percent string) (uint64, error) {
	bps, err := ParseUnits(percent, 2)
	if err != nil {
		return 0, err
	}
	if !bps.IsUint64() || bps.Uint64() >= BpsDenominator {
		return 0, fmt.Errorf("%w: slippage %s%% must be below 100%%", ErrInvalidAmount, percent)
	}
	return bps.Uint64(), nil
}

// MinAmountOut computes floor(quoted * (10000 - slippageBps) / 10000) in 256-bit
// integer arithmetic. It fails on values that do not fit the EVM word size.
func MinAmountOut(quoted *big.Int, slippageBps uint64) (*big.Int, error) {
	if quoted == nil || quoted.Sign() < 0 {
		return nil, fmt.Errorf("%w: quoted output must be non-negative", ErrInvalidAmount)
	}
	if slippageBps >= BpsDenominator {
		return nil, fmt.Errorf("%w: slippage %d bps must be below %d", ErrInvalidAmount, slippageBps, BpsDenominator)
	}

	q, overflow := uint256.FromBig(quoted)
	if overflow {
		return nil, fmt.Errorf("%w: quoted output exceeds 256 bits", ErrInvalidAmount)
	}
	product, overflow := new(uint256.Int).MulOverflow(q, uint256.NewInt(BpsDenominator-slippageBps))
	if overflow {
		return nil, fmt.Errorf("%w: slippage product overflows 256 bits", ErrInvalidAmount)
	}
	return product.Div(product, uint256.NewInt(BpsDenominator)).ToBig(), nil
}

// MaxUint256 is the unbounded ERC20 allowance
func MaxUint256() *big.Int {
	return new(uint256.Int).SetAllOne().ToBig()
}

// ApplyBps scales v by bps/10000 with floor division
func ApplyBps(v *big.Int, bps uint64) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(v, new(big.Int).SetUint64(bps))
	return out.Div(out, big.NewInt(BpsDenominator))
}
