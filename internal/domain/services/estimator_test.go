package services_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
)

func TestSafetyFactorBps(t *testing.T) {
	tests := []struct {
		pathLen int
		want    uint64
	}{
		{2, 9950},
		{3, 9900},
		{4, 9850},
		{5, 9800},
		{6, 9800},
		{20, 9800},
		{500, 9800},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, services.DefaultSafetyFactor.Bps(tt.pathLen), "path length %d", tt.pathLen)
	}
}

func TestSafetyFactorMonotonicWithFloor(t *testing.T) {
	prev := services.DefaultSafetyFactor.Bps(2)
	for n := 2; n <= 64; n++ {
		bps := services.DefaultSafetyFactor.Bps(n)
		assert.LessOrEqual(t, bps, prev)
		assert.GreaterOrEqual(t, bps, uint64(9800))
		prev = bps
	}
}

func TestConservativeEstimatePicksBestRouter(t *testing.T) {
	f := newFixture(t, routerV1)
	f.chain.AddPool(routerV1, wpls, usdc, units(1_000_000, 18), units(40_000, 6))
	f.chain.AddPool(routerV2, wpls, usdc, units(1_000_000, 18), units(50_000, 6))

	amountIn := units(10, 18)
	path := entities.Path{wpls, usdc}

	v2Amounts, err := f.quoters[1].GetAmountsOut(context.Background(), amountIn, path)
	require.NoError(t, err)

	est := services.NewEstimator(f.quoters, services.DefaultSafetyFactor, zerolog.Nop()).
		ConservativeEstimate(context.Background(), path, amountIn)

	require.Equal(t, entities.QuoteFound, est.Status)
	assert.Equal(t, routerV2, est.RouterAddress)
	assert.Equal(t, 0.995, est.SafetyFactor)
	assert.Equal(t, entities.ApplyBps(v2Amounts[1], 9950), est.OutputAmount)
}

func TestConservativeEstimateLongerPathDiscountsMore(t *testing.T) {
	f := newFixture(t, routerV2)
	f.chain.AddPool(routerV2, tokenA, wpls, units(1_000_000, 18), units(1_000_000, 18))
	f.chain.AddPool(routerV2, wpls, tokenB, units(1_000_000, 18), units(1_000_000, 18))

	est := services.NewEstimator(f.quoters, services.DefaultSafetyFactor, zerolog.Nop()).
		ConservativeEstimate(context.Background(), entities.Path{tokenA, wpls, tokenB}, units(1, 18))

	require.Equal(t, entities.QuoteFound, est.Status)
	assert.Equal(t, 0.99, est.SafetyFactor)
}

func TestConservativeEstimateAllRoutersFail(t *testing.T) {
	f := newFixture(t, routerV2)
	f.chain.FailRouter(routerV1, errors.New("connection refused"))
	f.chain.FailRouter(routerV2, entities.ErrReverted)

	amountIn := big.NewInt(1000)
	est := services.NewEstimator(f.quoters, services.DefaultSafetyFactor, zerolog.Nop()).
		ConservativeEstimate(context.Background(), entities.Path{wpls, usdc}, amountIn)

	assert.Equal(t, entities.QuoteDegraded, est.Status)
	assert.Equal(t, big.NewInt(333), est.OutputAmount)
	assert.NotEmpty(t, est.Reason)
}

func TestConservativeEstimateFloorDivision(t *testing.T) {
	f := newFixture(t, routerV2)
	est := services.NewEstimator(f.quoters, services.DefaultSafetyFactor, zerolog.Nop()).
		ConservativeEstimate(context.Background(), entities.Path{tokenA, tokenB}, units(1, 18))

	assert.Equal(t, entities.QuoteDegraded, est.Status)
	want, _ := new(big.Int).SetString("333333333333333333", 10)
	assert.Equal(t, want, est.OutputAmount)
}

func TestConservativeEstimateIsolatesHangingRouter(t *testing.T) {
	f := newFixture(t, routerV2)
	f.chain.AddPool(routerV1, wpls, usdc, units(1_000_000, 18), units(90_000, 6))
	f.chain.AddPool(routerV2, wpls, usdc, units(1_000_000, 18), units(50_000, 6))
	f.chain.StallRouter(routerV1, time.Minute)

	start := time.Now()
	est := services.NewEstimator(f.quoters, services.DefaultSafetyFactor, zerolog.Nop()).
		ConservativeEstimate(context.Background(), entities.Path{wpls, usdc}, units(1, 18))

	assert.Less(t, time.Since(start), 5*time.Second)
	require.Equal(t, entities.QuoteFound, est.Status)
	assert.Equal(t, routerV2, est.RouterAddress)
}

func TestConservativeEstimateRejectsBadInput(t *testing.T) {
	f := newFixture(t, routerV2)
	e := services.NewEstimator(f.quoters, services.DefaultSafetyFactor, zerolog.Nop())

	est := e.ConservativeEstimate(context.Background(), entities.Path{wpls, usdc}, big.NewInt(0))
	assert.Equal(t, entities.QuoteNotFound, est.Status)

	est = e.ConservativeEstimate(context.Background(), entities.Path{wpls, wpls}, big.NewInt(10))
	assert.Equal(t, entities.QuoteNotFound, est.Status)
	assert.Zero(t, f.chain.Reads())
}
