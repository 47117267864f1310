package services_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
	"github.com/bimakw/pulse-swap/internal/infrastructure/cache"
	"github.com/bimakw/pulse-swap/internal/infrastructure/dex"
	"github.com/bimakw/pulse-swap/internal/infrastructure/dex/dextest"
)

var (
	routerV1 = common.HexToAddress("0x98bf93ebf5c380C0e6Ae8e192A7e2AE08edAcc02")
	routerV2 = common.HexToAddress("0x165C3410fC91EF562C50559f7d2289fEbed552d9")
	wpls     = common.HexToAddress(entities.WPLS.Address)
	usdc     = common.HexToAddress(entities.USDC.Address)
	tokenA   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	user     = common.HexToAddress("0x00000000000000000000000000000000000000cc")

	tokA = entities.Token{Address: tokenA.Hex(), Symbol: "AAA", Decimals: 18}
	tokB = entities.Token{Address: tokenB.Hex(), Symbol: "BBB", Decimals: 18}
)

func units(n int64, decimals int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)
	return new(big.Int).Mul(big.NewInt(n), scale)
}

type fixture struct {
	chain    *dextest.Chain
	registry *entities.RouterRegistry
	quoters  []services.RouterQuoter
	decimals *services.DecimalResolver
	quotes   *services.QuoteService
}

// newFixture builds a two-router mainnet-like setup on a fake chain. The
// first router listed is the primary.
func newFixture(t *testing.T, primary common.Address) *fixture {
	t.Helper()

	chain := dextest.NewChain(user)
	chain.SetDecimals(wpls, 18)
	chain.SetDecimals(usdc, 6)
	chain.SetDecimals(tokenA, 18)
	chain.SetDecimals(tokenB, 18)

	registry, err := entities.NewRouterRegistry(primary,
		entities.Router{Address: routerV1, Version: entities.RouterV1},
		entities.Router{Address: routerV2, Version: entities.RouterV2},
	)
	require.NoError(t, err)

	var quoters []services.RouterQuoter
	for _, r := range registry.All() {
		quoters = append(quoters, dex.NewRouterClient(chain, r, 100*time.Millisecond))
	}

	decimals := services.NewDecimalResolver(dex.NewTokenClient(chain, 100*time.Millisecond), cache.NewInMemoryCache(), 369, zerolog.Nop())

	quotes, err := services.NewQuoteService(registry, quoters, decimals,
		services.NewPathGenerator(wpls, usdc),
		services.QuoteConfig{
			WrappedNative: wpls,
			QuoteTimeout:  time.Second,
			Impact:        defaultImpact,
		},
		zerolog.Nop(),
	)
	require.NoError(t, err)

	return &fixture{
		chain:    chain,
		registry: registry,
		quoters:  quoters,
		decimals: decimals,
		quotes:   quotes,
	}
}

var defaultImpact = services.PriceImpactModel{
	BaselineLiquidity: 1_000_000,
	VolatilityFactor:  1.2,
	MinPercent:        0.1,
	MaxPercent:        5,
}
