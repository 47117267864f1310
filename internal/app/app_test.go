package app

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/pulse-swap/internal/config"
	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
	"github.com/bimakw/pulse-swap/internal/infrastructure/cache"
	"github.com/bimakw/pulse-swap/internal/infrastructure/dex/dextest"
)

func loadConfig(t *testing.T, network string) *config.Config {
	t.Helper()
	cfg, err := config.FromViper(viper.New(), network)
	require.NoError(t, err)
	return cfg
}

func TestBuildTestnetDropsRoutersWithoutCode(t *testing.T) {
	cfg := loadConfig(t, config.Testnet)
	chain := dextest.NewChain(common.Address{})
	chain.SetCode(common.HexToAddress(cfg.Network.QuoteRouter), []byte{0x60})

	a, err := Build(context.Background(), cfg, chain, cache.NewInMemoryCache(), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 1, a.Routers.Len())
	assert.Equal(t, common.HexToAddress(cfg.Network.QuoteRouter), a.Routers.Primary().Address)
	assert.Equal(t, 3, a.Tokens.Count())

	wpls, ok := a.Tokens.GetBySymbol("WPLS")
	require.True(t, ok)
	assert.True(t, entities.SameAddress(cfg.Network.WrappedNative, wpls.Address))
}

func TestBuildTestnetWithoutLiveRoutersFails(t *testing.T) {
	cfg := loadConfig(t, config.Testnet)
	_, err := Build(context.Background(), cfg, dextest.NewChain(common.Address{}), cache.NewInMemoryCache(), zerolog.Nop())
	assert.Error(t, err)
}

func TestBuildMainnetQuotesThroughPrimary(t *testing.T) {
	cfg := loadConfig(t, config.Mainnet)
	chain := dextest.NewChain(common.Address{})
	primary := common.HexToAddress(cfg.Network.QuoteRouter)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	chain.AddPool(primary, cfg.WrappedNative(), cfg.Stable(),
		new(big.Int).Mul(big.NewInt(1_000_000), scale), big.NewInt(50_000_000_000))
	chain.SetDecimals(cfg.WrappedNative(), 18)
	chain.SetDecimals(cfg.Stable(), 6)

	a, err := Build(context.Background(), cfg, chain, cache.NewInMemoryCache(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 2, a.Routers.Len())
	assert.Equal(t, primary, a.Routers.Primary().Address)
	assert.Equal(t, entities.DefaultRegistry().Count(), a.Tokens.Count())

	res := a.Quotes.GetSwapQuote(context.Background(), services.QuoteRequest{
		FromToken:   entities.PLS,
		ToToken:     entities.USDC,
		Amount:      "100",
		SlippageBps: cfg.DefaultSlippageBps,
	})
	require.Equal(t, entities.QuoteFound, res.Status, res.Reason)
	assert.Equal(t, uint8(6), res.Quote.OutputDecimals)

	assert.NotNil(t, a.Executor(chain))
}
