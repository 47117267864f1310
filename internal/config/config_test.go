package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, Mainnet, cfg.Network.Name)
	assert.Equal(t, int64(369), cfg.ChainID().Int64())
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Read)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Quote)
	assert.Equal(t, 20*time.Minute, cfg.SwapDeadline)
	assert.Equal(t, uint64(9950), cfg.Tuning.SafetyStartBps)
	assert.Equal(t, uint64(9800), cfg.Tuning.SafetyFloorBps)
	assert.Equal(t, common.HexToAddress(entities.WPLS.Address), cfg.WrappedNative())
	assert.Len(t, cfg.Routers(), 2)
}

func TestFromViperTestnetOverrides(t *testing.T) {
	v := viper.New()
	v.Set("networks.testnet.rpc_url", "http://localhost:8545")
	v.Set("timeouts.read", "3s")

	cfg, err := FromViper(v, Testnet)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8545", cfg.Network.RPCURL)
	assert.Equal(t, int64(943), cfg.Network.ChainID)
	assert.True(t, cfg.Network.DiscoverRouters)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Read)
}

func TestFromViperRejectsNameLikeAddresses(t *testing.T) {
	v := viper.New()
	v.Set("networks.mainnet.wrapped_native", "wpls.eth")

	_, err := FromViper(v, Mainnet)
	assert.ErrorIs(t, err, entities.ErrInvalidAddress)
}

func TestFromViperUnknownNetwork(t *testing.T) {
	_, err := FromViper(viper.New(), "goerli")
	assert.Error(t, err)
}

func TestValidateTuning(t *testing.T) {
	cfg, err := FromViper(viper.New(), Mainnet)
	require.NoError(t, err)

	bad := *cfg
	bad.Tuning.SafetyFloorBps = 9990
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.DefaultSlippageBps = 10000
	assert.Error(t, bad.Validate())
}

func TestRouterRegistryFallsBackToFirstRouter(t *testing.T) {
	cfg, err := FromViper(viper.New(), Mainnet)
	require.NoError(t, err)

	v1 := cfg.Routers()[0]
	reg, err := cfg.RouterRegistry([]entities.Router{v1})
	require.NoError(t, err)
	assert.Equal(t, v1, reg.Primary())

	_, err = cfg.RouterRegistry(nil)
	assert.Error(t, err)
}

func TestTokensFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tokens":[
		{"address":"0x95B303987A60C71504D99Aa1b13B4DA07b0790ab","symbol":"PLSX","name":"PulseX","decimals":18}
	]}`), 0o600))

	cfg, err := FromViper(viper.New(), Mainnet)
	require.NoError(t, err)
	cfg.TokenList = path

	reg, err := cfg.Tokens()
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Count())
	_, ok := reg.GetBySymbol("pls")
	assert.True(t, ok)
}

func TestTokensBuiltIn(t *testing.T) {
	mainnet, err := FromViper(viper.New(), Mainnet)
	require.NoError(t, err)
	reg, err := mainnet.Tokens()
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultRegistry().Count(), reg.Count())

	testnet, err := FromViper(viper.New(), Testnet)
	require.NoError(t, err)
	reg, err = testnet.Tokens()
	require.NoError(t, err)
	wpls, ok := reg.GetBySymbol("WPLS")
	require.True(t, ok)
	assert.True(t, entities.SameAddress(testnet.Network.WrappedNative, wpls.Address))
}

func TestTokensMissingFile(t *testing.T) {
	cfg, err := FromViper(viper.New(), Mainnet)
	require.NoError(t, err)
	cfg.TokenList = filepath.Join(t.TempDir(), "missing.json")

	_, err = cfg.Tokens()
	assert.Error(t, err)
}
