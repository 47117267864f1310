package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
)

const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// RouterConfig is one entry of a network's router registry
type RouterConfig struct {
	Address string `mapstructure:"address"`
	Version string `mapstructure:"version"`
}

// NetworkConfig is the injected per-network chain configuration
type NetworkConfig struct {
	Name            string         `mapstructure:"name"`
	ChainID         int64          `mapstructure:"chain_id"`
	RPCURL          string         `mapstructure:"rpc_url"`
	WrappedNative   string         `mapstructure:"wrapped_native"`
	Stable          string         `mapstructure:"stable"`
	QuoteRouter     string         `mapstructure:"quote_router"`
	Routers         []RouterConfig `mapstructure:"routers"`
	DiscoverRouters bool           `mapstructure:"discover_routers"`
}

// Timeouts bounds every chain interaction
type Timeouts struct {
	Read    time.Duration `mapstructure:"read"`
	Quote   time.Duration `mapstructure:"quote"`
	Receipt time.Duration `mapstructure:"receipt"`
}

// Tuning holds the heuristic display constants. None of them are chain-verified.
type Tuning struct {
	BaselineLiquidity float64 `mapstructure:"baseline_liquidity"`
	VolatilityFactor  float64 `mapstructure:"volatility_factor"`
	MinImpactPercent  float64 `mapstructure:"min_impact_percent"`
	MaxImpactPercent  float64 `mapstructure:"max_impact_percent"`
	SafetyStartBps    uint64  `mapstructure:"safety_start_bps"`
	SafetyStepBps     uint64  `mapstructure:"safety_step_bps"`
	SafetyFloorBps    uint64  `mapstructure:"safety_floor_bps"`
}

// Config holds the application configuration. It is read once and not mutated.
type Config struct {
	Network            NetworkConfig `mapstructure:"-"`
	Timeouts           Timeouts      `mapstructure:"timeouts"`
	Tuning             Tuning        `mapstructure:"tuning"`
	SwapDeadline       time.Duration `mapstructure:"swap_deadline"`
	DefaultSlippageBps uint64        `mapstructure:"default_slippage_bps"`
	TokenList          string        `mapstructure:"token_list"`
	RedisAddr          string        `mapstructure:"redis_addr"`
	Port               string        `mapstructure:"port"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
	PrivateKey         string        `mapstructure:"private_key"`
}

// DefaultNetworks are the built-in PulseChain deployments. Every field can be
// overridden through the networks.<name> config key or PULSE_SWAP_* variables.
func DefaultNetworks() map[string]NetworkConfig {
	return map[string]NetworkConfig{
		Mainnet: {
			Name:          Mainnet,
			ChainID:       369,
			RPCURL:        "https://rpc.pulsechain.com",
			WrappedNative: entities.WPLS.Address,
			Stable:        entities.USDC.Address,
			QuoteRouter:   "0x165C3410fC91EF562C50559f7d2289fEbed552d9",
			Routers: []RouterConfig{
				{Address: "0x98bf93ebf5c380C0e6Ae8e192A7e2AE08edAcc02", Version: string(entities.RouterV1)},
				{Address: "0x165C3410fC91EF562C50559f7d2289fEbed552d9", Version: string(entities.RouterV2)},
			},
		},
		Testnet: {
			Name:          Testnet,
			ChainID:       943,
			RPCURL:        "https://rpc.v4.testnet.pulsechain.com",
			WrappedNative: "0x70499adEBB11Efd915E3b69E700c331778628707",
			Stable:        "0x826e4e896CC2f5B371Cd7Bb0bd929DB3e3DB67c0",
			QuoteRouter:   "0xDaE9dd3d1A52CfCe9d5F2fAC7fDe164D500E50f7",
			Routers: []RouterConfig{
				{Address: "0xDaE9dd3d1A52CfCe9d5F2fAC7fDe164D500E50f7", Version: string(entities.RouterV1)},
				{Address: "0x636f6407B90661b73b1C0F7e24F4C79f624d0738", Version: string(entities.RouterV2)},
			},
			DiscoverRouters: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", Mainnet)
	v.SetDefault("timeouts.read", 10*time.Second)
	v.SetDefault("timeouts.quote", 15*time.Second)
	v.SetDefault("timeouts.receipt", 3*time.Minute)
	v.SetDefault("swap_deadline", 20*time.Minute)
	v.SetDefault("default_slippage_bps", 50)
	v.SetDefault("tuning.baseline_liquidity", 1_000_000.0)
	v.SetDefault("tuning.volatility_factor", 1.2)
	v.SetDefault("tuning.min_impact_percent", 0.1)
	v.SetDefault("tuning.max_impact_percent", 5.0)
	v.SetDefault("tuning.safety_start_bps", 9950)
	v.SetDefault("tuning.safety_step_bps", 50)
	v.SetDefault("tuning.safety_floor_bps", 9800)
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Load reads .env (optional), .pulse-swap.yaml (optional) and PULSE_SWAP_*
// environment variables. network overrides the configured network when non-empty.
func Load(network string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(".pulse-swap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	v.SetEnvPrefix("PULSE_SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v, network)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper, network string) (*Config, error) {
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if network == "" {
		network = strings.ToLower(v.GetString("network"))
	}
	net, ok := DefaultNetworks()[network]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", network)
	}

	// Scalar overrides, e.g. PULSE_SWAP_NETWORKS_MAINNET_RPC_URL
	prefix := "networks." + network + "."
	if s := v.GetString(prefix + "rpc_url"); s != "" {
		net.RPCURL = s
	}
	if s := v.GetString(prefix + "wrapped_native"); s != "" {
		net.WrappedNative = s
	}
	if s := v.GetString(prefix + "stable"); s != "" {
		net.Stable = s
	}
	if s := v.GetString(prefix + "quote_router"); s != "" {
		net.QuoteRouter = s
	}
	if id := v.GetInt64(prefix + "chain_id"); id != 0 {
		net.ChainID = id
	}
	if v.IsSet(prefix + "discover_routers") {
		net.DiscoverRouters = v.GetBool(prefix + "discover_routers")
	}
	if v.IsSet(prefix + "routers") {
		var routers []RouterConfig
		if err := v.UnmarshalKey(prefix+"routers", &routers); err != nil {
			return nil, fmt.Errorf("failed to decode routers for %s: %w", network, err)
		}
		net.Routers = routers
	}
	cfg.Network = net

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks addresses and numeric ranges
func (c *Config) Validate() error {
	n := c.Network
	if n.RPCURL == "" {
		return fmt.Errorf("rpc url not configured for network %s", n.Name)
	}
	for name, addr := range map[string]string{"wrapped_native": n.WrappedNative, "stable": n.Stable, "quote_router": n.QuoteRouter} {
		if _, err := ethclient.ParseAddress(addr); err != nil {
			return fmt.Errorf("%s for network %s: %w", name, n.Name, err)
		}
	}
	if len(n.Routers) == 0 {
		return fmt.Errorf("no routers configured for network %s", n.Name)
	}
	for _, r := range n.Routers {
		if _, err := ethclient.ParseAddress(r.Address); err != nil {
			return fmt.Errorf("router for network %s: %w", n.Name, err)
		}
		switch entities.RouterVersion(strings.ToLower(r.Version)) {
		case entities.RouterV1, entities.RouterV2:
		default:
			return fmt.Errorf("router %s has unknown version %q", r.Address, r.Version)
		}
	}
	if c.Timeouts.Read <= 0 || c.Timeouts.Quote <= 0 || c.Timeouts.Receipt <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.SwapDeadline <= 0 {
		return fmt.Errorf("swap deadline must be positive")
	}
	if c.DefaultSlippageBps >= entities.BpsDenominator {
		return fmt.Errorf("default slippage %d bps must be below %d", c.DefaultSlippageBps, entities.BpsDenominator)
	}
	t := c.Tuning
	if t.BaselineLiquidity <= 0 || t.VolatilityFactor <= 0 {
		return fmt.Errorf("tuning: baseline liquidity and volatility factor must be positive")
	}
	if t.MinImpactPercent < 0 || t.MinImpactPercent > t.MaxImpactPercent || t.MaxImpactPercent > 100 {
		return fmt.Errorf("tuning: impact clamp [%v, %v] is invalid", t.MinImpactPercent, t.MaxImpactPercent)
	}
	if t.SafetyFloorBps > t.SafetyStartBps || t.SafetyStartBps > entities.BpsDenominator {
		return fmt.Errorf("tuning: safety factor start %d / floor %d bps invalid", t.SafetyStartBps, t.SafetyFloorBps)
	}
	return nil
}

// ChainID returns the network chain id as big.Int
func (c *Config) ChainID() *big.Int {
	return big.NewInt(c.Network.ChainID)
}

func (c *Config) WrappedNative() common.Address {
	return common.HexToAddress(c.Network.WrappedNative)
}

func (c *Config) Stable() common.Address {
	return common.HexToAddress(c.Network.Stable)
}

// Routers converts the configured routers into entities
func (c *Config) Routers() []entities.Router {
	out := make([]entities.Router, 0, len(c.Network.Routers))
	for _, r := range c.Network.Routers {
		out = append(out, entities.Router{
			Address: common.HexToAddress(r.Address),
			Version: entities.RouterVersion(strings.ToLower(r.Version)),
		})
	}
	return out
}

// RouterRegistry builds the immutable registry from routers, designating the
// quote router as primary. If the quote router is missing from routers the
// first router is used instead.
func (c *Config) RouterRegistry(routers []entities.Router) (*entities.RouterRegistry, error) {
	if len(routers) == 0 {
		return nil, fmt.Errorf("no live routers on network %s", c.Network.Name)
	}
	primary := common.HexToAddress(c.Network.QuoteRouter)
	found := false
	for _, r := range routers {
		if r.Address == primary {
			found = true
			break
		}
	}
	if !found {
		primary = routers[0].Address
	}
	return entities.NewRouterRegistry(primary, routers...)
}

// Tokens reads the configured token list, or falls back to the built-in list
// for the network. The native coin is always listed.
func (c *Config) Tokens() (*entities.TokenRegistry, error) {
	if c.TokenList != "" {
		reg := entities.NewTokenRegistry()
		reg.Register(entities.PLS)
		if err := reg.LoadFromFile(c.TokenList); err != nil {
			return nil, err
		}
		return reg, nil
	}
	if c.Network.Name == Mainnet {
		return entities.DefaultRegistry(), nil
	}

	reg := entities.NewTokenRegistry()
	reg.Register(entities.PLS)
	reg.Register(entities.Token{
		Address:  c.Network.WrappedNative,
		Symbol:   "WPLS",
		Name:     "Wrapped Pulse",
		Decimals: 18,
	})
	reg.Register(entities.Token{
		Address: c.Network.Stable,
		Symbol:  "STABLE",
		Name:    "Testnet stable",
	})
	return reg, nil
}
