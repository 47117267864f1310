// Package app wires configuration into the chain gateway and the quoting and
// execution services shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bimakw/pulse-swap/internal/config"
	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
	"github.com/bimakw/pulse-swap/internal/infrastructure/cache"
	"github.com/bimakw/pulse-swap/internal/infrastructure/dex"
	"github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
	"github.com/bimakw/pulse-swap/internal/logging"
)

// App holds the long-lived handles for one network
type App struct {
	Config    *config.Config
	Client    *ethereum.Client
	Routers   *entities.RouterRegistry
	Tokens    *entities.TokenRegistry
	Cache     cache.Cache
	Decimals  *services.DecimalResolver
	Quotes    *services.QuoteService
	Estimator *services.Estimator
	ERC20     *dex.TokenClient

	logger zerolog.Logger
	closer func()
}

// New connects to the configured network and builds the services
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	client, err := ethereum.NewClient(ctx, cfg.Network.RPCURL, cfg.ChainID())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Network.Name, err)
	}
	logger.Info().
		Str("network", cfg.Network.Name).
		Str("chain_id", client.ChainID().String()).
		Msg("connected to chain")

	c := newCache(cfg, logger)
	a, err := Build(ctx, cfg, client, c, logger)
	if err != nil {
		if rc, ok := c.(*cache.RedisCache); ok {
			_ = rc.Close()
		}
		client.Close()
		return nil, err
	}
	a.Client = client
	prev := a.closer
	a.closer = func() {
		prev()
		client.Close()
	}
	return a, nil
}

// Build assembles the services on top of an existing chain caller
func Build(ctx context.Context, cfg *config.Config, caller dex.Caller, c cache.Cache, logger zerolog.Logger) (*App, error) {
	routers := cfg.Routers()
	if cfg.Network.DiscoverRouters {
		live := dex.DiscoverRouters(ctx, caller, routers, cfg.Timeouts.Read)
		logger.Info().
			Int("configured", len(routers)).
			Int("live", len(live)).
			Msg("router discovery finished")
		routers = live
	}
	registry, err := cfg.RouterRegistry(routers)
	if err != nil {
		return nil, err
	}

	tokens, err := cfg.Tokens()
	if err != nil {
		return nil, err
	}

	erc20 := dex.NewTokenClient(caller, cfg.Timeouts.Read)
	decimals := services.NewDecimalResolver(erc20, c, cfg.Network.ChainID, logging.Component(logger, "decimals"))

	quoters := make([]services.RouterQuoter, 0, registry.Len())
	for _, r := range registry.All() {
		quoters = append(quoters, dex.NewRouterClient(caller, r, cfg.Timeouts.Read))
	}

	t := cfg.Tuning
	quotes, err := services.NewQuoteService(registry, quoters, decimals,
		services.NewPathGenerator(cfg.WrappedNative(), cfg.Stable()),
		services.QuoteConfig{
			WrappedNative: cfg.WrappedNative(),
			QuoteTimeout:  cfg.Timeouts.Quote,
			Impact: services.PriceImpactModel{
				BaselineLiquidity: t.BaselineLiquidity,
				VolatilityFactor:  t.VolatilityFactor,
				MinPercent:        t.MinImpactPercent,
				MaxPercent:        t.MaxImpactPercent,
			},
		},
		logging.Component(logger, "quote"),
	)
	if err != nil {
		return nil, err
	}

	estimator := services.NewEstimator(quoters, services.SafetyFactor{
		StartBps: t.SafetyStartBps,
		StepBps:  t.SafetyStepBps,
		FloorBps: t.SafetyFloorBps,
	}, logging.Component(logger, "estimator"))

	closer := func() {}
	if rc, ok := c.(*cache.RedisCache); ok {
		closer = func() { _ = rc.Close() }
	}

	return &App{
		Config:    cfg,
		Routers:   registry,
		Tokens:    tokens,
		Cache:     c,
		Decimals:  decimals,
		Quotes:    quotes,
		Estimator: estimator,
		ERC20:     erc20,
		logger:    logger,
		closer:    closer,
	}, nil
}

// Executor returns a swap executor that signs through tx
func (a *App) Executor(tx services.Transactor) *services.SwapExecutor {
	return services.NewSwapExecutor(a.Routers, a.ERC20, tx, a.Decimals, services.ExecutorConfig{
		WrappedNative:  a.Config.WrappedNative(),
		DeadlineWindow: a.Config.SwapDeadline,
		ReceiptTimeout: a.Config.Timeouts.Receipt,
	}, logging.Component(a.logger, "executor"))
}

func (a *App) Close() {
	if a.closer != nil {
		a.closer()
	}
}

func newCache(cfg *config.Config, logger zerolog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("using in-memory cache")
		return cache.NewInMemoryCache()
	}
	rc, err := cache.NewRedisCache(cfg.RedisAddr, "", 0)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis, using in-memory cache")
		return cache.NewInMemoryCache()
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	return rc
}
