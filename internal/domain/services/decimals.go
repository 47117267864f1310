package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/infrastructure/cache"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
	"github.com/bimakw/pulse-swap/internal/metrics"
)

// DefaultDecimals is used whenever a token's precision cannot be read
const DefaultDecimals uint8 = 18

// DecimalsReader reads decimals() from an ERC20 contract
type DecimalsReader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// DecimalResolver resolves token precision. Decimals only feed display and
// threshold math, so lookup failures fall back to 18 instead of failing.
type DecimalResolver struct {
	reader  DecimalsReader
	cache   cache.Cache
	chainID int64
	logger  zerolog.Logger
}

// NewDecimalResolver creates a resolver. c may be nil to disable caching.
func NewDecimalResolver(reader DecimalsReader, c cache.Cache, chainID int64, logger zerolog.Logger) *DecimalResolver {
	return &DecimalResolver{
		reader:  reader,
		cache:   c,
		chainID: chainID,
		logger:  logger,
	}
}

// Resolve returns the token's decimals. The native sentinel never hits the network.
func (r *DecimalResolver) Resolve(ctx context.Context, token entities.Token) uint8 {
	d, err := r.Lookup(ctx, token)
	if err != nil {
		r.logger.Debug().Str("token", token.Address).Err(err).Msg("decimals unavailable, assuming 18")
		metrics.DecimalsFallbacks.Inc()
		return DefaultDecimals
	}
	return d
}

// Lookup is Resolve without the fallback. Anything that sizes an on-chain
// amount must use it.
func (r *DecimalResolver) Lookup(ctx context.Context, token entities.Token) (uint8, error) {
	if token.IsNative() {
		return entities.NativeDecimals, nil
	}

	addr, err := ethclient.ParseAddress(token.Address)
	if err != nil {
		return 0, err
	}

	key := cache.DecimalsCacheKey(r.chainID, addr.Hex())
	if r.cache != nil {
		if d, ok, err := r.cache.GetDecimals(ctx, key); err == nil && ok {
			return d, nil
		}
	}

	d, err := r.reader.Decimals(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("decimals of %s: %w", addr.Hex(), err)
	}

	if r.cache != nil {
		if err := r.cache.SetDecimals(ctx, key, d, 0); err != nil {
			r.logger.Warn().Str("token", addr.Hex()).Err(err).Msg("failed to cache decimals")
		}
	}
	return d, nil
}
