package services_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
)

func strategies(cs []services.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Strategy
	}
	return out
}

func TestCandidatesOrder(t *testing.T) {
	g := services.NewPathGenerator(wpls, usdc)

	tests := []struct {
		name     string
		from, to common.Address
		want     []string
	}{
		{"unrelated tokens", tokenA, tokenB, []string{"direct", "wrapped_native", "stable"}},
		{"from wrapped native", wpls, tokenB, []string{"direct", "stable"}},
		{"to stable", tokenA, usdc, []string{"direct", "wrapped_native"}},
		{"wrapped native to stable", wpls, usdc, []string{"direct"}},
		{"identical", tokenA, tokenA, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strategies(g.Candidates(tt.from, tt.to)))
		})
	}
}

func TestCandidatesHaveNoAdjacentDuplicates(t *testing.T) {
	addrs := []common.Address{wpls, usdc, tokenA, tokenB}
	generators := []*services.PathGenerator{
		services.NewPathGenerator(wpls, usdc),
		services.NewPathGenerator(wpls, wpls),
	}

	for _, g := range generators {
		for _, from := range addrs {
			for _, to := range addrs {
				cands := g.Candidates(from, to)
				for i, c := range cands {
					for j := 1; j < len(c.Path); j++ {
						assert.NotEqual(t, c.Path[j-1], c.Path[j], "path %s", c.Path)
					}
					if i == 0 {
						assert.Equal(t, "direct", c.Strategy)
					}
				}
			}
		}
	}
}

func TestCandidatesDeduplicate(t *testing.T) {
	g := services.NewPathGenerator(wpls, wpls)
	assert.Equal(t, []string{"direct", "wrapped_native"}, strategies(g.Candidates(tokenA, tokenB)))
}

func TestCustomStrategyTier(t *testing.T) {
	plsx := common.HexToAddress(entities.PLSX.Address)
	g := services.NewPathGeneratorWith(
		services.DirectStrategy(),
		services.IntermediaryStrategy("plsx", "via PLSX", plsx),
	)

	cands := g.Candidates(tokenA, tokenB)
	require.Len(t, cands, 2)
	assert.Equal(t, entities.Path{tokenA, plsx, tokenB}, cands[1].Path)
}

func TestFirstSuccess(t *testing.T) {
	g := services.NewPathGenerator(wpls, usdc)
	cands := g.Candidates(tokenA, tokenB)

	var tried []string
	c, amounts, attempts, ok := services.FirstSuccess(context.Background(), cands,
		func(ctx context.Context, c services.Candidate) ([]*big.Int, error) {
			tried = append(tried, c.Strategy)
			switch c.Strategy {
			case "direct":
				return nil, entities.ErrReverted
			case "wrapped_native":
				return []*big.Int{big.NewInt(1), big.NewInt(0), big.NewInt(0)}, nil
			default:
				return []*big.Int{big.NewInt(1), big.NewInt(5), big.NewInt(7)}, nil
			}
		})

	require.True(t, ok)
	assert.Equal(t, "stable", c.Strategy)
	assert.Equal(t, big.NewInt(7), amounts[2])
	assert.Equal(t, []string{"direct", "wrapped_native", "stable"}, tried)
	require.Len(t, attempts, 2)
	assert.True(t, errors.Is(attempts[0].Err, entities.ErrReverted))
	assert.True(t, errors.Is(attempts[1].Err, entities.ErrInvalidResponse))
}

func TestFirstSuccessStopsAtFirstHit(t *testing.T) {
	g := services.NewPathGenerator(wpls, usdc)
	calls := 0
	c, _, attempts, ok := services.FirstSuccess(context.Background(), g.Candidates(tokenA, tokenB),
		func(ctx context.Context, c services.Candidate) ([]*big.Int, error) {
			calls++
			return []*big.Int{big.NewInt(1), big.NewInt(2)}, nil
		})

	require.True(t, ok)
	assert.Equal(t, "direct", c.Strategy)
	assert.Equal(t, 1, calls)
	assert.Empty(t, attempts)
}

func TestFirstSuccessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := services.NewPathGenerator(wpls, usdc)
	_, _, attempts, ok := services.FirstSuccess(ctx, g.Candidates(tokenA, tokenB),
		func(ctx context.Context, c services.Candidate) ([]*big.Int, error) {
			t.Fatal("quote must not run on a cancelled context")
			return nil, nil
		})

	assert.False(t, ok)
	require.Len(t, attempts, 1)
	assert.ErrorIs(t, attempts[0].Err, context.Canceled)
}

func TestResolveToken(t *testing.T) {
	reg := entities.DefaultRegistry()

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"usdc", entities.USDC.Address, false},
		{"PLS", entities.NativeSentinel, false},
		{"native", entities.NativeSentinel, false},
		{"0x95b303987a60c71504d99aa1b13b4da07b0790ab", entities.PLSX.Address, false},
		{tokenA.Hex(), tokenA.Hex(), false},
		{"vitalik.eth", "", true},
		{"0x1234", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			tok, err := services.ResolveToken(reg, tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, entities.SameAddress(tt.want, tok.Address), "got %s", tok.Address)
		})
	}
}
