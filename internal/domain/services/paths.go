package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

// PathStrategy builds one tier of candidate paths. Build returns ok=false when
// the tier does not apply to the pair.
type PathStrategy struct {
	Name        string
	Description string
	Build       func(from, to common.Address) (entities.Path, bool)
}

// Candidate is a path produced by a strategy
type Candidate struct {
	Strategy    string
	Description string
	Path        entities.Path
}

// PathGenerator produces the ordered candidate set between two tokens. The
// order is the tie-break: earlier strategies are assumed to be more liquid.
type PathGenerator struct {
	strategies []PathStrategy
}

// NewPathGenerator returns the default tiers: direct, via wrapped native, via stable
func NewPathGenerator(wrappedNative, stable common.Address) *PathGenerator {
	return NewPathGeneratorWith(
		DirectStrategy(),
		IntermediaryStrategy("wrapped_native", "via WPLS", wrappedNative),
		IntermediaryStrategy("stable", "via stable", stable),
	)
}

// NewPathGeneratorWith builds a generator from an explicit strategy list
func NewPathGeneratorWith(strategies ...PathStrategy) *PathGenerator {
	return &PathGenerator{strategies: strategies}
}

func DirectStrategy() PathStrategy {
	return PathStrategy{
		Name:        "direct",
		Description: "direct",
		Build: func(from, to common.Address) (entities.Path, bool) {
			return entities.Path{from, to}, true
		},
	}
}

// IntermediaryStrategy routes through mid. It is skipped when either endpoint
// already is mid.
func IntermediaryStrategy(name, description string, mid common.Address) PathStrategy {
	return PathStrategy{
		Name:        name,
		Description: description,
		Build: func(from, to common.Address) (entities.Path, bool) {
			if from == mid || to == mid {
				return nil, false
			}
			return entities.Path{from, mid, to}, true
		},
	}
}

// Candidates returns the applicable paths in strategy order. Invalid and
// duplicate paths are dropped.
func (g *PathGenerator) Candidates(from, to common.Address) []Candidate {
	out := make([]Candidate, 0, len(g.strategies))
	seen := make(map[string]struct{}, len(g.strategies))

	for _, s := range g.strategies {
		path, ok := s.Build(from, to)
		if !ok || path.Validate() != nil {
			continue
		}
		key := path.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Candidate{Strategy: s.Name, Description: s.Description, Path: path})
	}
	return out
}

// AmountsFunc quotes a candidate path
type AmountsFunc func(ctx context.Context, c Candidate) ([]*big.Int, error)

// Attempt records one failed candidate
type Attempt struct {
	Candidate Candidate
	Err       error
}

// FirstSuccess tries candidates in order and stops at the first one that
// returns a non-empty, positive result.
func FirstSuccess(ctx context.Context, candidates []Candidate, quote AmountsFunc) (Candidate, []*big.Int, []Attempt, bool) {
	var failed []Attempt
	for _, c := range candidates {
		if ctx.Err() != nil {
			failed = append(failed, Attempt{Candidate: c, Err: ctx.Err()})
			break
		}
		amounts, err := quote(ctx, c)
		if err == nil && (len(amounts) == 0 || amounts[len(amounts)-1].Sign() <= 0) {
			err = errEmptyResult
		}
		if err != nil {
			failed = append(failed, Attempt{Candidate: c, Err: err})
			continue
		}
		return c, amounts, failed, true
	}
	return Candidate{}, nil, failed, false
}
