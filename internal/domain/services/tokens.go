package services

import (
	"fmt"
	"strings"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
)

// ResolveToken turns a user supplied symbol, address or NATIVE into a token.
// Unlisted addresses are accepted with an UNKNOWN symbol; their decimals are
// resolved on chain later.
func ResolveToken(tokens *entities.TokenRegistry, ref string) (entities.Token, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return entities.Token{}, fmt.Errorf("%w: empty token", entities.ErrInvalidAddress)
	}
	if tokens != nil {
		if t, ok := tokens.Lookup(ref); ok {
			return t, nil
		}
	}
	if entities.IsNativeAddress(ref) {
		return entities.PLS, nil
	}
	addr, err := ethclient.ParseAddress(ref)
	if err != nil {
		return entities.Token{}, err
	}
	return entities.Token{
		Address:  addr.Hex(),
		Symbol:   "UNKNOWN",
		Decimals: DefaultDecimals,
	}, nil
}
