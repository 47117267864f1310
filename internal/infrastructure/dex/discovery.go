package dex

import (
	"context"
	"sync"
	"time"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
)

// DiscoverRouters keeps the routers that have contract code deployed. Testnets
// are redeployed often, so configured addresses may point at empty accounts.
// A router whose lookup fails is dropped.
func DiscoverRouters(ctx context.Context, caller Caller, routers []entities.Router, timeout time.Duration) []entities.Router {
	live := make([]bool, len(routers))
	var wg sync.WaitGroup

	for i, r := range routers {
		wg.Add(1)
		go func(idx int, r entities.Router) {
			defer wg.Done()
			var code []byte
			err := ethclient.WithTimeout(ctx, timeout, func(ctx context.Context) error {
				var err error
				code, err = caller.CodeAt(ctx, r.Address)
				return err
			})
			live[idx] = err == nil && len(code) > 0
		}(i, r)
	}
	wg.Wait()

	out := make([]entities.Router, 0, len(routers))
	for i, r := range routers {
		if live[i] {
			out = append(out, r)
		}
	}
	return out
}
