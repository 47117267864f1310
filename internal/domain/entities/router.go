package entities

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RouterVersion tags the protocol generation of a router contract
type RouterVersion string

const (
	RouterV1 RouterVersion = "v1"
	RouterV2 RouterVersion = "v2"
)

// Router is a known Uniswap-V2-style router contract
type Router struct {
	Address common.Address `json:"address"`
	Version RouterVersion  `json:"version"`
}

func (r Router) String() string {
	return fmt.Sprintf("%s(%s)", r.Version, r.Address.Hex())
}

// RouterRegistry is the fixed, read-only set of routers for one network.
// It is built once from configuration and never reloaded.
type RouterRegistry struct {
	routers []Router
	primary Router
}

// NewRouterRegistry creates a registry. primary designates the router used for
// single-router quoting and must be one of routers.
func NewRouterRegistry(primary common.Address, routers ...Router) (*RouterRegistry, error) {
	if len(routers) == 0 {
		return nil, fmt.Errorf("router registry needs at least one router")
	}
	seen := make(map[common.Address]struct{}, len(routers))
	reg := &RouterRegistry{routers: make([]Router, 0, len(routers))}
	for _, r := range routers {
		if _, dup := seen[r.Address]; dup {
			continue
		}
		seen[r.Address] = struct{}{}
		reg.routers = append(reg.routers, r)
		if r.Address == primary {
			reg.primary = r
		}
	}
	if reg.primary.Address != primary {
		return nil, fmt.Errorf("primary router %s is not registered", primary.Hex())
	}
	return reg, nil
}

// All returns a copy of the registered routers
func (r *RouterRegistry) All() []Router {
	out := make([]Router, len(r.routers))
	copy(out, r.routers)
	return out
}

func (r *RouterRegistry) Primary() Router {
	return r.primary
}

// Lookup finds a router by address
func (r *RouterRegistry) Lookup(addr common.Address) (Router, bool) {
	for _, rt := range r.routers {
		if rt.Address == addr {
			return rt, true
		}
	}
	return Router{}, false
}

func (r *RouterRegistry) Len() int {
	return len(r.routers)
}
