package entities

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Path is an ordered list of token addresses describing successive swap hops
type Path []common.Address

// NewPath builds a path and validates it
func NewPath(addrs ...common.Address) (Path, error) {
	p := Path(addrs)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the path has at least two entries, no equal neighbours
// and distinct endpoints.
func (p Path) Validate() error {
	if len(p) < 2 {
		return fmt.Errorf("%w: need at least 2 tokens, got %d", ErrInvalidPath, len(p))
	}
	if p[0] == p[len(p)-1] {
		return fmt.Errorf("%w: path starts and ends at %s", ErrInvalidPath, p[0].Hex())
	}
	for i := 1; i < len(p); i++ {
		if p[i] == p[i-1] {
			return fmt.Errorf("%w: token %s repeated at hop %d", ErrInvalidPath, p[i].Hex(), i)
		}
	}
	return nil
}

func (p Path) Input() common.Address {
	if len(p) == 0 {
		return common.Address{}
	}
	return p[0]
}

func (p Path) Output() common.Address {
	if len(p) == 0 {
		return common.Address{}
	}
	return p[len(p)-1]
}

// Hops returns the number of pool hops in the path
func (p Path) Hops() int {
	if len(p) < 2 {
		return 0
	}
	return len(p) - 1
}

// Contains reports whether addr appears anywhere in the path
func (p Path) Contains(addr common.Address) bool {
	for _, a := range p {
		if a == addr {
			return true
		}
	}
	return false
}

func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, a := range p {
		out[i] = a.Hex()
	}
	return out
}

func (p Path) String() string {
	return strings.Join(p.Strings(), " -> ")
}
