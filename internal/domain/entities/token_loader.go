package entities

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TokensConfig represents the tokens.json structure
type TokensConfig struct {
	Tokens []Token `json:"tokens"`
}

// TokenRegistry holds loaded tokens indexed by address and symbol.
// Keys are lower-cased so lookups are case-insensitive.
type TokenRegistry struct {
	byAddress map[string]Token
	bySymbol  map[string]Token
	all       []Token
}

// NewTokenRegistry creates a new token registry
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		byAddress: make(map[string]Token),
		bySymbol:  make(map[string]Token),
		all:       make([]Token, 0),
	}
}

// LoadFromFile loads tokens from a JSON token list
func (r *TokenRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read token list: %w", err)
	}

	var config TokensConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse token list: %w", err)
	}

	for _, token := range config.Tokens {
		if token.Decimals == 0 && token.IsNative() {
			token.Decimals = NativeDecimals
		}
		r.Register(token)
	}

	return nil
}

// Register adds a token to the registry, replacing any entry with the same address
func (r *TokenRegistry) Register(token Token) {
	key := strings.ToLower(token.Address)
	if _, exists := r.byAddress[key]; exists {
		for i := range r.all {
			if SameAddress(r.all[i].Address, token.Address) {
				r.all[i] = token
			}
		}
	} else {
		r.all = append(r.all, token)
	}
	r.byAddress[key] = token
	r.bySymbol[strings.ToLower(token.Symbol)] = token
}

// GetByAddress returns a token by its address (or the NATIVE sentinel)
func (r *TokenRegistry) GetByAddress(addr string) (Token, bool) {
	token, ok := r.byAddress[strings.ToLower(strings.TrimSpace(addr))]
	return token, ok
}

// GetBySymbol returns a token by its symbol
func (r *TokenRegistry) GetBySymbol(symbol string) (Token, bool) {
	token, ok := r.bySymbol[strings.ToLower(strings.TrimSpace(symbol))]
	return token, ok
}

// Lookup resolves a user supplied identifier, trying symbol first and then address.
func (r *TokenRegistry) Lookup(ref string) (Token, bool) {
	if token, ok := r.GetBySymbol(ref); ok {
		return token, true
	}
	return r.GetByAddress(ref)
}

// GetAll returns all registered tokens
func (r *TokenRegistry) GetAll() []Token {
	return r.all
}

// Count returns the number of registered tokens
func (r *TokenRegistry) Count() int {
	return len(r.all)
}

// DefaultRegistry returns a registry with the PulseChain mainnet defaults.
// Use this as fallback if no token list is configured.
func DefaultRegistry() *TokenRegistry {
	r := NewTokenRegistry()
	r.Register(PLS)
	r.Register(WPLS)
	r.Register(USDC)
	r.Register(DAI)
	r.Register(PLSX)
	r.Register(HEX)
	return r
}
